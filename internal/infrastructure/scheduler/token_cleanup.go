package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/identity"
)

// DefaultTokenCleanupInterval is how often expired auth tokens are purged
const DefaultTokenCleanupInterval = time.Hour

// TokenCleanup periodically deletes expired verification and password
// reset tokens. Expired tokens are already rejected on use; this keeps
// the table from growing without bound.
type TokenCleanup struct {
	tokenRepo identity.AuthTokenRepository
	interval  time.Duration
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTokenCleanup creates a new TokenCleanup
func NewTokenCleanup(tokenRepo identity.AuthTokenRepository, interval time.Duration, logger *zap.Logger) *TokenCleanup {
	if interval <= 0 {
		interval = DefaultTokenCleanupInterval
	}
	return &TokenCleanup{
		tokenRepo: tokenRepo,
		interval:  interval,
		logger:    logger,
	}
}

// Start starts the cleanup loop
func (t *TokenCleanup) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Token cleanup started", zap.Duration("interval", t.interval))
	return nil
}

// Stop stops the cleanup loop
func (t *TokenCleanup) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *TokenCleanup) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *TokenCleanup) runOnce(ctx context.Context) {
	deleted, err := t.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		t.logger.Error("Token cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		t.logger.Info("Expired auth tokens purged", zap.Int64("deleted", deleted))
	}
}
