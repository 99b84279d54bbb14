package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkspaceSource lists the workspaces that need a usage-reporting pass
type WorkspaceSource interface {
	BillableWorkspaceIDs(ctx context.Context) ([]uuid.UUID, error)
}

// UsageTriggerConfig holds configuration for the usage-reporting trigger
type UsageTriggerConfig struct {
	// Hour and Minute set the daily run time in 24h local time
	Hour   int
	Minute int

	// CheckInterval is how often to check the clock
	CheckInterval time.Duration
}

// DefaultUsageTriggerConfig returns default trigger configuration
func DefaultUsageTriggerConfig() UsageTriggerConfig {
	return UsageTriggerConfig{
		Hour:          3,
		Minute:        0,
		CheckInterval: time.Minute,
	}
}

// UsageTrigger schedules a usage-reporting job per billable workspace
// once a day. Reports are idempotent per period, so the daily cadence
// just keeps the gateway counters fresh; the pass on the first day of a
// new month finalizes the previous period implicitly by switching to
// the new one.
type UsageTrigger struct {
	config    UsageTriggerConfig
	scheduler *Scheduler
	source    WorkspaceSource
	retries   int
	logger    *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewUsageTrigger creates a new usage-reporting trigger
func NewUsageTrigger(
	config UsageTriggerConfig,
	sched *Scheduler,
	source WorkspaceSource,
	retries int,
	logger *zap.Logger,
) *UsageTrigger {
	return &UsageTrigger{
		config:    config,
		scheduler: sched,
		source:    source,
		retries:   retries,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (u *UsageTrigger) Start(ctx context.Context) error {
	u.mu.Lock()
	if u.isRunning {
		u.mu.Unlock()
		return nil
	}
	u.isRunning = true
	u.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel

	u.wg.Add(1)
	go u.runLoop(ctx)

	u.logger.Info("Usage trigger started",
		zap.Int("hour", u.config.Hour),
		zap.Int("minute", u.config.Minute),
	)

	return nil
}

// Stop stops the trigger loop
func (u *UsageTrigger) Stop(ctx context.Context) error {
	u.mu.Lock()
	if !u.isRunning {
		u.mu.Unlock()
		return nil
	}
	u.isRunning = false
	u.mu.Unlock()

	if u.cancel != nil {
		u.cancel()
	}

	done := make(chan struct{})
	go func() {
		u.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		u.logger.Info("Usage trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *UsageTrigger) runLoop(ctx context.Context) {
	defer u.wg.Done()

	ticker := time.NewTicker(u.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.checkAndTrigger(ctx)
		}
	}
}

func (u *UsageTrigger) checkAndTrigger(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	u.mu.Lock()
	alreadyRan := u.lastRunDate == currentDate
	u.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Hour() != u.config.Hour || now.Minute() != u.config.Minute {
		return
	}

	u.mu.Lock()
	u.lastRunDate = currentDate
	u.mu.Unlock()

	u.TriggerNow(ctx, now.Format("2006-01"))
}

// TriggerNow schedules a usage-reporting job for every billable
// workspace. An empty period means the current one.
func (u *UsageTrigger) TriggerNow(ctx context.Context, period string) {
	workspaceIDs, err := u.source.BillableWorkspaceIDs(ctx)
	if err != nil {
		u.logger.Error("Failed to list billable workspaces", zap.Error(err))
		return
	}

	u.logger.Info("Scheduling usage reporting",
		zap.Int("workspace_count", len(workspaceIDs)),
		zap.String("period", period),
	)

	for _, id := range workspaceIDs {
		job := NewJob(id, period, u.retries)
		if err := u.scheduler.SubmitJob(job); err != nil {
			u.logger.Error("Failed to schedule usage reporting for workspace",
				zap.String("workspace_id", id.String()),
				zap.Error(err),
			)
		}
	}
}
