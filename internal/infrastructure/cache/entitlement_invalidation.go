package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/infrastructure/config"
)

const (
	defaultCloseTimeout      = 5 * time.Second
	entitlementPubSubChannel = "entitlements:invalidation"
)

// RedisEntitlementInvalidator broadcasts entitlement invalidations across
// instances over Redis Pub/Sub so that each instance's local tier drops
// stale plan snapshots when a subscription changes.
type RedisEntitlementInvalidator struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisEntitlementInvalidatorOption is a functional option for configuring the invalidator
type RedisEntitlementInvalidatorOption func(*RedisEntitlementInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisEntitlementInvalidatorOption {
	return func(i *RedisEntitlementInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisEntitlementInvalidatorOption {
	return func(i *RedisEntitlementInvalidator) {
		i.logger = logger
	}
}

// NewRedisEntitlementInvalidator creates a new Redis Pub/Sub invalidator
func NewRedisEntitlementInvalidator(cfg config.RedisConfig, opts ...RedisEntitlementInvalidatorOption) (*RedisEntitlementInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	invalidator := &RedisEntitlementInvalidator{
		client:     client,
		ownsClient: true,
		channel:    entitlementPubSubChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator, nil
}

// NewRedisEntitlementInvalidatorWithClient creates an invalidator with an
// existing Redis client. The caller retains ownership of the client.
func NewRedisEntitlementInvalidatorWithClient(client *redis.Client, opts ...RedisEntitlementInvalidatorOption) *RedisEntitlementInvalidator {
	invalidator := &RedisEntitlementInvalidator{
		client:     client,
		ownsClient: false,
		channel:    entitlementPubSubChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator
}

// Publish sends an invalidation notification to all subscribers
func (i *RedisEntitlementInvalidator) Publish(ctx context.Context, msg billing.EntitlementInvalidation) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish entitlement invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	i.logger.Debug("Published entitlement invalidation",
		zap.String("workspace_id", msg.WorkspaceID),
		zap.String("channel", i.channel))

	return nil
}

// Subscribe starts listening for invalidation notifications. The callback
// is invoked for each received message. This method blocks and should be
// called in a goroutine.
func (i *RedisEntitlementInvalidator) Subscribe(ctx context.Context, callback func(msg billing.EntitlementInvalidation)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	_, err := pubsub.Receive(subCtx)
	if err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to entitlement invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Entitlement invalidation subscription stopped")
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Entitlement invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var inv billing.EntitlementInvalidation
			if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
				i.logger.Error("Failed to unmarshal invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			// Run the callback off the subscription loop so a slow
			// handler cannot stall message delivery
			go func(m billing.EntitlementInvalidation) {
				defer func() {
					if r := recover(); r != nil {
						i.logger.Error("Panic in invalidation callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(inv)
		}
	}
}

// markDone safely marks the invalidator as done
func (i *RedisEntitlementInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close releases any resources held by the invalidator
func (i *RedisEntitlementInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}

// PublishWorkspaceInvalidation broadcasts that one workspace's plan changed
func (i *RedisEntitlementInvalidator) PublishWorkspaceInvalidation(ctx context.Context, workspaceID string) error {
	return i.Publish(ctx, billing.EntitlementInvalidation{WorkspaceID: workspaceID})
}

// PublishInvalidateAll broadcasts a full invalidation (e.g. plan catalog edit)
func (i *RedisEntitlementInvalidator) PublishInvalidateAll(ctx context.Context) error {
	return i.Publish(ctx, billing.EntitlementInvalidation{})
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (i *RedisEntitlementInvalidator) GetClient() *redis.Client {
	return i.client
}
