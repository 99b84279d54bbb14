package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
)

// TieredEntitlementCache implements a two-tier caching strategy.
// L1: local in-memory cache (fast, but local to the instance)
// L2: Redis cache (slower, but shared across instances)
// Writes go to both tiers; peer instances drop their L1 copy via Pub/Sub.
type TieredEntitlementCache struct {
	l1Cache     *InMemoryEntitlementCache
	l2Cache     *RedisEntitlementCache
	invalidator *RedisEntitlementInvalidator
	config      billing.EntitlementCacheConfig
	logger      *zap.Logger

	// Stats for monitoring
	l1Hits   int64
	l1Misses int64
	l2Hits   int64
	l2Misses int64
}

// TieredEntitlementCacheOption is a functional option for configuring the cache
type TieredEntitlementCacheOption func(*TieredEntitlementCache)

// WithTieredConfig sets the cache configuration
func WithTieredConfig(cfg billing.EntitlementCacheConfig) TieredEntitlementCacheOption {
	return func(c *TieredEntitlementCache) {
		c.config = cfg
	}
}

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredEntitlementCacheOption {
	return func(c *TieredEntitlementCache) {
		c.logger = logger
	}
}

// NewTieredEntitlementCache creates a new tiered entitlement cache
func NewTieredEntitlementCache(
	l1Cache *InMemoryEntitlementCache,
	l2Cache *RedisEntitlementCache,
	invalidator *RedisEntitlementInvalidator,
	opts ...TieredEntitlementCacheOption,
) *TieredEntitlementCache {
	cache := &TieredEntitlementCache{
		l1Cache:     l1Cache,
		l2Cache:     l2Cache,
		invalidator: invalidator,
		config:      billing.DefaultEntitlementCacheConfig(),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// StartInvalidationSubscription starts listening for invalidation
// messages from peer instances. Blocks; run in a goroutine.
func (c *TieredEntitlementCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}

	return c.invalidator.Subscribe(ctx, func(msg billing.EntitlementInvalidation) {
		c.handleInvalidationMessage(msg)
	})
}

// handleInvalidationMessage drops the local tier's copy for the
// workspace named in the message (or everything on a blank message)
func (c *TieredEntitlementCache) handleInvalidationMessage(msg billing.EntitlementInvalidation) {
	ctx := context.Background()

	if msg.WorkspaceID == "" {
		if err := c.l1Cache.InvalidateAll(ctx); err != nil {
			c.logger.Error("Failed to invalidate all L1 entitlements", zap.Error(err))
		}
		return
	}

	workspaceID, err := uuid.Parse(msg.WorkspaceID)
	if err != nil {
		c.logger.Error("Bad workspace ID in invalidation message",
			zap.String("workspace_id", msg.WorkspaceID),
			zap.Error(err))
		return
	}

	if err := c.l1Cache.Invalidate(ctx, workspaceID); err != nil {
		c.logger.Error("Failed to invalidate L1 entitlements",
			zap.String("workspace_id", msg.WorkspaceID),
			zap.Error(err))
	}
}

// Get retrieves a snapshot from cache (L1 then L2)
func (c *TieredEntitlementCache) Get(ctx context.Context, workspaceID uuid.UUID) (*billing.Entitlements, error) {
	ent, err := c.l1Cache.Get(ctx, workspaceID)
	if err != nil {
		c.logger.Warn("L1 cache error", zap.String("workspace_id", workspaceID.String()), zap.Error(err))
	}
	if ent != nil {
		atomic.AddInt64(&c.l1Hits, 1)
		return ent, nil
	}
	atomic.AddInt64(&c.l1Misses, 1)

	ent, err = c.l2Cache.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ent != nil {
		atomic.AddInt64(&c.l2Hits, 1)
		if err := c.l1Cache.Set(ctx, ent, c.config.LocalTTL); err != nil {
			c.logger.Warn("Failed to populate L1 cache",
				zap.String("workspace_id", workspaceID.String()),
				zap.Error(err))
		}
		return ent, nil
	}
	atomic.AddInt64(&c.l2Misses, 1)

	return nil, nil
}

// Set stores a snapshot in both tiers
func (c *TieredEntitlementCache) Set(ctx context.Context, ent *billing.Entitlements, ttl time.Duration) error {
	if err := c.l2Cache.Set(ctx, ent, ttl); err != nil {
		return err
	}

	if err := c.l1Cache.Set(ctx, ent, c.config.LocalTTL); err != nil {
		c.logger.Warn("Failed to set L1 cache", zap.Error(err))
	}

	return nil
}

// Invalidate drops a workspace's snapshot from both tiers and tells
// peer instances to do the same
func (c *TieredEntitlementCache) Invalidate(ctx context.Context, workspaceID uuid.UUID) error {
	if err := c.l2Cache.Invalidate(ctx, workspaceID); err != nil {
		return err
	}

	if err := c.l1Cache.Invalidate(ctx, workspaceID); err != nil {
		c.logger.Warn("Failed to invalidate L1 cache",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
	}

	if c.invalidator != nil {
		if err := c.invalidator.PublishWorkspaceInvalidation(ctx, workspaceID.String()); err != nil {
			c.logger.Warn("Failed to publish workspace invalidation",
				zap.String("workspace_id", workspaceID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// InvalidateAll empties both tiers everywhere
func (c *TieredEntitlementCache) InvalidateAll(ctx context.Context) error {
	if err := c.l2Cache.InvalidateAll(ctx); err != nil {
		return err
	}

	if err := c.l1Cache.InvalidateAll(ctx); err != nil {
		c.logger.Warn("Failed to invalidate L1 cache", zap.Error(err))
	}

	if c.invalidator != nil {
		if err := c.invalidator.PublishInvalidateAll(ctx); err != nil {
			c.logger.Warn("Failed to publish invalidate all", zap.Error(err))
		}
	}

	return nil
}

// Close releases any resources held by the cache
func (c *TieredEntitlementCache) Close() error {
	var lastErr error

	if c.invalidator != nil {
		if err := c.invalidator.Close(); err != nil {
			lastErr = err
		}
	}

	if err := c.l2Cache.Close(); err != nil {
		lastErr = err
	}

	if err := c.l1Cache.Close(); err != nil {
		lastErr = err
	}

	return lastErr
}

// HitRatio reports the combined hit ratio across both tiers
func (c *TieredEntitlementCache) HitRatio() float64 {
	hits := atomic.LoadInt64(&c.l1Hits) + atomic.LoadInt64(&c.l2Hits)
	misses := atomic.LoadInt64(&c.l2Misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// ResetStats resets the cache statistics
func (c *TieredEntitlementCache) ResetStats() {
	atomic.StoreInt64(&c.l1Hits, 0)
	atomic.StoreInt64(&c.l1Misses, 0)
	atomic.StoreInt64(&c.l2Hits, 0)
	atomic.StoreInt64(&c.l2Misses, 0)
	c.l1Cache.ResetStats()
}

var _ billing.EntitlementCache = (*TieredEntitlementCache)(nil)
