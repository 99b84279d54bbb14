package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
)

const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryEntitlementCache implements EntitlementCache using in-memory
// storage. It is designed to be used as an L1 tier in front of Redis.
type InMemoryEntitlementCache struct {
	entries sync.Map // map[uuid.UUID]*entitlementEntry
	config  billing.EntitlementCacheConfig
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// entitlementEntry wraps a cached snapshot with expiration time
type entitlementEntry struct {
	value     *billing.Entitlements
	expiresAt time.Time
}

func (e *entitlementEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryEntitlementCacheOption is a functional option for configuring the cache
type InMemoryEntitlementCacheOption func(*InMemoryEntitlementCache)

// WithInMemoryConfig sets the cache configuration
func WithInMemoryConfig(cfg billing.EntitlementCacheConfig) InMemoryEntitlementCacheOption {
	return func(c *InMemoryEntitlementCache) {
		c.config = cfg
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryEntitlementCacheOption {
	return func(c *InMemoryEntitlementCache) {
		c.logger = logger
	}
}

// NewInMemoryEntitlementCache creates a new in-memory entitlement cache
func NewInMemoryEntitlementCache(opts ...InMemoryEntitlementCacheOption) *InMemoryEntitlementCache {
	cache := &InMemoryEntitlementCache{
		config: billing.DefaultEntitlementCacheConfig(),
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a workspace's entitlement snapshot from cache
func (c *InMemoryEntitlementCache) Get(ctx context.Context, workspaceID uuid.UUID) (*billing.Entitlements, error) {
	if value, ok := c.entries.Load(workspaceID); ok {
		entry := value.(*entitlementEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("L1 cache hit for entitlements", zap.String("workspace_id", workspaceID.String()))
			return entry.value, nil
		}
		c.entries.Delete(workspaceID)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("L1 cache miss for entitlements", zap.String("workspace_id", workspaceID.String()))
	return nil, nil
}

// Set stores a workspace's entitlement snapshot in cache
func (c *InMemoryEntitlementCache) Set(ctx context.Context, ent *billing.Entitlements, ttl time.Duration) error {
	if ent == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.LocalTTL
	}

	c.entries.Store(ent.WorkspaceID, &entitlementEntry{
		value:     ent,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("Cached entitlements in L1",
		zap.String("workspace_id", ent.WorkspaceID.String()),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate removes a workspace's entitlement snapshot from cache
func (c *InMemoryEntitlementCache) Invalidate(ctx context.Context, workspaceID uuid.UUID) error {
	c.entries.Delete(workspaceID)
	c.logger.Debug("Invalidated L1 entitlements", zap.String("workspace_id", workspaceID.String()))
	return nil
}

// InvalidateAll removes all snapshots from cache
func (c *InMemoryEntitlementCache) InvalidateAll(ctx context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})

	c.logger.Info("Invalidated all L1 entitlement cache")
	return nil
}

// Close releases any resources held by the cache
func (c *InMemoryEntitlementCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryEntitlementCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// ResetStats resets the cache statistics
func (c *InMemoryEntitlementCache) ResetStats() {
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Count returns the number of entries in the cache
func (c *InMemoryEntitlementCache) Count() int {
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryEntitlementCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryEntitlementCache) doCleanup() {
	var removed int

	c.entries.Range(func(key, value any) bool {
		entry := value.(*entitlementEntry)
		if entry.isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired L1 entitlement entries",
			zap.Int("removed", removed))
	}
}

var _ billing.EntitlementCache = (*InMemoryEntitlementCache)(nil)
