package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/infrastructure/config"
)

const (
	defaultScanBatchSize = 100
)

// RedisEntitlementCache implements EntitlementCache using Redis
type RedisEntitlementCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	config     billing.EntitlementCacheConfig
	logger     *zap.Logger
}

// RedisEntitlementCacheOption is a functional option for configuring the cache
type RedisEntitlementCacheOption func(*RedisEntitlementCache)

// WithCacheConfig sets the cache configuration
func WithCacheConfig(cfg billing.EntitlementCacheConfig) RedisEntitlementCacheOption {
	return func(c *RedisEntitlementCache) {
		c.config = cfg
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisEntitlementCacheOption {
	return func(c *RedisEntitlementCache) {
		c.logger = logger
	}
}

// NewRedisEntitlementCache creates a new Redis-based entitlement cache
func NewRedisEntitlementCache(cfg config.RedisConfig, opts ...RedisEntitlementCacheOption) (*RedisEntitlementCache, error) {
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

	cache := &RedisEntitlementCache{
		client:     client,
		ownsClient: true,
		config:     billing.DefaultEntitlementCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisEntitlementCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisEntitlementCacheWithClient(client *redis.Client, opts ...RedisEntitlementCacheOption) *RedisEntitlementCache {
	cache := &RedisEntitlementCache{
		client:     client,
		ownsClient: false,
		config:     billing.DefaultEntitlementCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// cacheKey generates the cache key for a workspace's entitlements
func (c *RedisEntitlementCache) cacheKey(workspaceID uuid.UUID) string {
	return fmt.Sprintf("entitlements:%s", workspaceID.String())
}

// Get retrieves a workspace's entitlement snapshot from cache
func (c *RedisEntitlementCache) Get(ctx context.Context, workspaceID uuid.UUID) (*billing.Entitlements, error) {
	key := c.cacheKey(workspaceID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss for entitlements", zap.String("workspace_id", workspaceID.String()))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get entitlements from cache",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get entitlements from cache: %w", err)
	}

	var ent billing.Entitlements
	if err := json.Unmarshal(data, &ent); err != nil {
		c.logger.Error("Failed to unmarshal entitlements",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		// drop the corrupted entry
		_ = c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal entitlements: %w", err)
	}

	c.logger.Debug("Cache hit for entitlements", zap.String("workspace_id", workspaceID.String()))
	return &ent, nil
}

// Set stores a workspace's entitlement snapshot in cache
func (c *RedisEntitlementCache) Set(ctx context.Context, ent *billing.Entitlements, ttl time.Duration) error {
	if ent == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.TTL
	}

	key := c.cacheKey(ent.WorkspaceID)

	data, err := json.Marshal(ent)
	if err != nil {
		return fmt.Errorf("failed to marshal entitlements: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set entitlements in cache",
			zap.String("workspace_id", ent.WorkspaceID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to set entitlements in cache: %w", err)
	}

	c.logger.Debug("Cached entitlements",
		zap.String("workspace_id", ent.WorkspaceID.String()),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate removes a workspace's entitlement snapshot from cache
func (c *RedisEntitlementCache) Invalidate(ctx context.Context, workspaceID uuid.UUID) error {
	key := c.cacheKey(workspaceID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Failed to invalidate entitlements",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to invalidate entitlements: %w", err)
	}

	c.logger.Debug("Invalidated entitlements", zap.String("workspace_id", workspaceID.String()))
	return nil
}

// InvalidateAll removes all cached entitlement snapshots.
// Uses SCAN rather than KEYS so Redis is not blocked.
func (c *RedisEntitlementCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, "entitlements:*", defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("Failed to scan entitlement keys", zap.Error(err))
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("Failed to delete entitlement keys", zap.Error(err))
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Invalidated all entitlement cache",
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close releases any resources held by the cache
func (c *RedisEntitlementCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisEntitlementCache) GetClient() *redis.Client {
	return c.client
}

var _ billing.EntitlementCache = (*RedisEntitlementCache)(nil)
