package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entitlements is a workspace's resolved plan snapshot: which plan it is
// on, whether the subscription currently grants service, and the per
// feature usage limits. A nil limit means unlimited.
type Entitlements struct {
	WorkspaceID uuid.UUID          `json:"workspace_id"`
	PlanCode    string             `json:"plan_code"`
	Status      SubscriptionStatus `json:"status"`
	Limits      map[string]*int64  `json:"limits"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}

// Grants reports whether the snapshot's subscription status grants service
func (e *Entitlements) Grants() bool {
	return e.Status.Grants()
}

// LimitFor returns the limit for a feature code. The second return is
// false when the plan does not include the feature at all.
func (e *Entitlements) LimitFor(featureCode string) (*int64, bool) {
	limit, ok := e.Limits[featureCode]
	return limit, ok
}

// EntitlementCache caches resolved workspace entitlements so that every
// mail scan or forward request does not re-join plans and subscriptions
type EntitlementCache interface {
	// Get returns the cached snapshot, or nil on a cache miss
	Get(ctx context.Context, workspaceID uuid.UUID) (*Entitlements, error)

	// Set stores a snapshot with the given TTL (0 uses the cache default)
	Set(ctx context.Context, ent *Entitlements, ttl time.Duration) error

	// Invalidate drops the snapshot for one workspace
	Invalidate(ctx context.Context, workspaceID uuid.UUID) error

	// InvalidateAll drops every cached snapshot
	InvalidateAll(ctx context.Context) error

	// Close releases cache resources
	Close() error
}

// EntitlementCacheConfig holds entitlement cache tuning
type EntitlementCacheConfig struct {
	// TTL bounds how stale a snapshot may get before a re-resolve
	TTL time.Duration

	// LocalTTL is the in-process tier's TTL; it should be shorter than
	// TTL so plan changes propagate quickly across instances
	LocalTTL time.Duration
}

// DefaultEntitlementCacheConfig returns the default cache configuration
func DefaultEntitlementCacheConfig() EntitlementCacheConfig {
	return EntitlementCacheConfig{
		TTL:      5 * time.Minute,
		LocalTTL: 30 * time.Second,
	}
}

// EntitlementInvalidation is broadcast between instances when a
// workspace's plan or subscription changes
type EntitlementInvalidation struct {
	WorkspaceID string `json:"workspace_id"` // empty invalidates all
}
