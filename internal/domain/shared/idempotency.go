package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so an outbox redelivery
// never deducts the same charge twice.
type IdempotencyStore interface {
	// MarkProcessed claims an event ID with a TTL. It returns true when
	// this call made the claim and false when the event was already
	// processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long processed event IDs are remembered
	TTL time.Duration

	// Enabled turns duplicate detection on or off
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
