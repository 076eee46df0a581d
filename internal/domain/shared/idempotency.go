package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request tokens so that a
// replayed request can be answered with the result of the first one.
type IdempotencyStore interface {
	// Remember associates value with key if the key is unseen.
	// Returns (true, value) when the key was newly stored, or
	// (false, existing) when the key was already present.
	Remember(ctx context.Context, key, value string, ttl time.Duration) (bool, string, error)

	// Lookup returns the stored value for key, or "" if absent or expired.
	Lookup(ctx context.Context, key string) (string, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for remembered tokens.
	// After this duration, the same token starts a fresh request.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
