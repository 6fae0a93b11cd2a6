package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys so a retried
// write returns the original result instead of applying twice.
type IdempotencyStore interface {
	// Claim reserves key for ttl. Returns false if the key was already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the result reference for a claimed key.
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Result returns the stored result reference, if the key has completed.
	Result(ctx context.Context, key string) (string, bool, error)

	// Release drops a claim so the client may retry after a failure.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered. Default: 24 hours
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
