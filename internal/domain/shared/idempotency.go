package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried client request is not
// applied twice.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL as in flight.
	// Returns true if the key was newly marked, false if it was already seen.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the outcome of the request that claimed key so a
	// repeat can be answered with it. The TTL restarts.
	Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error

	// Result returns the stored outcome for key, or nil while the claiming
	// request is still in flight or the key is unknown.
	Result(ctx context.Context, key string) ([]byte, error)

	// IsProcessed checks if a key has already been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget drops a key, used when the guarded unit of work rolled back.
	Forget(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key blocks a repeat. Default: 24 hours
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
