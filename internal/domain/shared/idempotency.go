package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks operation keys that have already been processed so
// that retried requests (e.g. a re-submitted payment form) are not applied twice.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets a key so a retry of the same operation is allowed.
	// Used when the operation failed after the key was claimed.
	Release(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
