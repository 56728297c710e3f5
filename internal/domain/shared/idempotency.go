package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so that a retried upload is not applied twice.
type IdempotencyStore interface {
	// Reserve marks key as taken for ttl.
	// Returns true if the key was newly reserved, false if it was already present.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a key so the request may be retried, used when the request failed
	// before any data was written.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
