package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which client-supplied keys have already been
// accepted, so a retried checkout or transfer does not execute twice. Keys
// expire after a TTL; a replay past the TTL is treated as a new request.
type IdempotencyStore interface {
	// MarkProcessed records the key atomically. It returns true when the
	// key was newly recorded and false when the key was already present,
	// meaning the request is a replay.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsProcessed reports whether the key has been recorded and has not
	// expired.
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Close releases any resources held by the store.
	Close() error
}
