package cache

import (
	"context"
	"time"
)

// Cache is the invalidation-aware store shared by the search engine and the
// booking engine. Implementations are best-effort: a failed cache operation
// must never fail the request that triggered it, reads always recompute from
// the store of record on a miss.
type Cache interface {
	// Get returns the cached value, or nil when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePattern removes every key matching a single-wildcard glob,
	// e.g. "search:*".
	DeletePattern(ctx context.Context, pattern string) error
}
