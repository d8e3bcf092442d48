package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is a process-local cache. Entries live in a sync.Map so reads
// stay lock-free; a stale read surviving a few extra milliseconds is
// acceptable here. A background sweep reclaims expired entries that nobody
// re-reads.
type MemoryCache struct {
	entries sync.Map
	done    chan struct{}
	once    sync.Once
}

// NewMemoryCache starts the sweep goroutine with the given interval.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{done: make(chan struct{})}
	go c.sweep(sweepInterval)
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, nil
	}
	e := v.(entry)
	if e.expired(time.Now()) {
		c.entries.Delete(key)
		return nil, nil
	}
	return e.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries.Store(key, e)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}

func (c *MemoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.entries.Range(func(k, _ any) bool {
		if ok, _ := path.Match(pattern, k.(string)); ok {
			c.entries.Delete(k)
		}
		return true
	})
	return nil
}

// Close stops the background sweep.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.entries.Range(func(k, v any) bool {
				if v.(entry).expired(now) {
					c.entries.Delete(k)
				}
				return true
			})
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
