package pipeline

import (
	"sync"
	"time"
)

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// CompositeCache is an explicitly constructed TTL cache for composite
// image bytes. The pipeline takes it as a constructor argument so tests
// can inject a zero-TTL instance instead of depending on wall-clock
// timing.
//
// Thread Safety: safe for concurrent use.
type CompositeCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCompositeCache creates a cache with the given TTL. A TTL of zero or
// less disables caching entirely: every Get misses.
func NewCompositeCache(ttl time.Duration) *CompositeCache {
	return &CompositeCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached bytes for key if present and unexpired.
func (c *CompositeCache) Get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.data, true
}

// Put stores bytes under key for the cache's TTL.
func (c *CompositeCache) Put(key string, data []byte) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, expires: c.now().Add(c.ttl)}
}

// Len returns the number of stored entries, expired or not.
func (c *CompositeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
