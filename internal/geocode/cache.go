package geocode

import (
	"sync"
	"time"
)

// Cache stores resolved addresses keyed by geohash. Caching is an optimization
// only; resolution stays correct with a nil cache.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryCache is a tiny in-memory TTL cache for geocode lookups.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	v  string
	ts time.Time
}

// NewMemoryCache creates a cache with the provided TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: make(map[string]cacheEntry), ttl: ttl}
}

// Get returns the cached value and true if present and not expired.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return "", false
	}
	return e.v, true
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(key, value string) {
	c.mu.Lock()
	c.store[key] = cacheEntry{v: value, ts: time.Now()}
	c.mu.Unlock()
}
