// Package cache provides a generic in-memory key-value store with
// per-entry time-to-live. It is the only state shared across requests;
// nothing here survives a process restart.
package cache

import (
	"context"
	"sync"
	"time"
)

// entry holds a cached value with its expiry bounds.
type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a TTL map from K to V. A read never returns an entry whose
// expiry has passed; stale entries are evicted on access. Construct with
// New and share by injection — there is no package-level instance.
type Cache[K comparable, V any] struct {
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[K]entry[V]
	now     func() time.Time // injectable clock for testing
}

// New creates a cache with the given default TTL.
func New[K comparable, V any](defaultTTL time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		defaultTTL: defaultTTL,
		entries:    make(map[K]entry[V]),
		now:        time.Now,
	}
}

// SetClock replaces the cache's clock. Intended for tests.
func (c *Cache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get returns the cached value for key if present and unexpired.
// An expired entry is removed as a side effect of the miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL, overwriting any prior
// entry unconditionally.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache[K, V]) SetTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry[V]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// Delete removes the entry for key, if any.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]entry[V])
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cleanup evicts every expired entry and returns the eviction count.
// Lazy eviction on Get is sufficient for correctness; Cleanup bounds
// memory for keys that are never re-read in a long-lived process.
func (c *Cache[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			evicted++
		}
	}
	return evicted
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (c *Cache[K, V]) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}
