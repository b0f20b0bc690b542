package cache

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// entry holds one cached value with its bookkeeping
type entry[V any] struct {
	value     V
	createdAt time.Time
	lastUsed  time.Time
	size      int64 // Estimated memory size
}

// TTLCache is a size-bounded cache whose entries expire after maxAge.
// When full, the least recently used entry is evicted.
type TTLCache[V any] struct {
	name        string
	cache       map[string]*entry[V]
	mutex       sync.RWMutex
	maxEntries  int           // Maximum number of cached values
	maxAge      time.Duration // Maximum age of entries
	cleanupTick time.Duration // How often to run cleanup
	stopCleanup chan struct{}
	stopOnce    sync.Once
	now         func() time.Time

	countermux sync.RWMutex // guards cachedSize, hits, misses
	cachedSize int64
	hits       int64
	misses     int64
}

// NewTTLCache creates a cache and starts its cleanup goroutine.
// name is only used in log lines and stats.
func NewTTLCache[V any](name string, maxEntries int, maxAge time.Duration) *TTLCache[V] {
	c := newTTLCache[V](name, maxEntries, maxAge, time.Now)
	go c.cleanup()
	return c
}

func newTTLCache[V any](name string, maxEntries int, maxAge time.Duration, now func() time.Time) *TTLCache[V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	tick := maxAge
	if tick <= 0 || tick > 5*time.Minute {
		tick = 5 * time.Minute
	}
	return &TTLCache[V]{
		name:        name,
		cache:       make(map[string]*entry[V]),
		maxEntries:  maxEntries,
		maxAge:      maxAge,
		cleanupTick: tick,
		stopCleanup: make(chan struct{}),
		now:         now,
	}
}

// Get returns the cached value of key if present and not expired
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V

	c.mutex.RLock()
	e, exists := c.cache[key]
	c.mutex.RUnlock()

	if !exists {
		c.countMiss()
		return zero, false
	}

	if c.expired(e, c.now()) {
		c.Remove(key)
		c.countMiss()
		return zero, false
	}

	c.countermux.Lock()
	c.hits++
	c.countermux.Unlock()

	c.mutex.Lock()
	e.lastUsed = c.now()
	c.mutex.Unlock()

	return e.value, true
}

// Set stores value under key. size is the estimated memory use in bytes.
func (c *TTLCache[V]) Set(key string, value V, size int64) {
	now := c.now()
	e := &entry[V]{
		value:     value,
		createdAt: now,
		lastUsed:  now,
		size:      size,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if old, exists := c.cache[key]; exists {
		c.updateCachedSize(-old.size)
	}
	c.cache[key] = e
	c.updateCachedSize(size)

	c.evictIfNeeded()
}

// Remove deletes one entry
func (c *TTLCache[V]) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, exists := c.cache[key]; exists {
		c.updateCachedSize(-e.size)
		delete(c.cache, key)
	}
}

// Clear removes all entries. Hit and miss counters are kept.
func (c *TTLCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := len(c.cache)
	c.cache = make(map[string]*entry[V])
	c.countermux.Lock()
	c.cachedSize = 0
	c.countermux.Unlock()

	if count > 0 {
		log.Printf("[CACHE]: %s cleared %d entries", c.name, count)
	}
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache[V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// Hits returns the number of successful lookups
func (c *TTLCache[V]) Hits() int64 {
	c.countermux.RLock()
	defer c.countermux.RUnlock()
	return c.hits
}

// Misses returns the number of failed or expired lookups
func (c *TTLCache[V]) Misses() int64 {
	c.countermux.RLock()
	defer c.countermux.RUnlock()
	return c.misses
}

// GetStats returns cache statistics
func (c *TTLCache[V]) GetStats() map[string]interface{} {
	entryCount := c.Len()

	c.countermux.RLock()
	hits := c.hits
	misses := c.misses
	c.countermux.RUnlock()

	totalRequests := hits + misses
	hitRate := 0.0
	if totalRequests > 0 {
		hitRate = float64(hits) / float64(totalRequests) * 100
	}

	utilizationPercent := float64(entryCount) / float64(c.maxEntries) * 100

	return map[string]interface{}{
		"name":                c.name,
		"entries":             entryCount,
		"max_entries":         c.maxEntries,
		"size_bytes":          c.GetCachedSize(),
		"size_human":          c.GetCachedSizeHuman(),
		"max_age":             c.maxAge.String(),
		"hits":                hits,
		"misses":              misses,
		"hit_rate":            hitRate,
		"utilization_percent": utilizationPercent,
	}
}

// GetCachedSize returns the current cache size in bytes
func (c *TTLCache[V]) GetCachedSize() int64 {
	c.countermux.RLock()
	defer c.countermux.RUnlock()
	return c.cachedSize
}

// GetCachedSizeHuman returns human-readable cache size
func (c *TTLCache[V]) GetCachedSizeHuman() string {
	return HumanSize(c.GetCachedSize())
}

// HumanSize formats a byte count as bytes, KB or MB
func HumanSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d bytes", size)
	}
	if size < 1024*1024 {
		return fmt.Sprintf("%.2f KB", float64(size)/1024.0)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024.0*1024.0))
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (c *TTLCache[V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

func (c *TTLCache[V]) expired(e *entry[V], now time.Time) bool {
	return c.maxAge > 0 && now.Sub(e.createdAt) > c.maxAge
}

func (c *TTLCache[V]) countMiss() {
	c.countermux.Lock()
	c.misses++
	c.countermux.Unlock()
}

// updateCachedSize adjusts the size counter, never below zero
func (c *TTLCache[V]) updateCachedSize(delta int64) {
	c.countermux.Lock()
	c.cachedSize += delta
	if c.cachedSize < 0 {
		c.cachedSize = 0
	}
	c.countermux.Unlock()
}

// evictIfNeeded drops the least recently used entry (must be called with lock held)
func (c *TTLCache[V]) evictIfNeeded() {
	for len(c.cache) > c.maxEntries {
		var oldestKey string
		var oldestTime time.Time

		for key, e := range c.cache {
			if oldestKey == "" || e.lastUsed.Before(oldestTime) {
				oldestKey = key
				oldestTime = e.lastUsed
			}
		}
		if oldestKey == "" {
			return
		}
		c.updateCachedSize(-c.cache[oldestKey].size)
		delete(c.cache, oldestKey)
	}
}

func (c *TTLCache[V]) cleanup() {
	ticker := time.NewTicker(c.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

// cleanupExpired removes expired entries
func (c *TTLCache[V]) cleanupExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.cache {
		if c.expired(e, now) {
			c.updateCachedSize(-e.size)
			delete(c.cache, key)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("[CACHE]: %s cleaned up %d expired entries", c.name, removed)
	}
	return removed
}
