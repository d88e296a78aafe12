package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
	storedAt  time.Time
}

// MemoryCache implements Cache with in-memory storage. Expired entries are
// dropped lazily on access; when the capacity is reached the oldest entry is
// evicted.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]*entry
	config Config
	stats  Stats
	clock  func() time.Time
}

// NewMemory creates a new in-memory cache
func NewMemory(config Config) *MemoryCache {
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 128
	}
	return &MemoryCache{
		items:  make(map[string]*entry),
		config: config,
		clock:  clock,
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.stats.Misses++
		return nil, false
	}

	if c.clock().After(item.expiresAt) {
		delete(c.items, key)
		c.stats.Misses++
		c.stats.Evictions++
		return nil, false
	}

	c.stats.Hits++
	return item.value, true
}

// Set stores a value with the given TTL; a non-positive TTL uses the
// configured default.
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.config.MaxEntries {
		c.evictOldest()
	}

	now := c.clock()
	c.items[key] = &entry{
		value:     value,
		expiresAt: now.Add(ttl),
		storedAt:  now,
	}
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of live entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns a copy of the cache statistics
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// evictOldest removes the entry with the oldest store time. Caller must hold
// the write lock.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.storedAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.stats.Evictions++
	}
}
