package cache

import "time"

// Cache is a TTL-bounded key/value store with an explicit clock and
// capacity.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Len() int
	Stats() Stats
}

// Stats tracks cache effectiveness
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Config configures a cache instance. Clock is injectable for tests; a nil
// Clock uses time.Now.
type Config struct {
	MaxEntries int
	DefaultTTL time.Duration
	Clock      func() time.Time
}
