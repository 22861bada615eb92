package cache

import "time"

// DefaultTTL applies when Set is called with a zero TTL.
const DefaultTTL = time.Hour

type memoryOptions struct {
	ttl      time.Duration
	interval time.Duration
	limit    int
}

// MemoryOption configures NewMemory.
type MemoryOption func(*memoryOptions)

// WithDefaultTTL sets the TTL used when Set gets zero. Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.ttl = d }
}

// WithCleanupInterval sets how often expired entries are purged.
// Zero disables the background janitor. Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.interval = d }
}

// WithMaxEntries bounds the cache; the least recently used entry is
// evicted when full. Zero means unlimited.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) { o.limit = n }
}

type redisOptions struct {
	prefix string
	ttl    time.Duration
}

// RedisOption configures NewRedis.
type RedisOption func(*redisOptions)

// WithPrefix namespaces keys as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) { o.prefix = prefix }
}

// WithRedisDefaultTTL sets the TTL used when Set gets zero. Default: 1 hour.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) { o.ttl = d }
}
