package cache

import (
	"sync"
	"time"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
)

// Freshness describes whether a cache entry is within its TTL.
type Freshness int

const (
	// Fresh entries are within their TTL and safe to serve without a refetch.
	Fresh Freshness = iota
	// Stale entries have outlived their TTL but are retained for fallback.
	Stale
)

// String returns the string representation of Freshness.
func (f Freshness) String() string {
	if f == Fresh {
		return "fresh"
	}
	return "stale"
}

// Entry is a cached value with its lifetime metadata.
// Invariant: ExpiresAt = CreatedAt + ttl.
type Entry[V any] struct {
	Value     V
	CreatedAt time.Time
	ExpiresAt time.Time
}

// valid reports whether the entry is within its TTL at the given instant.
func (e Entry[V]) valid(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Cache is a thread-safe TTL cache that retains expired entries for stale
// fallback. The zero value is not usable; construct with New.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	items   map[string]Entry[V]
	stats   *Statistics
	metrics *cacheMetrics
}

// New creates a cache whose entries stay fresh for ttl. Returns an error
// if ttl is not positive or metrics registration fails.
func New[V any](ttl time.Duration, opts ...Option[V]) (*Cache[V], error) {
	if ttl <= 0 {
		return nil, errors.WrapInvalid(
			errors.New("ttl must be positive"), "cache", "New", "validate ttl")
	}

	options := &cacheOptions[V]{}
	for _, opt := range opts {
		opt(options)
	}

	// Stats are always collected - observability is not optional
	stats := NewStatistics()

	var metrics *cacheMetrics
	if options.metricsReg != nil && options.metricsPrefix != "" {
		var err error
		metrics, err = newCacheMetrics(options.metricsReg, options.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "New", "metrics registration")
		}
	}

	return &Cache[V]{
		ttl:     ttl,
		items:   make(map[string]Entry[V]),
		stats:   stats,
		metrics: metrics,
	}, nil
}

// TTL returns the configured entry lifetime.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get retrieves a value by key. Only fresh entries count as hits; stale
// entries are reported with found=true so callers can fall back to them.
func (c *Cache[V]) Get(key string) (V, Freshness, bool) {
	entry, freshness, ok := c.Lookup(key)
	return entry.Value, freshness, ok
}

// Lookup is Get with entry metadata, used by callers that need the
// original fetch time (e.g. to report how stale a fallback is).
func (c *Cache[V]) Lookup(key string) (Entry[V], Freshness, bool) {
	c.mu.RLock()
	entry, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		c.stats.Miss()
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
		return Entry[V]{}, Stale, false
	}

	if entry.valid(time.Now()) {
		c.stats.Hit()
		if c.metrics != nil {
			c.metrics.recordHit()
		}
		return entry, Fresh, true
	}

	c.stats.StaleHit()
	if c.metrics != nil {
		c.metrics.recordStaleHit()
	}
	return entry, Stale, true
}

// Put stores a value created now, replacing any previous entry for key.
func (c *Cache[V]) Put(key string, value V) {
	c.PutAt(key, value, time.Now())
}

// PutAt stores a value with an explicit creation time. Entries loaded from
// durable storage keep their original fetch time, so an old mirror lands
// in the cache already stale.
func (c *Cache[V]) PutAt(key string, value V, createdAt time.Time) {
	entry := Entry[V]{
		Value:     value,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(c.ttl),
	}

	c.mu.Lock()
	c.items[key] = entry
	size := len(c.items)
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.recordSet()
		c.metrics.updateSize(size)
	}
}

// Delete removes an entry by key. Returns true if the key existed.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	_, existed := c.items[key]
	delete(c.items, key)
	size := len(c.items)
	c.mu.Unlock()

	if existed {
		c.stats.Delete()
		c.stats.UpdateSize(int64(size))
		if c.metrics != nil {
			c.metrics.recordDelete()
			c.metrics.updateSize(size)
		}
	}
	return existed
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]Entry[V])
	c.mu.Unlock()

	c.stats.UpdateSize(0)
	if c.metrics != nil {
		c.metrics.updateSize(0)
	}
}

// Size returns the current number of entries, fresh and stale.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns all keys currently in the cache.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns the cache statistics tracker.
func (c *Cache[V]) Stats() *Statistics {
	return c.stats
}
