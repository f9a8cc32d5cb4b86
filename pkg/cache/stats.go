package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks cache performance counters.
type Statistics struct {
	// Atomic counters for thread-safe updates
	hits      int64
	misses    int64
	staleHits int64
	sets      int64
	deletes   int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Hit records a fresh cache hit.
func (s *Statistics) Hit() {
	atomic.AddInt64(&s.hits, 1)
}

// Miss records a cache miss.
func (s *Statistics) Miss() {
	atomic.AddInt64(&s.misses, 1)
}

// StaleHit records a lookup that found only an expired entry.
func (s *Statistics) StaleHit() {
	atomic.AddInt64(&s.staleHits, 1)
}

// Set records a cache set operation.
func (s *Statistics) Set() {
	atomic.AddInt64(&s.sets, 1)
}

// Delete records a cache delete operation.
func (s *Statistics) Delete() {
	atomic.AddInt64(&s.deletes, 1)
}

// UpdateSize updates the current cache size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	s.mu.Unlock()
}

// Hits returns the number of fresh hits.
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the number of misses.
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// StaleHits returns the number of stale lookups.
func (s *Statistics) StaleHits() int64 { return atomic.LoadInt64(&s.staleHits) }

// Sets returns the number of set operations.
func (s *Statistics) Sets() int64 { return atomic.LoadInt64(&s.sets) }

// Deletes returns the number of delete operations.
func (s *Statistics) Deletes() int64 { return atomic.LoadInt64(&s.deletes) }

// Size returns the last recorded cache size.
func (s *Statistics) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// HitRate returns hits / (hits + misses + staleHits), or 0 before any lookup.
func (s *Statistics) HitRate() float64 {
	hits := s.Hits()
	total := hits + s.Misses() + s.StaleHits()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Uptime returns how long the statistics have been collected.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}
