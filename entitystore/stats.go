package entitystore

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks store activity. Always on.
type Statistics struct {
	hits    int64
	misses  int64
	merges  int64
	deletes int64

	mu        sync.RWMutex
	startTime time.Time
	sizes     map[string]int
}

// NewStatistics creates a statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
		sizes:     make(map[string]int),
	}
}

// Hit records a successful lookup.
func (s *Statistics) Hit() {
	atomic.AddInt64(&s.hits, 1)
}

// Miss records a failed lookup.
func (s *Statistics) Miss() {
	atomic.AddInt64(&s.misses, 1)
}

// Merge records a bucket merge and the bucket's resulting size.
func (s *Statistics) Merge(entityType string, size int) {
	atomic.AddInt64(&s.merges, 1)
	s.updateSize(entityType, size)
}

// Delete records a record removal and the bucket's resulting size.
func (s *Statistics) Delete(entityType string, size int) {
	atomic.AddInt64(&s.deletes, 1)
	s.updateSize(entityType, size)
}

// Clear resets per-type sizes after the store is dropped.
func (s *Statistics) Clear() {
	s.mu.Lock()
	s.sizes = make(map[string]int)
	s.mu.Unlock()
}

func (s *Statistics) updateSize(entityType string, size int) {
	s.mu.Lock()
	s.sizes[entityType] = size
	s.mu.Unlock()
}

// Hits returns the total number of successful lookups.
func (s *Statistics) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns the total number of failed lookups.
func (s *Statistics) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

// Merges returns the total number of bucket merges.
func (s *Statistics) Merges() int64 {
	return atomic.LoadInt64(&s.merges)
}

// Deletes returns the total number of record removals.
func (s *Statistics) Deletes() int64 {
	return atomic.LoadInt64(&s.deletes)
}

// Size returns the last observed size of the given bucket.
func (s *Statistics) Size(entityType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sizes[entityType]
}

// Uptime returns how long this store has existed.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Summary is a point-in-time snapshot of store statistics.
type Summary struct {
	Hits    int64          `json:"hits"`
	Misses  int64          `json:"misses"`
	Merges  int64          `json:"merges"`
	Deletes int64          `json:"deletes"`
	Sizes   map[string]int `json:"sizes"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() Summary {
	s.mu.RLock()
	sizes := make(map[string]int, len(s.sizes))
	for entityType, size := range s.sizes {
		sizes[entityType] = size
	}
	s.mu.RUnlock()

	return Summary{
		Hits:    s.Hits(),
		Misses:  s.Misses(),
		Merges:  s.Merges(),
		Deletes: s.Deletes(),
		Sizes:   sizes,
	}
}
