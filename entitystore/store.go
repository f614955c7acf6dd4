package entitystore

import (
	"sort"
	"sync"

	"github.com/movelink/movekit/metric"
	"github.com/movelink/movekit/provider"
)

// Entities is a normalized record set: entity-type name to id to record.
// It is the unit of exchange between Normalize and Merge.
type Entities map[string]map[string]provider.Record

// Recorder receives store observations. *metric.Metrics satisfies it.
type Recorder interface {
	RecordEntityCount(entityType string, count int)
	RecordStoreMerge(entityType string)
}

// Store is the normalized entity state shared across flows.
//
// The top-level mutex guards only the bucket map; each bucket has its own
// lock so writes to one entity type never contend with reads of another.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	stats   *Statistics
	metrics Recorder
}

type bucket struct {
	mu    sync.RWMutex
	items map[string]provider.Record
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics publishes merge counts and per-type sizes to the given
// recorder in addition to the always-on Statistics.
func WithMetrics(metrics *metric.Metrics) Option {
	return func(s *Store) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		buckets: make(map[string]*bucket),
		stats:   NewStatistics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) bucketFor(entityType string, create bool) *bucket {
	s.mu.RLock()
	b, exists := s.buckets[entityType]
	s.mu.RUnlock()
	if exists || !create {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, exists = s.buckets[entityType]; exists {
		return b
	}
	b = &bucket{items: make(map[string]provider.Record)}
	s.buckets[entityType] = b
	return b
}

// Merge folds a normalized record set into the store. Records replace any
// existing record with the same id wholesale; entity types absent from the
// set are untouched. Safe to call from multiple flows concurrently.
func (s *Store) Merge(entities Entities) {
	for entityType, records := range entities {
		if len(records) == 0 {
			continue
		}
		b := s.bucketFor(entityType, true)

		b.mu.Lock()
		for id, record := range records {
			b.items[id] = record.Clone()
		}
		size := len(b.items)
		b.mu.Unlock()

		s.stats.Merge(entityType, size)
		if s.metrics != nil {
			s.metrics.RecordStoreMerge(entityType)
			s.metrics.RecordEntityCount(entityType, size)
		}
	}
}

// Get returns a copy of the record stored under the given type and id.
func (s *Store) Get(entityType, id string) (provider.Record, bool) {
	b := s.bucketFor(entityType, false)
	if b == nil {
		s.stats.Miss()
		return nil, false
	}

	b.mu.RLock()
	record, exists := b.items[id]
	b.mu.RUnlock()

	if !exists {
		s.stats.Miss()
		return nil, false
	}
	s.stats.Hit()
	return record.Clone(), true
}

// All returns copies of every record of the given type, ordered by id so
// reads are deterministic.
func (s *Store) All(entityType string) []provider.Record {
	b := s.bucketFor(entityType, false)
	if b == nil {
		return nil
	}

	b.mu.RLock()
	ids := make([]string, 0, len(b.items))
	for id := range b.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]provider.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, b.items[id].Clone())
	}
	b.mu.RUnlock()

	return records
}

// Delete removes a single record. Related records in other buckets are
// never touched; there is no cascade.
func (s *Store) Delete(entityType, id string) bool {
	b := s.bucketFor(entityType, false)
	if b == nil {
		return false
	}

	b.mu.Lock()
	_, exists := b.items[id]
	if exists {
		delete(b.items, id)
	}
	size := len(b.items)
	b.mu.Unlock()

	if exists {
		s.stats.Delete(entityType, size)
		if s.metrics != nil {
			s.metrics.RecordEntityCount(entityType, size)
		}
	}
	return exists
}

// Size returns the number of records of the given type.
func (s *Store) Size(entityType string) int {
	b := s.bucketFor(entityType, false)
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Types returns the entity-type names present in the store, sorted.
func (s *Store) Types() []string {
	s.mu.RLock()
	types := make([]string, 0, len(s.buckets))
	for entityType := range s.buckets {
		types = append(types, entityType)
	}
	s.mu.RUnlock()
	sort.Strings(types)
	return types
}

// Clear drops every bucket. Used at logout.
func (s *Store) Clear() {
	s.mu.Lock()
	types := make([]string, 0, len(s.buckets))
	for entityType := range s.buckets {
		types = append(types, entityType)
	}
	s.buckets = make(map[string]*bucket)
	s.mu.Unlock()

	s.stats.Clear()
	if s.metrics != nil {
		for _, entityType := range types {
			s.metrics.RecordEntityCount(entityType, 0)
		}
	}
}

// Stats returns the store's statistics tracker.
func (s *Store) Stats() *Statistics {
	return s.stats
}
