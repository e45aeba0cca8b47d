package history

import (
	"sync"

	"email-dispatch-go/internal/models"
)

// DefaultQueryLimit is applied when a query does not specify a limit.
const DefaultQueryLimit = 50

// Store is the bounded, in-memory record of past dispatch attempts plus
// running counters. Records are held most-recent-first in completion
// order. All state is volatile and reset on restart.
type Store struct {
	mu         sync.Mutex
	records    []models.EmailRecord
	stats      models.Stats
	maxEntries int
}

// NewStore creates a history store. maxEntries bounds the number of
// retained records; zero means unbounded.
func NewStore(maxEntries int) *Store {
	return &Store{maxEntries: maxEntries}
}

// Begin marks one dispatch as in flight.
func (s *Store) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.TotalPending++
}

// Record inserts a completed record at the front of the history and
// increments exactly one completion counter, as a single atomic update.
// The oldest records are evicted once the configured bound is exceeded.
func (s *Store) Record(rec models.EmailRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]models.EmailRecord{rec}, s.records...)
	if s.maxEntries > 0 && len(s.records) > s.maxEntries {
		s.records = s.records[:s.maxEntries]
	}

	if rec.Status == models.StatusSent {
		s.stats.TotalSent++
	} else {
		s.stats.TotalFailed++
	}
	if s.stats.TotalPending > 0 {
		s.stats.TotalPending--
	}
}

// Query returns a copy of up to limit most-recent records. A limit of
// zero or less falls back to DefaultQueryLimit.
func (s *Store) Query(limit int) []models.EmailRecord {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]models.EmailRecord, limit)
	copy(out, s.records[:limit])
	return out
}

// Get returns the retained record with the given id, if any.
func (s *Store) Get(id string) (models.EmailRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.EmailRecord{}, false
}

// Stats returns a snapshot of the running counters.
func (s *Store) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Size returns the number of records currently retained.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
