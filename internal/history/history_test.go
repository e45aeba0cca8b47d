package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"email-dispatch-go/internal/models"
)

func record(id string, status models.EmailStatus) models.EmailRecord {
	return models.EmailRecord{
		ID:      id,
		ToEmail: "user@example.com",
		Subject: "test",
		Status:  status,
	}
}

func TestRecordOrdering(t *testing.T) {
	store := NewStore(0)
	store.Record(record("first", models.StatusSent))
	store.Record(record("second", models.StatusFailed))
	store.Record(record("third", models.StatusSent))

	got := store.Query(10)
	assert.Len(t, got, 3)
	assert.Equal(t, "third", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, "first", got[2].ID)
}

func TestRecordCounters(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < 4; i++ {
		store.Record(record(fmt.Sprintf("s%d", i), models.StatusSent))
	}
	for i := 0; i < 3; i++ {
		store.Record(record(fmt.Sprintf("f%d", i), models.StatusFailed))
	}

	stats := store.Stats()
	assert.Equal(t, int64(4), stats.TotalSent)
	assert.Equal(t, int64(3), stats.TotalFailed)
	assert.Equal(t, int64(7), stats.TotalSent+stats.TotalFailed)
}

func TestEvictionBound(t *testing.T) {
	const maxEntries = 10
	store := NewStore(maxEntries)

	for i := 0; i < maxEntries+5; i++ {
		store.Record(record(fmt.Sprintf("rec-%d", i), models.StatusSent))
	}

	got := store.Query(100)
	assert.Len(t, got, maxEntries)
	// The retained records are the most recent ones
	assert.Equal(t, "rec-14", got[0].ID)
	assert.Equal(t, "rec-5", got[len(got)-1].ID)
	// Counters are not affected by eviction
	assert.Equal(t, int64(maxEntries+5), store.Stats().TotalSent)
}

func TestQueryLimit(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < 60; i++ {
		store.Record(record(fmt.Sprintf("rec-%d", i), models.StatusSent))
	}

	assert.Len(t, store.Query(5), 5)
	assert.Len(t, store.Query(DefaultQueryLimit), 50)
	// Zero falls back to the default
	assert.Len(t, store.Query(0), 50)
	// Limit above the record count returns everything
	assert.Len(t, store.Query(200), 60)
}

func TestQueryIsPureRead(t *testing.T) {
	store := NewStore(0)
	store.Record(record("only", models.StatusSent))

	first := store.Query(10)
	second := store.Query(10)
	assert.Equal(t, first, second)
	assert.Equal(t, store.Stats(), store.Stats())

	// Mutating the returned slice must not touch the store
	first[0].ID = "mutated"
	assert.Equal(t, "only", store.Query(10)[0].ID)
}

func TestGet(t *testing.T) {
	store := NewStore(2)
	store.Record(record("a", models.StatusSent))
	store.Record(record("b", models.StatusFailed))

	rec, ok := store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", rec.ID)

	_, ok = store.Get("missing")
	assert.False(t, ok)

	// An evicted record is no longer found
	store.Record(record("c", models.StatusSent))
	_, ok = store.Get("a")
	assert.False(t, ok)
}

func TestStatsSnapshot(t *testing.T) {
	store := NewStore(0)
	store.Record(record("a", models.StatusSent))

	snap := store.Stats()
	snap.TotalSent = 99
	assert.Equal(t, int64(1), store.Stats().TotalSent)
}

func TestPendingPairing(t *testing.T) {
	store := NewStore(0)
	store.Begin()
	assert.Equal(t, int64(1), store.Stats().TotalPending)

	store.Record(record("a", models.StatusSent))
	stats := store.Stats()
	assert.Equal(t, int64(0), stats.TotalPending)
	assert.Equal(t, int64(1), stats.TotalSent)

	// A record without a matching Begin never drives pending negative
	store.Record(record("b", models.StatusFailed))
	assert.Equal(t, int64(0), store.Stats().TotalPending)
}

func TestConcurrentRecord(t *testing.T) {
	const writers = 8
	const perWriter = 50

	store := NewStore(0)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				status := models.StatusSent
				if i%2 == 0 {
					status = models.StatusFailed
				}
				store.Record(record(fmt.Sprintf("w%d-%d", w, i), status))
			}
		}(w)
	}
	wg.Wait()

	stats := store.Stats()
	assert.Equal(t, int64(writers*perWriter), stats.TotalSent+stats.TotalFailed)
	assert.Equal(t, writers*perWriter, store.Size())
}
