package entitystore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_MergeAndGet(t *testing.T) {
	store := New()

	store.Merge(Entities{
		TypeMoves: {
			"m1": {"id": "m1", "locator": "ABC123"},
		},
	})

	move, exists := store.Get(TypeMoves, "m1")
	require.True(t, exists)
	assert.Equal(t, "ABC123", move["locator"])

	_, exists = store.Get(TypeMoves, "m2")
	assert.False(t, exists)
}

func TestStore_LastWriteWins(t *testing.T) {
	store := New()

	store.Merge(Entities{
		TypeMoves: {"m1": {"id": "m1", "status": "DRAFT", "locator": "ABC123"}},
	})
	store.Merge(Entities{
		TypeMoves: {"m1": {"id": "m1", "status": "SUBMITTED"}},
	})

	move, _ := store.Get(TypeMoves, "m1")
	assert.Equal(t, "SUBMITTED", move["status"])
	// replaced wholesale, not field-merged
	assert.NotContains(t, move, "locator")
	assert.Equal(t, 1, store.Size(TypeMoves))
}

func TestStore_MergeIsIdempotent(t *testing.T) {
	entities := Entities{
		TypeUser:  {"u1": {"id": "u1", "service_member": "sm1"}},
		TypeMoves: {"m1": {"id": "m1"}, "m2": {"id": "m2"}},
	}

	once := New()
	once.Merge(entities)

	twice := New()
	twice.Merge(entities)
	twice.Merge(entities)

	for _, entityType := range once.Types() {
		assert.Equal(t, once.All(entityType), twice.All(entityType))
	}
	assert.Equal(t, once.Types(), twice.Types())
}

func TestStore_MergeDoesNotDisturbOtherBuckets(t *testing.T) {
	store := New()
	store.Merge(Entities{
		TypeUser: {"u1": {"id": "u1", "email": "leo@example.com"}},
	})

	store.Merge(Entities{
		TypeMoves: {"m1": {"id": "m1"}},
	})

	user, exists := store.Get(TypeUser, "u1")
	require.True(t, exists)
	assert.Equal(t, "leo@example.com", user["email"])
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := New()
	store.Merge(Entities{TypeMoves: {"m1": {"id": "m1", "status": "DRAFT"}}})

	move, _ := store.Get(TypeMoves, "m1")
	move["status"] = "mutated"

	fresh, _ := store.Get(TypeMoves, "m1")
	assert.Equal(t, "DRAFT", fresh["status"])
}

func TestStore_DeleteHasNoCascade(t *testing.T) {
	store := New()
	store.Merge(Entities{
		TypeOrders: {"o1": {"id": "o1", "moves": []any{"m1"}}},
		TypeMoves:  {"m1": {"id": "m1", "orders_id": "o1"}},
	})

	require.True(t, store.Delete(TypeOrders, "o1"))

	_, exists := store.Get(TypeMoves, "m1")
	assert.True(t, exists, "deleting orders must not cascade to moves")

	assert.False(t, store.Delete(TypeOrders, "o1"))
}

func TestStore_AllIsOrderedByID(t *testing.T) {
	store := New()
	store.Merge(Entities{
		TypeMoves: {
			"m3": {"id": "m3"},
			"m1": {"id": "m1"},
			"m2": {"id": "m2"},
		},
	})

	records := store.All(TypeMoves)
	require.Len(t, records, 3)
	assert.Equal(t, "m1", records[0]["id"])
	assert.Equal(t, "m2", records[1]["id"])
	assert.Equal(t, "m3", records[2]["id"])
}

func TestStore_Clear(t *testing.T) {
	store := New()
	store.Merge(Entities{TypeUser: {"u1": {"id": "u1"}}})

	store.Clear()

	assert.Empty(t, store.Types())
	assert.Equal(t, 0, store.Size(TypeUser))
}

func TestStore_ConcurrentMerges(t *testing.T) {
	store := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			entityType := TypeMoves
			if n%2 == 0 {
				entityType = TypeMTOShipments
			}
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("r%d-%d", n, j)
				store.Merge(Entities{entityType: {id: {"id": id}}})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, store.Size(TypeMoves))
	assert.Equal(t, 200, store.Size(TypeMTOShipments))
}

func TestStore_Stats(t *testing.T) {
	store := New()
	store.Merge(Entities{TypeUser: {"u1": {"id": "u1"}}})

	store.Get(TypeUser, "u1")
	store.Get(TypeUser, "missing")
	store.Delete(TypeUser, "u1")

	summary := store.Stats().Summary()
	assert.Equal(t, int64(1), summary.Hits)
	assert.Equal(t, int64(1), summary.Misses)
	assert.Equal(t, int64(1), summary.Merges)
	assert.Equal(t, int64(1), summary.Deletes)
	assert.Equal(t, 0, summary.Sizes[TypeUser])
}

type recordingRecorder struct {
	mu     sync.Mutex
	merges []string
	counts map[string]int
}

func (r *recordingRecorder) RecordStoreMerge(entityType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merges = append(r.merges, entityType)
}

func (r *recordingRecorder) RecordEntityCount(entityType string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[entityType] = count
}

func TestStore_RecorderObservesMerges(t *testing.T) {
	recorder := &recordingRecorder{}
	store := New()
	store.metrics = recorder

	store.Merge(Entities{
		TypeMoves: {"m1": {"id": "m1"}, "m2": {"id": "m2"}},
	})

	assert.Equal(t, []string{TypeMoves}, recorder.merges)
	assert.Equal(t, 2, recorder.counts[TypeMoves])
}
