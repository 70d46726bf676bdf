package buffer

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_OrdersByPriorityThenTime(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Enqueue(Item{ID: "late-node", Entity: EntityNode, Priority: PriorityNode, Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.Enqueue(Item{ID: "event", Entity: EntityTimeline, Priority: PriorityTimeline, Timestamp: base}))
	require.NoError(t, s.Enqueue(Item{ID: "early-node", Entity: EntityNode, Priority: PriorityNode, Timestamp: base}))
	require.NoError(t, s.Enqueue(Item{ID: "delete", Entity: EntityNode, Operation: OperationDelete, Priority: PriorityDelete, Timestamp: base.Add(time.Hour)}))

	items, err := s.GetBatch(10)
	require.NoError(t, err)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"delete", "early-node", "late-node", "event"}, ids)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 4, size)
}

func TestStore_RemoveAndRequeue(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Enqueue(Item{ID: "a", Entity: EntityNode, Data: json.RawMessage(`{}`)}))

	items, err := s.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, defaultPriority, items[0].Priority)

	items[0].Retries++
	require.NoError(t, s.Remove(items[0]))
	require.NoError(t, s.Requeue(items[0]))

	items, err = s.GetBatch(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)

	require.NoError(t, s.Remove(Item{ID: "a"}))
	size, _ := s.Size()
	assert.Zero(t, size)
}

func TestStore_ReplaceKeepsLatest(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Replace(Item{ID: "goal-1", Entity: EntityNode, Operation: OperationUpsert, Data: json.RawMessage(`{"title":"old"}`)}))
	require.NoError(t, s.Replace(Item{ID: "goal-1", Entity: EntityNode, Operation: OperationDelete, Priority: PriorityDelete}))
	require.NoError(t, s.Replace(Item{ID: "goal-2", Entity: EntityNode, Operation: OperationUpsert}))

	items, err := s.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "goal-1", items[0].ID)
	assert.Equal(t, OperationDelete, items[0].Operation)
}

func TestStore_DiscardDropsEveryItemForID(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Enqueue(Item{ID: "goal-1", Entity: EntityNode, Operation: OperationUpsert, Timestamp: base}))
	require.NoError(t, s.Enqueue(Item{ID: "goal-1", Entity: EntityNode, Operation: OperationUpsert, Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.Enqueue(Item{ID: "goal-2", Entity: EntityNode, Operation: OperationUpsert, Timestamp: base}))

	removed, err := s.Discard("goal-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	items, err := s.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "goal-2", items[0].ID)

	removed, err = s.Discard("missing")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStore_Cleanup(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	require.NoError(t, s.Enqueue(Item{ID: "old", Timestamp: now.Add(-48 * time.Hour)}))
	require.NoError(t, s.Enqueue(Item{ID: "new", Timestamp: now}))

	removed, err := s.Cleanup(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	items, err := s.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)
}

func TestStore_NilSafe(t *testing.T) {
	var s *Store
	assert.Error(t, s.Enqueue(Item{}))
	_, err := s.Size()
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}
