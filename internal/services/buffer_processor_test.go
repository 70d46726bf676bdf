package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/infrastructure/buffer"
	"github.com/fastygo/goaltracker/repository"
)

var errOffline = errors.New("remote offline")

type fakeNodes struct {
	mu      sync.Mutex
	fail    bool
	saved   map[string]domain.Node
	deleted []string
}

func newFakeNodes() *fakeNodes {
	return &fakeNodes{saved: map[string]domain.Node{}}
}

func (f *fakeNodes) GetByID(_ context.Context, id string) (*domain.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.saved[id]
	if !ok {
		return nil, domain.ErrNodeNotFound
	}
	return &n, nil
}

func (f *fakeNodes) List(context.Context, repository.NodeFilter) ([]domain.Node, error) {
	return nil, nil
}

func (f *fakeNodes) Save(_ context.Context, node *domain.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errOffline
	}
	f.saved[node.ID] = *node
	return nil
}

func (f *fakeNodes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errOffline
	}
	if _, ok := f.saved[id]; !ok {
		return domain.ErrNodeNotFound
	}
	delete(f.saved, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeNodes) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

type fakeTimeline struct {
	mu     sync.Mutex
	fail   bool
	events []domain.TimelineEvent
	users  []string
}

func (f *fakeTimeline) Append(_ context.Context, userID string, e domain.TimelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errOffline
	}
	f.events = append(f.events, e)
	f.users = append(f.users, userID)
	return nil
}

func (f *fakeTimeline) List(context.Context, repository.TimelineFilter) ([]domain.TimelineEvent, error) {
	return nil, nil
}

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

func newBufferStore(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), buffer.DefaultBucket)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func goalNode(t *testing.T, id, title string) *domain.Node {
	t.Helper()
	node, err := domain.GoalNode(domain.Goal{
		ID:        id,
		Title:     title,
		Level:     domain.LevelUncategorized,
		Status:    domain.GoalNotStarted,
		CreatedAt: time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC),
	}, "user-1")
	require.NoError(t, err)
	return &node
}

func TestBufferBridgeWritesThroughWhenOnline(t *testing.T) {
	nodes := newFakeNodes()
	events := &fakeTimeline{}
	bp := NewBufferProcessor(newBufferStore(t), staticHealth(true), nodes, events, nil, ProcessorConfig{})
	bridge := NewBufferBridge(bp)
	ctx := context.Background()

	require.NoError(t, bridge.BufferNode(ctx, buffer.OperationUpsert, goalNode(t, "g1", "Learn Piano")))
	require.NoError(t, bridge.BufferEvent(ctx, "user-1", &domain.TimelineEvent{ID: "e1", EventType: domain.EventGoalCreated, GoalID: "g1"}))

	assert.Contains(t, nodes.saved, "g1")
	require.Len(t, events.events, 1)
	assert.Equal(t, "user-1", events.users[0])
	assert.Zero(t, bp.Size())
}

func TestBufferBridgeRejectsEmptyPayload(t *testing.T) {
	bridge := NewBufferBridge(nil)
	assert.ErrorIs(t, bridge.BufferNode(context.Background(), buffer.OperationUpsert, &domain.Node{}), domain.ErrInvalidPayload)
	assert.ErrorIs(t, bridge.BufferEvent(context.Background(), "u", nil), domain.ErrInvalidPayload)
}

func TestBufferedNodeKeepsLatestStateAndDrains(t *testing.T) {
	nodes := newFakeNodes()
	nodes.setFail(true)
	events := &fakeTimeline{fail: true}
	bp := NewBufferProcessor(newBufferStore(t), nil, nodes, events, nil, ProcessorConfig{})
	bridge := NewBufferBridge(bp)
	ctx := context.Background()

	require.NoError(t, bridge.BufferNode(ctx, buffer.OperationUpsert, goalNode(t, "g1", "Draft")))
	require.NoError(t, bridge.BufferNode(ctx, buffer.OperationUpsert, goalNode(t, "g1", "Final")))
	require.NoError(t, bridge.BufferEvent(ctx, "user-1", &domain.TimelineEvent{ID: "e1", EventType: domain.EventGoalCreated}))
	assert.Equal(t, 2, bp.Size())

	nodes.setFail(false)
	events.mu.Lock()
	events.fail = false
	events.mu.Unlock()

	require.NoError(t, bp.Drain(ctx))
	assert.Zero(t, bp.Size())
	require.Contains(t, nodes.saved, "g1")
	assert.Equal(t, "Final", nodes.saved["g1"].Title)
	assert.Len(t, events.events, 1)
}

func TestDrainSkipsWhenOffline(t *testing.T) {
	nodes := newFakeNodes()
	bp := NewBufferProcessor(newBufferStore(t), staticHealth(false), nodes, &fakeTimeline{}, nil, ProcessorConfig{})
	require.NoError(t, NewBufferBridge(bp).BufferNode(context.Background(), buffer.OperationUpsert, goalNode(t, "g1", "Offline")))

	require.NoError(t, bp.Drain(context.Background()))
	assert.Equal(t, 1, bp.Size())
	assert.Empty(t, nodes.saved)
}

func TestDrainDropsItemAfterMaxRetries(t *testing.T) {
	nodes := newFakeNodes()
	nodes.setFail(true)
	bp := NewBufferProcessor(newBufferStore(t), nil, nodes, &fakeTimeline{}, nil, ProcessorConfig{MaxRetries: 2})
	require.NoError(t, NewBufferBridge(bp).BufferNode(context.Background(), buffer.OperationUpsert, goalNode(t, "g1", "Stuck")))

	require.NoError(t, bp.Drain(context.Background()))
	assert.Equal(t, 1, bp.Size())
	require.NoError(t, bp.Drain(context.Background()))
	assert.Zero(t, bp.Size())
}

func TestDeleteOfMissingNodeSucceeds(t *testing.T) {
	nodes := newFakeNodes()
	bp := NewBufferProcessor(newBufferStore(t), nil, nodes, &fakeTimeline{}, nil, ProcessorConfig{})
	err := NewBufferBridge(bp).BufferNode(context.Background(), buffer.OperationDelete, &domain.Node{ID: "gone", Type: domain.NodeGoal})
	require.NoError(t, err)
	assert.Zero(t, bp.Size())
}

func TestDrainCleansUpExpiredItems(t *testing.T) {
	nodes := newFakeNodes()
	store := newBufferStore(t)
	bp := NewBufferProcessor(store, staticHealth(false), nodes, &fakeTimeline{}, nil, ProcessorConfig{Retention: time.Hour})
	require.NoError(t, store.Enqueue(buffer.Item{
		ID:        "old",
		Entity:    buffer.EntityNode,
		Operation: buffer.OperationUpsert,
		Data:      []byte(`{}`),
		Timestamp: time.Now().Add(-2 * time.Hour),
	}))
	require.NoError(t, store.Enqueue(buffer.Item{
		ID:        "fresh",
		Entity:    buffer.EntityNode,
		Operation: buffer.OperationUpsert,
		Data:      []byte(`{}`),
	}))

	require.NoError(t, bp.Drain(context.Background()))
	assert.Equal(t, 1, bp.Size())
}

func TestNilProcessorIsSafe(t *testing.T) {
	var bp *BufferProcessor
	assert.NoError(t, bp.Drain(context.Background()))
	assert.Zero(t, bp.Size())
	assert.Error(t, bp.BufferOperation(context.Background(), buffer.Item{}))
	bp.Start()
	bp.Stop(context.Background())
}
