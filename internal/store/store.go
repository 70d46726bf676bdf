// Package store is the single in-process owner of tracker state. Every
// mutation runs under one lock, appends a timeline event, persists the full
// snapshot and then notifies subscribers.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/metrics"
	"github.com/fastygo/goaltracker/internal/timeline"
	"github.com/fastygo/goaltracker/repository"
)

const (
	DefaultWakingHoursPerDay  = 16
	DefaultTaskMinutes        = 30
	DefaultPersistTimeout     = 5 * time.Second
	defaultSubscriberCapacity = 4
)

// Settings holds the tunables of the tracker.
type Settings struct {
	WakingHoursPerDay  float64
	DefaultTaskMinutes int
	SleepTargetMinutes int
	SleepWindow        int
	TimelineCapacity   int
	Location           *time.Location
	PersistTimeout     time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.WakingHoursPerDay <= 0 {
		s.WakingHoursPerDay = DefaultWakingHoursPerDay
	}
	if s.DefaultTaskMinutes <= 0 {
		s.DefaultTaskMinutes = DefaultTaskMinutes
	}
	if s.SleepTargetMinutes <= 0 {
		s.SleepTargetMinutes = metrics.DefaultSleepTargetMinutes
	}
	if s.SleepWindow <= 0 {
		s.SleepWindow = metrics.DefaultSleepWindow
	}
	if s.TimelineCapacity <= 0 {
		s.TimelineCapacity = timeline.DefaultCapacity
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.PersistTimeout <= 0 {
		s.PersistTimeout = DefaultPersistTimeout
	}
	return s
}

// Options wires the store's collaborators. Every field is optional.
type Options struct {
	Settings  Settings
	Snapshots repository.SnapshotRepository
	Now       func() time.Time
	NewID     func() string
	Logger    *zap.Logger
}

// Store owns goals, tasks, time slots, productivity and sleep logs and the
// timeline. Methods never return errors: unknown ids are no-ops and lookups
// report presence with a bool.
type Store struct {
	mu sync.RWMutex

	settings  Settings
	snapshots repository.SnapshotRepository
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger

	goals           []domain.Goal
	tasks           []domain.Task
	slots           []domain.TimeSlot
	productivity    []domain.ProductivityLog
	sleep           []domain.SleepWakeLog
	events          *timeline.Log
	lastInteraction *time.Time

	revision  uint64
	persistMu sync.Mutex
	savedRev  uint64

	// turnMu guards doneRev; mutations persist and publish in revision order.
	turnMu  sync.Mutex
	turn    *sync.Cond
	doneRev uint64

	subMu     sync.RWMutex
	subs      map[int]func(Change)
	nextSubID int
}

// New creates an empty store. Call Load to rehydrate a persisted snapshot.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	settings := opts.Settings.withDefaults()
	s := &Store{
		settings:  settings,
		snapshots: opts.Snapshots,
		now:       now,
		newID:     newID,
		logger:    logger.With(zap.String("component", "store")),
		events:    timeline.New(settings.TimelineCapacity),
		subs:      make(map[int]func(Change), defaultSubscriberCapacity),
	}
	s.turn = sync.NewCond(&s.turnMu)
	return s
}

// Settings returns the effective settings after defaults were applied.
func (s *Store) Settings() Settings {
	return s.settings
}

// Subscribe registers fn for every change produced by a mutation. Callbacks
// run on the mutating goroutine after the store lock is released, in the
// order the changes happened, even across concurrent mutations. Callbacks
// may read the store but must not mutate it. The returned func removes the
// subscription.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// clock returns the current time in the configured location.
func (s *Store) clock() time.Time {
	return s.now().In(s.settings.Location)
}

// mutate runs fn under the write lock. When fn recorded any change, the
// interaction timestamp moves, the snapshot is persisted and subscribers
// are notified.
func (s *Store) mutate(op string, fn func(tx *txn)) {
	s.mu.Lock()
	tx := &txn{s: s, now: s.clock()}
	fn(tx)
	if len(tx.changes) == 0 && !tx.touched {
		s.mu.Unlock()
		return
	}
	s.lastInteraction = domain.TimePtr(tx.now)
	s.revision++
	rev := s.revision
	payload, err := encodeState(s.stateLocked())
	s.mu.Unlock()

	s.awaitTurn(rev)
	defer s.endTurn(rev)

	s.logger.Debug("store mutated", zap.String("op", op), zap.Int("changes", len(tx.changes)))
	if err != nil {
		s.logger.Error("failed to encode snapshot", zap.String("op", op), zap.Error(err))
	} else {
		s.persist(rev, payload)
	}
	s.publish(tx.changes)
}

// awaitTurn blocks until every earlier revision was persisted and published.
func (s *Store) awaitTurn(rev uint64) {
	s.turnMu.Lock()
	for s.doneRev+1 < rev {
		s.turn.Wait()
	}
	s.turnMu.Unlock()
}

func (s *Store) endTurn(rev uint64) {
	s.turnMu.Lock()
	if rev > s.doneRev {
		s.doneRev = rev
	}
	s.turnMu.Unlock()
	s.turn.Broadcast()
}

func (s *Store) publish(changes []Change) {
	if len(changes) == 0 {
		return
	}
	s.subMu.RLock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, c := range changes {
		for _, fn := range subs {
			fn(c)
		}
	}
}

// txn collects the changes of a single mutation.
type txn struct {
	s       *Store
	now     time.Time
	changes []Change
	touched bool
}

func (tx *txn) record(c Change) {
	c.At = tx.now
	tx.changes = append(tx.changes, c)
}

func (tx *txn) goalChanged(g *domain.Goal) {
	clone := g.Clone()
	tx.record(Change{Entity: EntityGoal, Op: OpUpsert, ID: g.ID, Goal: &clone})
}

func (tx *txn) taskChanged(t *domain.Task) {
	clone := t.Clone()
	tx.record(Change{Entity: EntityTask, Op: OpUpsert, ID: t.ID, Task: &clone})
}

// event prepends a timeline event and records it as a change.
func (tx *txn) event(eventType domain.EventType, goalID, taskID, details string) domain.TimelineEvent {
	e := domain.TimelineEvent{
		ID:        tx.s.newID(),
		Timestamp: tx.now,
		EventType: eventType,
		GoalID:    goalID,
		TaskID:    taskID,
		Details:   details,
	}
	tx.s.events.Prepend(e)
	ev := e
	tx.record(Change{Entity: EntityTimeline, Op: OpAppend, ID: e.ID, Event: &ev})
	return e
}
