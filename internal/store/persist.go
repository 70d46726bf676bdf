package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/domain"
)

// SchemaVersion tags the persisted snapshot layout.
const SchemaVersion = 1

// State is the persisted snapshot: every collection plus the timeline,
// newest event first.
type State struct {
	Version          int                      `json:"version"`
	Goals            []domain.Goal            `json:"goals"`
	Tasks            []domain.Task            `json:"tasks"`
	TimeSlots        []domain.TimeSlot        `json:"timeSlots"`
	ProductivityLogs []domain.ProductivityLog `json:"productivityLogs"`
	SleepWakeLogs    []domain.SleepWakeLog    `json:"sleepWakeLogs"`
	TimelineEvents   []domain.TimelineEvent   `json:"timelineEvents"`
	LastInteraction  *time.Time               `json:"lastInteraction,omitempty"`
}

// DecodeState parses a persisted snapshot.
func DecodeState(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, domain.WrapError(domain.ErrCodeInvalid, "decode snapshot", err)
	}
	if st.Version > SchemaVersion {
		return State{}, domain.NewError(domain.ErrCodeConflict, fmt.Sprintf("snapshot schema version %d is newer than %d", st.Version, SchemaVersion))
	}
	return st, nil
}

func encodeState(st State) ([]byte, error) {
	return json.Marshal(st)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{
		Version:          SchemaVersion,
		Goals:            make([]domain.Goal, len(s.goals)),
		Tasks:            make([]domain.Task, len(s.tasks)),
		TimeSlots:        make([]domain.TimeSlot, len(s.slots)),
		ProductivityLogs: make([]domain.ProductivityLog, len(s.productivity)),
		SleepWakeLogs:    make([]domain.SleepWakeLog, len(s.sleep)),
		TimelineEvents:   s.events.All(),
	}
	for i := range s.goals {
		st.Goals[i] = s.goals[i].Clone()
	}
	for i := range s.tasks {
		st.Tasks[i] = s.tasks[i].Clone()
	}
	for i := range s.slots {
		st.TimeSlots[i] = s.slots[i].Clone()
	}
	for i := range s.productivity {
		st.ProductivityLogs[i] = s.productivity[i].Clone()
	}
	for i := range s.sleep {
		st.SleepWakeLogs[i] = s.sleep[i].Clone()
	}
	if s.lastInteraction != nil {
		st.LastInteraction = domain.TimePtr(*s.lastInteraction)
	}
	return st
}

// Load rehydrates the store from the snapshot repository. A missing
// snapshot leaves every collection empty.
func (s *Store) Load(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	data, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		s.logger.Info("no persisted snapshot, starting empty")
		s.Restore(State{})
		return nil
	}
	st, err := DecodeState(data)
	if err != nil {
		return err
	}
	s.Restore(st)
	s.logger.Info("snapshot loaded",
		zap.Int("goals", len(st.Goals)),
		zap.Int("tasks", len(st.Tasks)),
		zap.Int("time_slots", len(st.TimeSlots)),
		zap.Int("timeline_events", len(st.TimelineEvents)),
	)
	return nil
}

// Restore replaces the in-memory state without persisting or notifying.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals = make([]domain.Goal, 0, len(st.Goals))
	for _, g := range st.Goals {
		s.goals = append(s.goals, g.Clone())
	}
	s.tasks = make([]domain.Task, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		s.tasks = append(s.tasks, t.Clone())
	}
	s.slots = make([]domain.TimeSlot, 0, len(st.TimeSlots))
	for _, sl := range st.TimeSlots {
		s.slots = append(s.slots, sl.Clone())
	}
	s.productivity = make([]domain.ProductivityLog, 0, len(st.ProductivityLogs))
	for _, l := range st.ProductivityLogs {
		s.productivity = append(s.productivity, l.Clone())
	}
	s.sleep = make([]domain.SleepWakeLog, 0, len(st.SleepWakeLogs))
	for _, l := range st.SleepWakeLogs {
		s.sleep = append(s.sleep, l.Clone())
	}
	s.events.Restore(st.TimelineEvents)
	s.lastInteraction = nil
	if st.LastInteraction != nil {
		s.lastInteraction = domain.TimePtr(*st.LastInteraction)
	}
}

// persist writes payload unless a newer revision was already saved.
func (s *Store) persist(rev uint64, payload []byte) {
	if s.snapshots == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if rev <= s.savedRev {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.settings.PersistTimeout)
	defer cancel()
	if err := s.snapshots.Save(ctx, payload); err != nil {
		s.logger.Warn("failed to persist snapshot", zap.Uint64("revision", rev), zap.Error(err))
		return
	}
	s.savedRev = rev
}
