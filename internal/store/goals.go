package store

import (
	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/metrics"
)

func (s *Store) goalIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.goals {
		if s.goals[i].ID == id {
			return i
		}
	}
	return -1
}

// AddGoal creates a not-started goal. Missing metadata is derived from the
// level and the current date. A time slot that does not exist is ignored.
func (s *Store) AddGoal(in domain.CreateGoalInput) domain.Goal {
	var created domain.Goal
	s.mutate("add_goal", func(tx *txn) {
		level := in.Level
		if level == "" {
			level = domain.LevelUncategorized
		}
		meta := in.Metadata
		if meta == nil {
			meta = domain.DefaultMetadata(level, tx.now)
		}
		g := domain.Goal{
			ID:          s.newID(),
			Title:       in.Title,
			Description: in.Description,
			Level:       level,
			Metadata:    meta,
			Status:      domain.GoalNotStarted,
			CreatedAt:   tx.now,
		}
		s.goals = append(s.goals, g)
		tx.event(domain.EventGoalCreated, g.ID, "", g.Title)

		if in.TimeSlotID != "" {
			s.linkLocked(tx, in.TimeSlotID, g.ID)
		}
		idx := s.goalIndex(g.ID)
		tx.goalChanged(&s.goals[idx])
		created = s.goals[idx].Clone()
	})
	return created
}

// UpdateGoal shallow-merges patch into the goal. Status edits are taken as
// given; moving to completed captures a completion snapshot like CompleteGoal.
func (s *Store) UpdateGoal(id string, patch domain.GoalPatch) (domain.Goal, bool) {
	var (
		updated domain.Goal
		found   bool
	)
	s.mutate("update_goal", func(tx *txn) {
		idx := s.goalIndex(id)
		if idx < 0 {
			return
		}
		found = true
		g := &s.goals[idx]
		if patch.Title != nil {
			g.Title = *patch.Title
		}
		if patch.Description != nil {
			g.Description = *patch.Description
		}
		if patch.Level != nil && *patch.Level != g.Level {
			g.Level = *patch.Level
			if patch.Metadata == nil {
				g.Metadata = domain.DefaultMetadata(g.Level, tx.now)
			}
		}
		if patch.Metadata != nil {
			// Metadata decides the level so the two never disagree.
			g.Metadata = patch.Metadata
			g.Level = patch.Metadata.Level()
		}
		if patch.IsArchived != nil {
			g.IsArchived = *patch.IsArchived
		}
		g.LastActivityAt = domain.TimePtr(tx.now)
		tx.event(domain.EventGoalUpdated, g.ID, "", g.Title)

		if patch.Status != nil && *patch.Status != g.Status {
			switch *patch.Status {
			case domain.GoalInProgress:
				g.Status = domain.GoalInProgress
				if g.StartedAt == nil {
					g.StartedAt = domain.TimePtr(tx.now)
				}
			case domain.GoalCompleted:
				s.completeLocked(tx, idx)
			default:
				g.Status = *patch.Status
			}
		}
		tx.goalChanged(&s.goals[idx])
		updated = s.goals[idx].Clone()
	})
	return updated, found
}

// StartGoal moves a not-started goal to in progress. Any other status is left alone.
func (s *Store) StartGoal(id string) (domain.Goal, bool) {
	var (
		out   domain.Goal
		found bool
	)
	s.mutate("start_goal", func(tx *txn) {
		idx := s.goalIndex(id)
		if idx < 0 {
			return
		}
		found = true
		g := &s.goals[idx]
		if g.Status == domain.GoalNotStarted {
			s.startLocked(tx, g)
			tx.goalChanged(g)
		}
		out = g.Clone()
	})
	return out, found
}

func (s *Store) startLocked(tx *txn, g *domain.Goal) {
	g.Status = domain.GoalInProgress
	g.StartedAt = domain.TimePtr(tx.now)
	g.LastActivityAt = domain.TimePtr(tx.now)
	tx.event(domain.EventGoalStarted, g.ID, "", g.Title)
}

// CompleteGoal marks the goal completed and captures a completion snapshot
// of its current tasks. Calling it again recomputes and overwrites the
// snapshot; CompletedAt keeps the first completion time.
func (s *Store) CompleteGoal(id string) (domain.Goal, bool) {
	var (
		out   domain.Goal
		found bool
	)
	s.mutate("complete_goal", func(tx *txn) {
		idx := s.goalIndex(id)
		if idx < 0 {
			return
		}
		found = true
		s.completeLocked(tx, idx)
		tx.goalChanged(&s.goals[idx])
		out = s.goals[idx].Clone()
	})
	return out, found
}

func (s *Store) completeLocked(tx *txn, idx int) {
	g := &s.goals[idx]
	activeDays := s.events.ActiveDays(g.ID, s.settings.Location)
	snap := metrics.CompletionSnapshot(*g, s.tasksForGoalLocked(g.ID), activeDays, tx.now)

	g.Status = domain.GoalCompleted
	g.CompletionSnapshot = &snap
	if g.CompletedAt == nil {
		g.CompletedAt = domain.TimePtr(tx.now)
	}
	g.LastActivityAt = domain.TimePtr(tx.now)
	tx.event(domain.EventGoalCompleted, g.ID, "", g.Title)
}

// ArchiveGoal soft-deletes the goal; its tasks and slot membership stay.
func (s *Store) ArchiveGoal(id string) (domain.Goal, bool) {
	var (
		out   domain.Goal
		found bool
	)
	s.mutate("archive_goal", func(tx *txn) {
		idx := s.goalIndex(id)
		if idx < 0 {
			return
		}
		found = true
		g := &s.goals[idx]
		if !g.IsArchived {
			g.IsArchived = true
			tx.event(domain.EventGoalArchived, g.ID, "", g.Title)
			tx.goalChanged(g)
		}
		out = g.Clone()
	})
	return out, found
}

// DeleteGoal removes the goal, every task it owns and its slot membership.
// Productivity logs keep the minutes already attributed to it.
func (s *Store) DeleteGoal(id string) bool {
	var found bool
	s.mutate("delete_goal", func(tx *txn) {
		idx := s.goalIndex(id)
		if idx < 0 {
			return
		}
		found = true
		g := s.goals[idx]

		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if t.BelongsTo(g.ID) {
				tx.record(Change{Entity: EntityTask, Op: OpDelete, ID: t.ID})
				continue
			}
			kept = append(kept, t)
		}
		s.tasks = kept

		for i := range s.slots {
			if s.removeSlotMemberLocked(&s.slots[i], g.ID) {
				tx.record(Change{Entity: EntityTimeSlot, Op: OpUpsert, ID: s.slots[i].ID})
			}
		}

		s.goals = append(s.goals[:idx], s.goals[idx+1:]...)
		tx.record(Change{Entity: EntityGoal, Op: OpDelete, ID: g.ID})
		tx.event(domain.EventGoalDeleted, g.ID, "", g.Title)
	})
	return found
}

// GetGoal returns a copy of the goal.
func (s *Store) GetGoal(id string) (domain.Goal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.goalIndex(id)
	if idx < 0 {
		return domain.Goal{}, false
	}
	return s.goals[idx].Clone(), true
}

// Goals returns every goal in creation order, archived ones included.
func (s *Store) Goals() []domain.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Goal, len(s.goals))
	for i := range s.goals {
		out[i] = s.goals[i].Clone()
	}
	return out
}

// GoalProgress is the completed share of the goal's estimated minutes.
// Unknown goals and goals without tasks report 0.
func (s *Store) GoalProgress(goalID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return metrics.GoalProgress(s.tasksForGoalLocked(goalID))
}

// GoalProgressByTaskCount weighs every task of the goal equally, ignoring
// estimates, so a goal of unestimated tasks still shows movement.
func (s *Store) GoalProgressByTaskCount(goalID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := s.tasksForGoalLocked(goalID)
	if len(tasks) == 0 {
		return 0
	}
	weight := 100 / float64(len(tasks))
	parts := make([]metrics.Contribution, 0, len(tasks))
	for _, t := range tasks {
		var done float64
		if t.IsCompleted {
			done = 1
		}
		parts = append(parts, metrics.Contribution{Fraction: done, Weight: weight})
	}
	return metrics.WeightedProgress(parts)
}

// GoalTimelineStats reports elapsed days and task counts for the goal.
func (s *Store) GoalTimelineStats(goalID string) (metrics.GoalTimeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.goalIndex(goalID)
	if idx < 0 {
		return metrics.GoalTimeline{}, false
	}
	return metrics.GoalTimelineStats(s.goals[idx], s.tasksForGoalLocked(goalID), s.clock()), true
}

// AddNote records a free-text note on the goal's timeline.
func (s *Store) AddNote(goalID, text string) (domain.TimelineEvent, bool) {
	var (
		out   domain.TimelineEvent
		found bool
	)
	s.mutate("add_note", func(tx *txn) {
		idx := s.goalIndex(goalID)
		if idx < 0 {
			return
		}
		found = true
		g := &s.goals[idx]
		g.LastActivityAt = domain.TimePtr(tx.now)
		out = tx.event(domain.EventNoteAdded, g.ID, "", text)
		tx.goalChanged(g)
	})
	return out, found
}
