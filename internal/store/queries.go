package store

import (
	"sort"
	"time"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/metrics"
)

// TodayProductivity aggregates today's and the trailing week's minutes.
func (s *Store) TodayProductivity() metrics.Productivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make(map[string]string, len(s.goals))
	for _, g := range s.goals {
		titles[g.ID] = g.Title
	}
	return metrics.TodayProductivity(s.productivity, s.clock(), s.settings.WakingHoursPerDay, titles)
}

// ProductivityLogs returns logs dated within the last days days, newest
// first. A non-positive days returns all of them.
func (s *Store) ProductivityLogs(days int) []domain.ProductivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from := ""
	if days > 0 {
		from = domain.DateKey(s.clock().AddDate(0, 0, -(days - 1)))
	}
	out := []domain.ProductivityLog{}
	for _, l := range s.productivity {
		if l.Date >= from {
			out = append(out, l.Clone())
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Date > out[b].Date
	})
	return out
}

// LogTimelineEvent appends a caller-defined event.
func (s *Store) LogTimelineEvent(eventType domain.EventType, goalID, taskID, details string) domain.TimelineEvent {
	var out domain.TimelineEvent
	s.mutate("log_timeline_event", func(tx *txn) {
		out = tx.event(eventType, goalID, taskID, details)
	})
	return out
}

// TimelineEvents returns up to limit events, newest first. A non-positive
// limit uses the default page size.
func (s *Store) TimelineEvents(limit int) []domain.TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.Recent(limit)
}

// TimelineEventsForGoal returns the retained events for goalID, newest first.
func (s *Store) TimelineEventsForGoal(goalID string) []domain.TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.ForGoal(goalID)
}

// TrackInteraction bumps the last-interaction timestamp.
func (s *Store) TrackInteraction() {
	s.mutate("track_interaction", func(tx *txn) {
		tx.touched = true
	})
}

// LastInteraction reports when the store was last mutated or touched.
func (s *Store) LastInteraction() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastInteraction == nil {
		return time.Time{}, false
	}
	return *s.lastInteraction, true
}

// Reset drops every collection and the timeline.
func (s *Store) Reset() {
	s.mutate("reset", func(tx *txn) {
		s.goals = nil
		s.tasks = nil
		s.slots = nil
		s.productivity = nil
		s.sleep = nil
		s.events.Reset()
		tx.record(Change{Entity: EntityStore, Op: OpReset})
	})
}
