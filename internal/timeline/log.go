// Package timeline keeps the bounded activity history shown in feeds.
package timeline

import (
	"time"

	"github.com/fastygo/goaltracker/domain"
)

const (
	// DefaultCapacity is the number of events retained before the oldest is evicted.
	DefaultCapacity = 500
	// DefaultLimit is used by Recent when no positive limit is given.
	DefaultLimit = 50
)

// Log is a fixed-capacity ring of timeline events read most-recent-first.
// It is not safe for concurrent use; the store serializes access.
type Log struct {
	buf   []domain.TimelineEvent
	head  int
	count int
}

// New creates a log holding at most capacity events.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{buf: make([]domain.TimelineEvent, capacity)}
}

// Prepend records e as the newest event, evicting the oldest once full.
func (l *Log) Prepend(e domain.TimelineEvent) {
	capacity := len(l.buf)
	if l.count < capacity {
		l.buf[(l.head+l.count)%capacity] = e
		l.count++
		return
	}
	l.buf[l.head] = e
	l.head = (l.head + 1) % capacity
}

func (l *Log) Len() int      { return l.count }
func (l *Log) Capacity() int { return len(l.buf) }

// at returns the i-th most recent event.
func (l *Log) at(i int) domain.TimelineEvent {
	return l.buf[(l.head+l.count-1-i)%len(l.buf)]
}

// Recent returns up to limit events, newest first.
func (l *Log) Recent(limit int) []domain.TimelineEvent {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > l.count {
		limit = l.count
	}
	out := make([]domain.TimelineEvent, limit)
	for i := range out {
		out[i] = l.at(i)
	}
	return out
}

// All returns every retained event, newest first.
func (l *Log) All() []domain.TimelineEvent {
	out := make([]domain.TimelineEvent, l.count)
	for i := range out {
		out[i] = l.at(i)
	}
	return out
}

// ForGoal filters the retained events referencing goalID, newest first.
func (l *Log) ForGoal(goalID string) []domain.TimelineEvent {
	out := []domain.TimelineEvent{}
	if goalID == "" {
		return out
	}
	for i := 0; i < l.count; i++ {
		if e := l.at(i); e.GoalID == goalID {
			out = append(out, e)
		}
	}
	return out
}

// ActiveDays counts the distinct calendar dates (in loc) with events for goalID.
func (l *Log) ActiveDays(goalID string, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[string]struct{})
	for _, e := range l.ForGoal(goalID) {
		days[domain.DateKey(e.Timestamp.In(loc))] = struct{}{}
	}
	return len(days)
}

// Restore replaces the contents with events given newest first, keeping at
// most Capacity of them.
func (l *Log) Restore(events []domain.TimelineEvent) {
	l.head, l.count = 0, 0
	for i := range l.buf {
		l.buf[i] = domain.TimelineEvent{}
	}
	if len(events) > len(l.buf) {
		events = events[:len(l.buf)]
	}
	for i := len(events) - 1; i >= 0; i-- {
		l.Prepend(events[i])
	}
}

// Reset drops every event.
func (l *Log) Reset() {
	l.Restore(nil)
}
