package store

import (
	"time"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/metrics"
)

const maxSleepDuration = 24 * time.Hour

func (s *Store) sleepIndex(date string) int {
	for i := range s.sleep {
		if s.sleep[i].Date == date {
			return i
		}
	}
	return -1
}

// sleepLogLocked returns the log for date, creating it when absent.
func (s *Store) sleepLogLocked(date string, now time.Time) *domain.SleepWakeLog {
	if i := s.sleepIndex(date); i >= 0 {
		return &s.sleep[i]
	}
	s.sleep = append(s.sleep, domain.SleepWakeLog{
		ID:            s.newID(),
		Date:          date,
		SleepAttempts: []time.Time{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	return &s.sleep[len(s.sleep)-1]
}

// RecordWakeUp upserts today's log with a wake time of now minus
// adjustedMinutesAgo. A mood outside 1-5 is not recorded. When a sleep
// attempt from today or yesterday precedes the wake time, the duration
// since the latest one is stored.
func (s *Store) RecordWakeUp(adjustedMinutesAgo int, mood domain.Mood) domain.SleepWakeLog {
	var out domain.SleepWakeLog
	s.mutate("record_wake_up", func(tx *txn) {
		if adjustedMinutesAgo < 0 {
			adjustedMinutesAgo = 0
		}
		wake := tx.now.Add(-time.Duration(adjustedMinutesAgo) * time.Minute)
		date := domain.DateKey(tx.now)
		log := s.sleepLogLocked(date, tx.now)
		log.WakeUpTime = domain.TimePtr(wake)
		log.WakeUpConfirmedAt = domain.TimePtr(tx.now)
		log.WakeUpAdjustedMinutes = adjustedMinutesAgo
		if mood.Valid() {
			m := mood
			log.WakeUpMood = &m
		}
		if asleep, ok := s.lastSleepBeforeLocked(wake, date, domain.DateKey(tx.now.AddDate(0, 0, -1))); ok {
			minutes := int(wake.Sub(asleep).Minutes())
			log.SleepDurationMinutes = &minutes
		}
		log.UpdatedAt = tx.now

		tx.record(Change{Entity: EntitySleep, Op: OpUpsert, ID: date})
		tx.event(domain.EventWakeRecorded, "", "", wake.Format("15:04"))
		out = log.Clone()
	})
	return out
}

// lastSleepBeforeLocked finds the latest sleep attempt before wake within
// the given dates and at most a day earlier.
func (s *Store) lastSleepBeforeLocked(wake time.Time, dates ...string) (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)
	for _, date := range dates {
		i := s.sleepIndex(date)
		if i < 0 {
			continue
		}
		for _, ts := range s.sleep[i].SleepAttempts {
			if !ts.Before(wake) || wake.Sub(ts) > maxSleepDuration {
				continue
			}
			if !found || ts.After(latest) {
				latest, found = ts, true
			}
		}
	}
	return latest, found
}

// RecordSleep appends a "going to sleep" attempt to today's log. Repeated
// calls keep every attempt; the latest becomes the sleep time.
func (s *Store) RecordSleep() domain.SleepWakeLog {
	var out domain.SleepWakeLog
	s.mutate("record_sleep", func(tx *txn) {
		date := domain.DateKey(tx.now)
		log := s.sleepLogLocked(date, tx.now)
		log.SleepAttempts = append(log.SleepAttempts, tx.now)
		log.SleepTime = domain.TimePtr(tx.now)
		log.UpdatedAt = tx.now

		tx.record(Change{Entity: EntitySleep, Op: OpUpsert, ID: date})
		tx.event(domain.EventSleepRecorded, "", "", tx.now.Format("15:04"))
		out = log.Clone()
	})
	return out
}

// TodaySleepLog returns the log for the current date.
func (s *Store) TodaySleepLog() (domain.SleepWakeLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.sleepIndex(domain.DateKey(s.clock()))
	if i < 0 {
		return domain.SleepWakeLog{}, false
	}
	return s.sleep[i].Clone(), true
}

// SleepLogs returns logs dated within the last days days, newest first.
// A non-positive days returns all of them.
func (s *Store) SleepLogs(days int) []domain.SleepWakeLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from := ""
	if days > 0 {
		from = domain.DateKey(s.clock().AddDate(0, 0, -(days - 1)))
	}
	out := []domain.SleepWakeLog{}
	for _, l := range metrics.SortSleepLogs(s.sleep) {
		if l.Date >= from {
			out = append(out, l.Clone())
		}
	}
	return out
}

// SleepStats summarizes the most recent logs.
func (s *Store) SleepStats() metrics.Sleep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return metrics.SleepStats(s.sleep, s.clock(), metrics.SleepOptions{
		TargetMinutes: s.settings.SleepTargetMinutes,
		Window:        s.settings.SleepWindow,
		Location:      s.settings.Location,
	})
}
