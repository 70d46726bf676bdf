package domain

import "time"

// Mood rates how the user felt on waking, 1 (terrible) to 5 (great).
type Mood int

func (m Mood) Valid() bool {
	return m >= 1 && m <= 5
}

// SleepWakeLog is the per-date sleep and wake record. Wake and sleep are set
// independently, so either side may be empty.
type SleepWakeLog struct {
	ID                    string      `json:"id"`
	Date                  string      `json:"date"`
	WakeUpTime            *time.Time  `json:"wakeUpTime,omitempty"`
	WakeUpConfirmedAt     *time.Time  `json:"wakeUpConfirmedAt,omitempty"`
	WakeUpAdjustedMinutes int         `json:"wakeUpAdjustedMinutes,omitempty"`
	WakeUpMood            *Mood       `json:"wakeUpMood,omitempty"`
	SleepTime             *time.Time  `json:"sleepTime,omitempty"`
	SleepAttempts         []time.Time `json:"sleepAttempts"`
	SleepDurationMinutes  *int        `json:"sleepDurationMinutes,omitempty"`
	Notes                 string      `json:"notes,omitempty"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

func (l SleepWakeLog) Clone() SleepWakeLog {
	out := l
	out.WakeUpTime = cloneTime(l.WakeUpTime)
	out.WakeUpConfirmedAt = cloneTime(l.WakeUpConfirmedAt)
	out.SleepTime = cloneTime(l.SleepTime)
	out.SleepAttempts = append([]time.Time{}, l.SleepAttempts...)
	if l.WakeUpMood != nil {
		m := *l.WakeUpMood
		out.WakeUpMood = &m
	}
	if l.SleepDurationMinutes != nil {
		d := *l.SleepDurationMinutes
		out.SleepDurationMinutes = &d
	}
	return out
}

// LastSleepAttempt returns the latest "going to sleep" timestamp, if any.
func (l *SleepWakeLog) LastSleepAttempt() (time.Time, bool) {
	if l == nil || len(l.SleepAttempts) == 0 {
		return time.Time{}, false
	}
	latest := l.SleepAttempts[0]
	for _, ts := range l.SleepAttempts[1:] {
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest, true
}
