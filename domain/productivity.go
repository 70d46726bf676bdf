package domain

import "time"

// DateLayout is the calendar-date key format used by per-day logs.
const DateLayout = "2006-01-02"

// DateKey formats t as a YYYY-MM-DD key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ProductivityLog accumulates completed-task minutes for one calendar date.
type ProductivityLog struct {
	Date              string           `json:"date"`
	ProductiveMinutes int              `json:"productiveMinutes"`
	CompletedTasks    []TaskCompletion `json:"completedTasks"`
}

// TaskCompletion records the minutes one task contributed on a date.
type TaskCompletion struct {
	TaskID      string    `json:"taskId"`
	GoalID      string    `json:"goalId,omitempty"`
	Date        string    `json:"date"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completedAt"`
}

func (l ProductivityLog) Clone() ProductivityLog {
	out := l
	out.CompletedTasks = append([]TaskCompletion{}, l.CompletedTasks...)
	return out
}
