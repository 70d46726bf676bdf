package domain

import "time"

// Task represents an actionable item, optionally owned by one goal.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	GoalID           string     `json:"goalId,omitempty"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	IsCompleted      bool       `json:"isCompleted"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	IsArchived       bool       `json:"isArchived"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	out := t
	out.CompletedAt = cloneTime(t.CompletedAt)
	return out
}

// BelongsTo reports whether the task is owned by goalID.
func (t *Task) BelongsTo(goalID string) bool {
	return t != nil && goalID != "" && t.GoalID == goalID
}
