package domain

import (
	"encoding/json"
	"time"
)

// GoalLevel is the planning horizon a goal belongs to.
type GoalLevel string

const (
	LevelYearly        GoalLevel = "yearly"
	LevelQuarterly     GoalLevel = "quarterly"
	LevelMonthly       GoalLevel = "monthly"
	LevelWeekly        GoalLevel = "weekly"
	LevelUncategorized GoalLevel = "uncategorized"
)

// Valid reports whether l is one of the known levels.
func (l GoalLevel) Valid() bool {
	switch l {
	case LevelYearly, LevelQuarterly, LevelMonthly, LevelWeekly, LevelUncategorized:
		return true
	}
	return false
}

// GoalStatus moves forward only: not_started -> in_progress -> completed.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

// Goal represents a user-defined objective.
type Goal struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	Level              GoalLevel           `json:"level"`
	Metadata           GoalMetadata        `json:"-"`
	Status             GoalStatus          `json:"status"`
	TimeSlotID         string              `json:"timeSlotId,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	StartedAt          *time.Time          `json:"startedAt,omitempty"`
	CompletedAt        *time.Time          `json:"completedAt,omitempty"`
	LastActivityAt     *time.Time          `json:"lastActivityAt,omitempty"`
	CompletionSnapshot *CompletionSnapshot `json:"completionSnapshot,omitempty"`
	IsArchived         bool                `json:"isArchived"`
}

// CompletionSnapshot is captured when a goal transitions to completed.
type CompletionSnapshot struct {
	TotalTasks     int            `json:"totalTasks"`
	CompletedTasks int            `json:"completedTasks"`
	DaysToComplete int            `json:"daysToComplete"`
	ActiveDays     int            `json:"activeDays"`
	MinutesSpent   int            `json:"minutesSpent"`
	Tasks          []SnapshotTask `json:"tasks"`
}

// SnapshotTask is the per-task line of a completion snapshot.
type SnapshotTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (g *Goal) IsCompleted() bool {
	return g != nil && g.Status == GoalCompleted
}

// Clone returns a deep copy so callers never share pointers with the store.
func (g Goal) Clone() Goal {
	out := g
	out.StartedAt = cloneTime(g.StartedAt)
	out.CompletedAt = cloneTime(g.CompletedAt)
	out.LastActivityAt = cloneTime(g.LastActivityAt)
	if g.CompletionSnapshot != nil {
		snap := *g.CompletionSnapshot
		snap.Tasks = make([]SnapshotTask, len(g.CompletionSnapshot.Tasks))
		for i, t := range g.CompletionSnapshot.Tasks {
			t.CompletedAt = cloneTime(t.CompletedAt)
			snap.Tasks[i] = t
		}
		out.CompletionSnapshot = &snap
	}
	return out
}

type goalAlias Goal

type goalJSON struct {
	goalAlias
	Metadata json.RawMessage `json:"metadata"`
}

func (g Goal) MarshalJSON() ([]byte, error) {
	meta, err := MarshalMetadata(g.Metadata)
	if err != nil {
		return nil, err
	}
	return json.Marshal(goalJSON{goalAlias: goalAlias(g), Metadata: meta})
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	var raw goalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = Goal(raw.goalAlias)
	meta, err := UnmarshalMetadata(raw.Metadata)
	if err != nil {
		return err
	}
	if meta == nil {
		meta = DefaultMetadata(g.Level, g.CreatedAt)
	}
	g.Metadata = meta
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
