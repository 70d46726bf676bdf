package domain

import "time"

// EventType tags a timeline event.
type EventType string

const (
	EventGoalCreated     EventType = "goal_created"
	EventGoalUpdated     EventType = "goal_updated"
	EventGoalStarted     EventType = "goal_started"
	EventGoalCompleted   EventType = "goal_completed"
	EventGoalArchived    EventType = "goal_archived"
	EventGoalDeleted     EventType = "goal_deleted"
	EventTaskCreated     EventType = "task_created"
	EventTaskUpdated     EventType = "task_updated"
	EventTaskCompleted   EventType = "task_completed"
	EventTaskUncompleted EventType = "task_uncompleted"
	EventTaskArchived    EventType = "task_archived"
	EventTaskDeleted     EventType = "task_deleted"
	EventSlotCreated     EventType = "time_slot_created"
	EventSlotUpdated     EventType = "time_slot_updated"
	EventSlotDeleted     EventType = "time_slot_deleted"
	EventGoalScheduled   EventType = "goal_scheduled"
	EventGoalUnscheduled EventType = "goal_unscheduled"
	EventWakeRecorded    EventType = "wake_recorded"
	EventSleepRecorded   EventType = "sleep_recorded"
	EventNoteAdded       EventType = "note_added"
)

// TimelineEvent is an immutable record of a domain transition.
type TimelineEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType EventType `json:"eventType"`
	GoalID    string    `json:"goalId,omitempty"`
	TaskID    string    `json:"taskId,omitempty"`
	Details   string    `json:"details,omitempty"`
}
