package store

import (
	"time"

	"github.com/fastygo/goaltracker/domain"
)

// Entity names the collection a change touched.
type Entity string

const (
	EntityGoal         Entity = "goal"
	EntityTask         Entity = "task"
	EntityTimeSlot     Entity = "time_slot"
	EntityProductivity Entity = "productivity"
	EntitySleep        Entity = "sleep"
	EntityTimeline     Entity = "timeline"
	EntityStore        Entity = "store"
)

type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
	OpAppend Operation = "append"
	OpReset  Operation = "reset"
)

// Change describes one state transition. Goal, Task and Event carry copies
// of the affected record when the entity matches; deletes only carry ID.
// Time slots, productivity and sleep logs are identified by ID (the slot id
// or the date key).
type Change struct {
	Entity Entity
	Op     Operation
	ID     string
	Goal   *domain.Goal
	Task   *domain.Task
	Event  *domain.TimelineEvent
	At     time.Time
}
