package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityNode     = "node"
	EntityTimeline = "timeline_event"

	OperationUpsert = "upsert"
	OperationDelete = "delete"
	OperationAppend = "append"

	// DefaultBucket holds pending mirror operations.
	DefaultBucket = "sync_buffer"
)

// Priorities order the drain: lower values go first.
const (
	PriorityDelete   = 2
	PriorityNode     = 3
	PriorityTimeline = 4
	defaultPriority  = 3
)

// Item is a mirror operation waiting for the remote store to come back.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = defaultPriority
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
