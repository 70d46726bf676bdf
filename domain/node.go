package domain

import (
	"encoding/json"
	"time"
)

// NodeType distinguishes the records stored in the mirror's nodes table.
type NodeType string

const (
	NodeGoal NodeType = "goal"
	NodeTask NodeType = "task"
)

// Node is the mirror representation of a goal or task: common columns plus
// type-specific properties and metadata as JSON.
type Node struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id,omitempty"`
	Type        NodeType        `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Properties  json.RawMessage `json:"properties"`
	Metadata    json.RawMessage `json:"metadata"`
	IsArchived  bool            `json:"is_archived"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type goalProperties struct {
	Level              GoalLevel           `json:"level"`
	Status             GoalStatus          `json:"status"`
	TimeSlotID         string              `json:"timeSlotId,omitempty"`
	StartedAt          *time.Time          `json:"startedAt,omitempty"`
	CompletedAt        *time.Time          `json:"completedAt,omitempty"`
	LastActivityAt     *time.Time          `json:"lastActivityAt,omitempty"`
	CompletionSnapshot *CompletionSnapshot `json:"completionSnapshot,omitempty"`
}

type taskProperties struct {
	GoalID           string     `json:"goalId,omitempty"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	IsCompleted      bool       `json:"isCompleted"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// GoalNode converts a goal into its mirror node.
func GoalNode(g Goal, userID string) (Node, error) {
	props, err := json.Marshal(goalProperties{
		Level:              g.Level,
		Status:             g.Status,
		TimeSlotID:         g.TimeSlotID,
		StartedAt:          g.StartedAt,
		CompletedAt:        g.CompletedAt,
		LastActivityAt:     g.LastActivityAt,
		CompletionSnapshot: g.CompletionSnapshot,
	})
	if err != nil {
		return Node{}, err
	}
	meta, err := MarshalMetadata(g.Metadata)
	if err != nil {
		return Node{}, err
	}
	return Node{
		ID:          g.ID,
		UserID:      userID,
		Type:        NodeGoal,
		Title:       g.Title,
		Description: g.Description,
		Properties:  props,
		Metadata:    meta,
		IsArchived:  g.IsArchived,
		CreatedAt:   g.CreatedAt,
	}, nil
}

// TaskNode converts a task into its mirror node.
func TaskNode(t Task, userID string) (Node, error) {
	props, err := json.Marshal(taskProperties{
		GoalID:           t.GoalID,
		EstimatedMinutes: t.EstimatedMinutes,
		IsCompleted:      t.IsCompleted,
		CompletedAt:      t.CompletedAt,
	})
	if err != nil {
		return Node{}, err
	}
	return Node{
		ID:          t.ID,
		UserID:      userID,
		Type:        NodeTask,
		Title:       t.Title,
		Description: t.Description,
		Properties:  props,
		Metadata:    json.RawMessage(`{}`),
		IsArchived:  t.IsArchived,
		CreatedAt:   t.CreatedAt,
	}, nil
}

// Goal decodes a goal node. Missing level defaults to uncategorized.
func (n Node) Goal() (Goal, error) {
	if n.Type != NodeGoal {
		return Goal{}, NewError(ErrCodeInvalid, "node is not a goal")
	}
	var props goalProperties
	if len(n.Properties) > 0 {
		if err := json.Unmarshal(n.Properties, &props); err != nil {
			return Goal{}, WrapError(ErrCodeInvalid, "decode goal properties", err)
		}
	}
	if props.Level == "" {
		props.Level = LevelUncategorized
	}
	if props.Status == "" {
		props.Status = GoalNotStarted
	}
	meta, err := UnmarshalMetadata(n.Metadata)
	if err != nil {
		return Goal{}, WrapError(ErrCodeInvalid, "decode goal metadata", err)
	}
	if meta == nil {
		meta = DefaultMetadata(props.Level, n.CreatedAt)
	}
	return Goal{
		ID:                 n.ID,
		Title:              n.Title,
		Description:        n.Description,
		Level:              props.Level,
		Metadata:           meta,
		Status:             props.Status,
		TimeSlotID:         props.TimeSlotID,
		CreatedAt:          n.CreatedAt,
		StartedAt:          props.StartedAt,
		CompletedAt:        props.CompletedAt,
		LastActivityAt:     props.LastActivityAt,
		CompletionSnapshot: props.CompletionSnapshot,
		IsArchived:         n.IsArchived,
	}, nil
}

// Task decodes a task node.
func (n Node) Task() (Task, error) {
	if n.Type != NodeTask {
		return Task{}, NewError(ErrCodeInvalid, "node is not a task")
	}
	var props taskProperties
	if len(n.Properties) > 0 {
		if err := json.Unmarshal(n.Properties, &props); err != nil {
			return Task{}, WrapError(ErrCodeInvalid, "decode task properties", err)
		}
	}
	return Task{
		ID:               n.ID,
		Title:            n.Title,
		Description:      n.Description,
		GoalID:           props.GoalID,
		EstimatedMinutes: props.EstimatedMinutes,
		IsCompleted:      props.IsCompleted,
		CompletedAt:      props.CompletedAt,
		CreatedAt:        n.CreatedAt,
		IsArchived:       n.IsArchived,
	}, nil
}
