package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/infrastructure/buffer"
	"github.com/fastygo/goaltracker/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

// BufferNode keys the item by node id so only the latest state of a node waits in the buffer.
func (b *BufferBridge) BufferNode(ctx context.Context, operation string, node *domain.Node) error {
	if b.processor == nil || node == nil || node.ID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(node)
	if err != nil {
		return err
	}
	priority := buffer.PriorityNode
	if operation == buffer.OperationDelete {
		priority = buffer.PriorityDelete
	}
	item := buffer.Item{
		ID:        node.ID,
		UserID:    node.UserID,
		Entity:    buffer.EntityNode,
		Operation: operation,
		Data:      payload,
		Priority:  priority,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferEvent(ctx context.Context, userID string, event *domain.TimelineEvent) error {
	if b.processor == nil || event == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        event.ID,
		UserID:    userID,
		Entity:    buffer.EntityTimeline,
		Operation: buffer.OperationAppend,
		Data:      payload,
		Priority:  buffer.PriorityTimeline,
	}
	return b.processor.BufferOperation(ctx, item)
}

// Discard forgets pending operations for a node the caller wrote directly.
func (b *BufferBridge) Discard(_ context.Context, nodeID string) error {
	if b.processor == nil {
		return nil
	}
	return b.processor.Discard(nodeID)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
