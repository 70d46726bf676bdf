package usecase

import (
	"context"

	"github.com/fastygo/goaltracker/domain"
)

// Mirror operation names shared by the sync use case and the buffer.
const (
	OperationUpsert = "upsert"
	OperationDelete = "delete"
	OperationAppend = "append"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferNode(ctx context.Context, operation string, node *domain.Node) error
	BufferEvent(ctx context.Context, userID string, event *domain.TimelineEvent) error
	// Discard drops pending node operations superseded by a direct write.
	Discard(ctx context.Context, nodeID string) error
}
