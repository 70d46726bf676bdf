package repository

import (
	"context"

	"github.com/fastygo/goaltracker/domain"
)

type NodeFilter struct {
	UserID          string
	Type            domain.NodeType
	IncludeArchived bool
	Limit           int
	Offset          int
}

// NodeRepository mirrors goals and tasks as generic nodes.
type NodeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Node, error)
	List(ctx context.Context, filter NodeFilter) ([]domain.Node, error)
	Save(ctx context.Context, node *domain.Node) error
	Delete(ctx context.Context, id string) error
}
