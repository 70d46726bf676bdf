package repository

import (
	"context"

	"github.com/fastygo/goaltracker/domain"
)

type TimelineFilter struct {
	UserID string
	GoalID string
	Limit  int
	Offset int
}

// TimelineRepository is the append-only mirror of timeline events.
type TimelineRepository interface {
	Append(ctx context.Context, userID string, event domain.TimelineEvent) error
	List(ctx context.Context, filter TimelineFilter) ([]domain.TimelineEvent, error)
}
