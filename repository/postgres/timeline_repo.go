package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/repository"
)

type timelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository creates a Postgres-backed TimelineRepository.
func NewTimelineRepository(pool *pgxpool.Pool) repository.TimelineRepository {
	return &timelineRepository{pool: pool}
}

// Append inserts the event once; replays of the same id are ignored.
func (r *timelineRepository) Append(ctx context.Context, userID string, event domain.TimelineEvent) error {
	if event.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO timeline_events (id, user_id, event_type, goal_id, task_id, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
	ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		nullString(userID),
		string(event.EventType),
		nullString(event.GoalID),
		nullString(event.TaskID),
		nullString(event.Details),
		nullTime(event.Timestamp),
	)
	return err
}

func (r *timelineRepository) List(ctx context.Context, filter repository.TimelineFilter) ([]domain.TimelineEvent, error) {
	const query = `
	SELECT id, event_type, COALESCE(goal_id, ''), COALESCE(task_id, ''), COALESCE(details, ''), created_at
	FROM timeline_events
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR goal_id = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.GoalID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.TimelineEvent
	for rows.Next() {
		var (
			event     domain.TimelineEvent
			eventType string
		)
		if err := rows.Scan(&event.ID, &eventType, &event.GoalID, &event.TaskID, &event.Details, &event.Timestamp); err != nil {
			return nil, err
		}
		event.EventType = domain.EventType(eventType)
		events = append(events, event)
	}
	return events, rows.Err()
}
