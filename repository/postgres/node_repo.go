package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/repository"
)

type nodeRepository struct {
	pool *pgxpool.Pool
}

// NewNodeRepository returns a Postgres-backed implementation of NodeRepository.
func NewNodeRepository(pool *pgxpool.Pool) repository.NodeRepository {
	return &nodeRepository{pool: pool}
}

func (r *nodeRepository) GetByID(ctx context.Context, id string) (*domain.Node, error) {
	const query = `
	SELECT id, COALESCE(user_id, ''), type, title, COALESCE(description, ''), properties, metadata, is_archived, created_at, updated_at
	FROM nodes
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanNode(row)
}

func (r *nodeRepository) List(ctx context.Context, filter repository.NodeFilter) ([]domain.Node, error) {
	const query = `
	SELECT id, COALESCE(user_id, ''), type, title, COALESCE(description, ''), properties, metadata, is_archived, created_at, updated_at
	FROM nodes
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR type = $2)
	  AND ($3 OR NOT is_archived)
	ORDER BY created_at ASC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.UserID,
		string(filter.Type),
		filter.IncludeArchived,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}

func (r *nodeRepository) Save(ctx context.Context, node *domain.Node) error {
	if node == nil || node.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO nodes (id, user_id, type, title, description, properties, metadata, is_archived, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		description = EXCLUDED.description,
		properties = EXCLUDED.properties,
		metadata = EXCLUDED.metadata,
		is_archived = EXCLUDED.is_archived,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query,
		node.ID,
		nullString(node.UserID),
		string(node.Type),
		node.Title,
		nullString(node.Description),
		jsonb(node.Properties),
		jsonb(node.Metadata),
		node.IsArchived,
		nullTime(node.CreatedAt),
	).Scan(&node.CreatedAt, &node.UpdatedAt)
}

func (r *nodeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM nodes WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}

func scanNode(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Node, error) {
	var (
		node       domain.Node
		nodeType   string
		properties []byte
		metadata   []byte
	)

	if err := row.Scan(
		&node.ID,
		&node.UserID,
		&nodeType,
		&node.Title,
		&node.Description,
		&properties,
		&metadata,
		&node.IsArchived,
		&node.CreatedAt,
		&node.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNodeNotFound
		}
		return nil, err
	}

	node.Type = domain.NodeType(nodeType)
	node.Properties = append([]byte(nil), properties...)
	node.Metadata = append([]byte(nil), metadata...)
	return &node, nil
}
