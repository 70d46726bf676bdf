package repository

import "context"

// SnapshotRepository stores the serialized tracker state under one slot.
// Load returns nil data and a nil error when nothing was saved yet.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
