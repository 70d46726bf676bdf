package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/goaltracker/internal/infrastructure/boltdb"
)

func TestSnapshotRepository_SaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	db, err := boltdb.Open(path)
	require.NoError(t, err)

	repo := NewSnapshotRepository(db, "", "goal-tracker-storage")
	data, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data, "missing bucket reads as empty")

	require.NoError(t, repo.Save(context.Background(), []byte(`{"version":1}`)))
	require.NoError(t, repo.Save(context.Background(), []byte(`{"version":1,"goals":[]}`)))
	require.NoError(t, db.Close())

	db, err = boltdb.Open(path)
	require.NoError(t, err)
	defer db.Close()

	data, err = NewSnapshotRepository(db, DefaultBucket, "goal-tracker-storage").Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"goals":[]}`, string(data))

	other, err := NewSnapshotRepository(db, DefaultBucket, "other-slot").Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, other)
}
