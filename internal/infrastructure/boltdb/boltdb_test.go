package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestOpenCreatesDirectoryAndBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, EnsureBuckets(db, "snapshots", "sync_buffer"))
	require.NoError(t, EnsureBuckets(db, "snapshots"))

	err = db.View(func(tx *bolt.Tx) error {
		assert.NotNil(t, tx.Bucket([]byte("snapshots")))
		assert.NotNil(t, tx.Bucket([]byte("sync_buffer")))
		return nil
	})
	require.NoError(t, err)
}
