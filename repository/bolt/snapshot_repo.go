// Package bolt stores the tracker snapshot in a local bbolt bucket.
package bolt

import (
	"context"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/goaltracker/repository"
)

const DefaultBucket = "snapshots"

type snapshotRepository struct {
	db     *bbolt.DB
	bucket []byte
	key    []byte
}

// NewSnapshotRepository keeps the snapshot under key in bucket. The bucket
// must exist; see boltdb.EnsureBuckets.
func NewSnapshotRepository(db *bbolt.DB, bucket, key string) repository.SnapshotRepository {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &snapshotRepository{
		db:     db,
		bucket: []byte(bucket),
		key:    []byte(key),
	}
}

func (r *snapshotRepository) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.db == nil {
		return nil, bbolt.ErrDatabaseNotOpen
	}
	var data []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(r.key); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, err
}

func (r *snapshotRepository) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(r.bucket)
		if err != nil {
			return err
		}
		return b.Put(r.key, data)
	})
}
