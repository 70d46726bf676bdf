// Package boltdb opens the local bbolt file shared by the snapshot slot and
// the sync buffer.
package boltdb

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const openTimeout = time.Second

// Open creates the parent directory if needed and opens the database file.
// bbolt holds an exclusive file lock, so a second process fails after a second.
func Open(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
}

// OpenReadOnly opens an existing file without taking the write lock.
func OpenReadOnly(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout, ReadOnly: true})
}

// EnsureBuckets creates every named bucket that does not exist yet.
func EnsureBuckets(db *bolt.DB, names ...string) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}
