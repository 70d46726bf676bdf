package redis

import (
	"context"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/goaltracker/repository"
)

const defaultPrefix = "tracker:"

type snapshotRepository struct {
	client *redislib.Client
	key    string
	ttl    time.Duration
}

// NewSnapshotRepository keeps the snapshot in a single Redis string. A zero
// ttl keeps it forever.
func NewSnapshotRepository(client *redislib.Client, slot string, ttl time.Duration) repository.SnapshotRepository {
	if ttl < 0 {
		ttl = 0
	}
	return &snapshotRepository{
		client: client,
		key:    defaultPrefix + slot,
		ttl:    ttl,
	}
}

func (r *snapshotRepository) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (r *snapshotRepository) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}
