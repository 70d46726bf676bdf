// Package bootstrap builds the tracker store and its snapshot slot from
// configuration. It is shared by the HTTP server and trackerctl.
package bootstrap

import (
	"context"
	"fmt"

	redislib "github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/internal/config"
	"github.com/fastygo/goaltracker/internal/infrastructure/boltdb"
	redisInfra "github.com/fastygo/goaltracker/internal/infrastructure/redis"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/repository"
	boltRepo "github.com/fastygo/goaltracker/repository/bolt"
	"github.com/fastygo/goaltracker/repository/memory"
	redisRepo "github.com/fastygo/goaltracker/repository/redis"
)

// Settings maps the tracker config group onto store settings.
func Settings(cfg config.TrackerConfig) store.Settings {
	return store.Settings{
		WakingHoursPerDay:  cfg.WakingHoursPerDay,
		DefaultTaskMinutes: cfg.DefaultTaskMinutes,
		SleepTargetMinutes: cfg.SleepTargetMinutes,
		SleepWindow:        cfg.SleepWindowDays,
		TimelineCapacity:   cfg.TimelineCapacity,
		Location:           cfg.Location,
		PersistTimeout:     cfg.PersistTimeout,
	}
}

// Slot is an opened snapshot backend. DB and Redis are set when the
// backend uses them so other components can share the connection.
type Slot struct {
	Repo  repository.SnapshotRepository
	DB    *bolt.DB
	Redis *redislib.Client
}

// Close releases whatever the slot opened.
func (s *Slot) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.Redis != nil {
		err = s.Redis.Close()
	}
	if s.DB != nil {
		if cerr := s.DB.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// OpenSlot opens the configured snapshot backend. For writers the bolt file
// is opened whenever UsesBolt reports true, so the sync buffer can share it.
func OpenSlot(ctx context.Context, cfg *config.Config, readOnly bool) (*Slot, error) {
	slot := &Slot{}
	needBolt := cfg.UsesBolt()
	if readOnly {
		needBolt = cfg.Snapshot.Backend == config.SnapshotBolt
	}
	if needBolt {
		open := boltdb.Open
		if readOnly {
			open = boltdb.OpenReadOnly
		}
		db, err := open(cfg.Snapshot.Path)
		if err != nil {
			return nil, fmt.Errorf("open bolt file %s: %w", cfg.Snapshot.Path, err)
		}
		slot.DB = db
	}

	switch cfg.Snapshot.Backend {
	case config.SnapshotBolt:
		slot.Repo = boltRepo.NewSnapshotRepository(slot.DB, boltRepo.DefaultBucket, cfg.Snapshot.Key)
	case config.SnapshotRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			_ = slot.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		slot.Redis = client
		slot.Repo = redisRepo.NewSnapshotRepository(client, cfg.Snapshot.Key, cfg.Snapshot.TTL)
	default:
		slot.Repo = memory.NewSnapshotRepository()
	}
	return slot, nil
}

// NewStore creates the store over repo and rehydrates it.
func NewStore(ctx context.Context, cfg *config.Config, repo repository.SnapshotRepository, logger *zap.Logger) (*store.Store, error) {
	s := store.New(store.Options{
		Settings:  Settings(cfg.Tracker),
		Snapshots: repo,
		Logger:    logger,
	})
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	if cfg.Tracker.SeedTimeSlots {
		s.LoadDefaultTimeSlots()
	}
	return s, nil
}
