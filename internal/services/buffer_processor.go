package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/infrastructure/buffer"
	"github.com/fastygo/goaltracker/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention drops items older than this on every drain. Zero keeps them.
	Retention time.Duration
}

// BufferProcessor replays buffered mirror operations against the remote repositories.
type BufferProcessor struct {
	store     *buffer.Store
	monitor   ConnectionHealth
	nodeRepo  repository.NodeRepository
	eventRepo repository.TimelineRepository
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       ProcessorConfig
	now       func() time.Time
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	nodeRepo repository.NodeRepository,
	eventRepo repository.TimelineRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:     store,
		monitor:   monitor,
		nodeRepo:  nodeRepo,
		eventRepo: eventRepo,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
		now:       time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	}); err != nil {
		bp.logger.Error("invalid buffer drain schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain processes buffered items synchronously.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	bp.cleanup()
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := bp.processItem(ctx, item); err != nil {
			bp.logger.Error("failed to process buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Error(err))

			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to remove buffer item", zap.Error(err))
			}
			item.Retries++
			if item.Retries >= bp.cfg.MaxRetries {
				bp.logger.Warn("dropping buffer item (max retries reached)", zap.String("item_id", item.ID))
				continue
			}
			if err := bp.store.Requeue(item); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
			continue
		}

		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
		}
	}
	return nil
}

// BufferOperation attempts to run the operation immediately and falls back to persisting it.
// Node items replace any pending item for the same node.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			if item.Entity == buffer.EntityNode {
				return bp.Discard(item.ID)
			}
			return nil
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.String("entity", item.Entity), zap.Error(err))
	}
	if item.Entity == buffer.EntityNode {
		return bp.store.Replace(item)
	}
	return bp.store.Enqueue(item)
}

// Discard drops pending operations for a node whose latest state already
// reached the remote, so a later drain cannot replay an older one.
func (bp *BufferProcessor) Discard(id string) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	removed, err := bp.store.Discard(id)
	if err != nil {
		return err
	}
	if removed > 0 {
		bp.logger.Debug("superseded buffer items dropped", zap.String("item_id", id), zap.Int("count", removed))
	}
	return nil
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) cleanup() {
	if bp.cfg.Retention <= 0 {
		return
	}
	removed, err := bp.store.Cleanup(bp.now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Warn("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Info("expired buffer items dropped", zap.Int("count", removed))
	}
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityNode:
		if bp.nodeRepo == nil {
			return fmt.Errorf("node repository not configured")
		}
		var node domain.Node
		if err := json.Unmarshal(item.Data, &node); err != nil {
			return err
		}
		switch item.Operation {
		case buffer.OperationUpsert:
			return bp.nodeRepo.Save(ctx, &node)
		case buffer.OperationDelete:
			err := bp.nodeRepo.Delete(ctx, node.ID)
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil
			}
			return err
		default:
			return fmt.Errorf("unsupported operation %s", item.Operation)
		}

	case buffer.EntityTimeline:
		if bp.eventRepo == nil {
			return fmt.Errorf("timeline repository not configured")
		}
		var event domain.TimelineEvent
		if err := json.Unmarshal(item.Data, &event); err != nil {
			return err
		}
		return bp.eventRepo.Append(ctx, item.UserID, event)

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}
