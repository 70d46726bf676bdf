// Package sync mirrors store changes to the remote node and timeline
// repositories. Mirroring is fire-and-forget: the store never waits on it,
// and failed writes are handed to the operation buffer for retry.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/repository"
	"github.com/fastygo/goaltracker/usecase"
)

const (
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

type Config struct {
	UserID    string
	QueueSize int
	Timeout   time.Duration
}

// UseCase consumes store changes on a worker goroutine.
type UseCase struct {
	nodes  repository.NodeRepository
	events repository.TimelineRepository
	buffer usecase.OperationBuffer
	cfg    Config
	logger *zap.Logger

	queue    chan store.Change
	done     chan struct{}
	mu       gosync.RWMutex
	started  bool
	closed   bool
	stopOnce gosync.Once
}

func New(nodes repository.NodeRepository, events repository.TimelineRepository, buffer usecase.OperationBuffer, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &UseCase{
		nodes:  nodes,
		events: events,
		buffer: buffer,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "mirror")),
		queue:  make(chan store.Change, cfg.QueueSize),
		done:   make(chan struct{}),
	}
}

// Attach subscribes to s and returns the unsubscribe func.
func (uc *UseCase) Attach(s *store.Store) func() {
	return s.Subscribe(uc.Enqueue)
}

// Start launches the worker. Calling it twice is a no-op.
func (uc *UseCase) Start() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.started || uc.closed {
		return
	}
	uc.started = true
	go uc.run()
}

// Stop stops accepting changes and waits for the queue to drain.
func (uc *UseCase) Stop(ctx context.Context) error {
	uc.stopOnce.Do(func() {
		uc.mu.Lock()
		uc.closed = true
		close(uc.queue)
		if !uc.started {
			close(uc.done)
		}
		uc.mu.Unlock()
	})
	select {
	case <-uc.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue hands a change to the worker without blocking. When the queue is
// full the change goes straight to the operation buffer.
func (uc *UseCase) Enqueue(c store.Change) {
	if !mirrored(c) {
		return
	}
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.closed {
		return
	}
	select {
	case uc.queue <- c:
	default:
		uc.logger.Warn("mirror queue full, buffering change", zap.String("entity", string(c.Entity)), zap.String("id", c.ID))
		ctx, cancel := context.WithTimeout(context.Background(), uc.cfg.Timeout)
		defer cancel()
		if err := uc.bufferChange(ctx, c); err != nil {
			uc.logger.Error("failed to buffer change", zap.String("id", c.ID), zap.Error(err))
		}
	}
}

func (uc *UseCase) run() {
	defer close(uc.done)
	for c := range uc.queue {
		ctx, cancel := context.WithTimeout(context.Background(), uc.cfg.Timeout)
		if err := uc.Apply(ctx, c); err != nil {
			uc.logger.Error("mirror change failed", zap.String("entity", string(c.Entity)), zap.String("id", c.ID), zap.Error(err))
		}
		cancel()
	}
}

// mirrored reports whether the remote keeps this kind of change. Slots,
// productivity and sleep logs live only in the local snapshot.
func mirrored(c store.Change) bool {
	switch c.Entity {
	case store.EntityGoal, store.EntityTask:
		return c.Op == store.OpUpsert || c.Op == store.OpDelete
	case store.EntityTimeline:
		return c.Op == store.OpAppend && c.Event != nil
	default:
		return false
	}
}

// Apply writes one change to the remote and buffers it on failure. The
// returned error is only set when buffering failed too.
func (uc *UseCase) Apply(ctx context.Context, c store.Change) error {
	err := uc.write(ctx, c)
	if err == nil {
		uc.discardPending(ctx, c)
		return nil
	}
	if uc.shouldBuffer(ctx, c) {
		return nil
	}
	return err
}

// discardPending drops buffered operations for a node the write superseded.
func (uc *UseCase) discardPending(ctx context.Context, c store.Change) {
	if uc.buffer == nil || c.Entity == store.EntityTimeline {
		return
	}
	if err := uc.buffer.Discard(ctx, c.ID); err != nil {
		uc.logger.Warn("failed to discard buffered operations", zap.String("id", c.ID), zap.Error(err))
	}
}

func (uc *UseCase) write(ctx context.Context, c store.Change) error {
	switch c.Entity {
	case store.EntityGoal, store.EntityTask:
		if uc.nodes == nil {
			return errors.New("node repository not configured")
		}
		if c.Op == store.OpDelete {
			err := uc.nodes.Delete(ctx, c.ID)
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil
			}
			return err
		}
		node, err := uc.node(c)
		if err != nil {
			return err
		}
		return uc.nodes.Save(ctx, &node)
	case store.EntityTimeline:
		if uc.events == nil {
			return errors.New("timeline repository not configured")
		}
		return uc.events.Append(ctx, uc.cfg.UserID, *c.Event)
	}
	return nil
}

func (uc *UseCase) node(c store.Change) (domain.Node, error) {
	switch {
	case c.Goal != nil:
		return domain.GoalNode(*c.Goal, uc.cfg.UserID)
	case c.Task != nil:
		return domain.TaskNode(*c.Task, uc.cfg.UserID)
	default:
		return domain.Node{}, domain.ErrInvalidPayload
	}
}

func (uc *UseCase) bufferChange(ctx context.Context, c store.Change) error {
	if uc.buffer == nil {
		return errors.New("operation buffer not configured")
	}
	switch c.Entity {
	case store.EntityTimeline:
		return uc.buffer.BufferEvent(ctx, uc.cfg.UserID, c.Event)
	default:
		if c.Op == store.OpDelete {
			nodeType := domain.NodeGoal
			if c.Entity == store.EntityTask {
				nodeType = domain.NodeTask
			}
			return uc.buffer.BufferNode(ctx, usecase.OperationDelete, &domain.Node{ID: c.ID, UserID: uc.cfg.UserID, Type: nodeType})
		}
		node, err := uc.node(c)
		if err != nil {
			return err
		}
		return uc.buffer.BufferNode(ctx, usecase.OperationUpsert, &node)
	}
}

func (uc *UseCase) shouldBuffer(ctx context.Context, c store.Change) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.bufferChange(ctx, c); err != nil {
		uc.logger.Error("failed to buffer mirror operation", zap.String("entity", string(c.Entity)), zap.Error(err))
		return false
	}
	uc.logger.Warn("mirror operation buffered", zap.String("entity", string(c.Entity)), zap.String("id", c.ID))
	return true
}
