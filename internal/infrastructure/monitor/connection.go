package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/internal/infrastructure/buffer"
)

const (
	defaultInterval = 10 * time.Second
	pgTimeout       = 3 * time.Second
	redisTimeout    = 2 * time.Second
)

// Check pings a backend. A nil Check means the backend is not configured.
type Check func(ctx context.Context) error

func PostgresCheck(pool *pgxpool.Pool) Check {
	if pool == nil {
		return nil
	}
	return pool.Ping
}

func RedisCheck(client *redislib.Client) Check {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Monitor polls the mirror database, the redis slot and the sync buffer.
type Monitor struct {
	pg     Check
	redis  Check
	buffer *buffer.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(pg *pgxpool.Pool, redis *redislib.Client, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	return NewWithChecks(PostgresCheck(pg), RedisCheck(redis), buf, interval, logger)
}

func NewWithChecks(pg, redis Check, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger.With(zap.String("component", "monitor")),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the mirror database answered the last ping.
// Without a mirror there is nothing to drain to, so it is false.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Mirror && m.status.PostgreSQL
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and stores the result.
func (m *Monitor) Refresh() Status {
	bufferOK, bufferSize := m.checkBuffer()
	status := Status{
		PostgreSQL: m.ping("postgres", m.pg, pgTimeout),
		Redis:      m.ping("redis", m.redis, redisTimeout),
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		Mirror:     m.pg != nil,
		RedisSlot:  m.redis != nil,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if status.Mirror && prev.PostgreSQL != status.PostgreSQL && !prev.LastCheck.IsZero() {
		m.logger.Info("mirror connectivity changed", zap.Bool("online", status.PostgreSQL))
	}
	return status
}

func (m *Monitor) ping(name string, check Check, timeout time.Duration) bool {
	if check == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := check(ctx); err != nil {
		m.logger.Debug("health check failed", zap.String("backend", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
