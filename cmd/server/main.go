package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/goaltracker/api/handler"
	"github.com/fastygo/goaltracker/internal/bootstrap"
	"github.com/fastygo/goaltracker/internal/config"
	"github.com/fastygo/goaltracker/internal/infrastructure/buffer"
	"github.com/fastygo/goaltracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/goaltracker/internal/infrastructure/postgres"
	"github.com/fastygo/goaltracker/internal/middleware"
	"github.com/fastygo/goaltracker/internal/router"
	"github.com/fastygo/goaltracker/internal/services"
	"github.com/fastygo/goaltracker/internal/services/lifecycle"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/pkg/httpcontext"
	"github.com/fastygo/goaltracker/pkg/logger"
	"github.com/fastygo/goaltracker/repository/postgres"
	mirrorUC "github.com/fastygo/goaltracker/usecase/sync"
)

const monitorInterval = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	slot, err := bootstrap.OpenSlot(appCtx, cfg, false)
	if err != nil {
		zapLogger.Fatal("failed to open snapshot slot", zap.String("backend", cfg.Snapshot.Backend), zap.Error(err))
	}
	manager.Register("snapshot_slot", func(ctx context.Context) error {
		return slot.Close()
	})

	trackerStore, err := bootstrap.NewStore(appCtx, cfg, slot.Repo, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to load tracker snapshot", zap.Error(err))
	}
	zapLogger.Info("tracker loaded",
		zap.String("backend", cfg.Snapshot.Backend),
		zap.Int("goals", len(trackerStore.Goals())),
		zap.Int("tasks", len(trackerStore.Tasks())))

	mon := startMirror(appCtx, cfg, slot, trackerStore, manager, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	var status apiHandler.StatusSource
	if mon != nil {
		status = mon
	}
	handlers := router.Handlers{
		Goal:     apiHandler.NewGoalHandler(trackerStore, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(trackerStore, ctxAdapter, zapLogger),
		TimeSlot: apiHandler.NewTimeSlotHandler(trackerStore, ctxAdapter, zapLogger),
		Sleep:    apiHandler.NewSleepHandler(trackerStore, ctxAdapter, zapLogger),
		Activity: apiHandler.NewActivityHandler(trackerStore, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(status, trackerStore, ctxAdapter, zapLogger),
	}

	var authMiddleware middleware.Middleware
	if cfg.JWT.Secret != "" {
		authMiddleware = middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	} else {
		zapLogger.Warn("JWT_SECRET not set, API is unauthenticated")
	}
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// startMirror wires the optional Postgres mirror: schema migrations, the
// bbolt sync buffer, the cron drain and the store subscriber. It returns
// the connection monitor, or nil when neither the mirror nor a redis slot
// is configured.
func startMirror(ctx context.Context, cfg *config.Config, slot *bootstrap.Slot, s *store.Store, manager *lifecycle.Manager, zapLogger *zap.Logger) *monitor.Monitor {
	if !cfg.Database.MirrorEnabled {
		if slot.Redis == nil {
			return nil
		}
		mon := monitor.New(nil, slot.Redis, nil, monitorInterval, zapLogger)
		mon.Start()
		manager.Register("monitor", func(context.Context) error {
			mon.Stop()
			return nil
		})
		return mon
	}

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	bufferStore := openBuffer(cfg, slot, zapLogger)
	manager.Register("buffer", func(context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, slot.Redis, bufferStore, monitorInterval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})

	nodeRepo := postgres.NewNodeRepository(pool)
	eventRepo := postgres.NewTimelineRepository(pool)
	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		nodeRepo,
		eventRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	mirror := mirrorUC.New(nodeRepo, eventRepo, services.NewBufferBridge(bufferProcessor), mirrorUC.Config{
		UserID:    cfg.Database.MirrorUserID,
		QueueSize: cfg.Buffer.QueueSize,
		Timeout:   cfg.Context.RequestTimeout,
	}, zapLogger)
	detach := mirror.Attach(s)
	mirror.Start()
	manager.Register("mirror", func(ctx context.Context) error {
		detach()
		return mirror.Stop(ctx)
	})

	zapLogger.Info("postgres mirror enabled", zap.Int("buffered", bufferProcessor.Size()))
	return mon
}

func openBuffer(cfg *config.Config, slot *bootstrap.Slot, zapLogger *zap.Logger) *buffer.Store {
	var (
		bufferStore *buffer.Store
		err         error
	)
	if slot.DB != nil && cfg.Buffer.Path == cfg.Snapshot.Path {
		bufferStore, err = buffer.New(slot.DB, buffer.DefaultBucket)
	} else {
		bufferStore, err = buffer.Open(cfg.Buffer.Path, buffer.DefaultBucket)
	}
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	return bufferStore
}
