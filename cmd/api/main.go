package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/kickstock-backend/api"
	"github.com/angelmondragon/kickstock-backend/api/routes"
	"github.com/angelmondragon/kickstock-backend/internal/audit"
	"github.com/angelmondragon/kickstock-backend/internal/queue"
	"github.com/angelmondragon/kickstock-backend/internal/shoes"
	"github.com/angelmondragon/kickstock-backend/internal/users"
	"github.com/angelmondragon/kickstock-backend/pkg/config"
	"github.com/angelmondragon/kickstock-backend/pkg/db"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
	"github.com/angelmondragon/kickstock-backend/pkg/migrate"
	"github.com/angelmondragon/kickstock-backend/pkg/redis"
	"github.com/angelmondragon/kickstock-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured; idempotency replay and intake rate limiting disabled")
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	lifecycle := metrics.NewLifecycleMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, store, lifecycle)
	if err != nil {
		return err
	}

	srv := api.NewServer(cfg, routes.NewRouter(cfg, logg, dbClient, redisClient, registry, svcs))
	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    srv.Addr,
		"storage": cfg.Storage.Backend,
		"driver":  dbClient.Driver(),
	}), "starting api server")

	return api.Serve(ctx, srv, logg)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, store storage.ObjectStore, m *metrics.LifecycleMetrics) (routes.Services, error) {
	userSvc, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Services{}, err
	}
	auditSvc, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Services{}, err
	}
	shoeSvc, err := shoes.NewService(shoes.NewRepository(dbClient.DB()), dbClient, auditSvc, m, logg)
	if err != nil {
		return routes.Services{}, err
	}
	queueSvc, err := queue.NewService(
		queue.NewRepository(dbClient.DB()),
		dbClient,
		store,
		shoeSvc,
		queue.UploadLimits{MaxBytes: cfg.Media.MaxUploadBytes(), MaxFiles: cfg.Media.MaxFilesPerReq},
		m,
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}
	return routes.Services{Users: userSvc, Queue: queueSvc, Shoes: shoeSvc, Audit: auditSvc}, nil
}
