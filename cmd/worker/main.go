package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/inventra/inventra/internal/app"
	"github.com/inventra/inventra/internal/ledger"
	"github.com/inventra/inventra/internal/report"
	"github.com/inventra/inventra/internal/store"
	"github.com/inventra/inventra/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var gateway ledger.Gateway
	var copier jobs.SnapshotCopier
	switch cfg.StoreBackend {
	case "redis":
		gw, err := store.NewRedis(ctx, redisClient)
		if err != nil {
			logger.Error("connect redis store", slog.Any("error", err))
			os.Exit(1)
		}
		gateway = gw
		copier = gw
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		gw, err := store.NewPostgres(ctx, pool)
		if err != nil {
			logger.Error("init postgres store", slog.Any("error", err))
			os.Exit(1)
		}
		gateway = gw
		copier = gw
	default:
		// The memory backend holds no durable blob worth warming or backing up.
		logger.Error("worker requires a durable store backend", slog.String("backend", cfg.StoreBackend))
		os.Exit(1)
	}

	engine, err := ledger.New(ctx, ledger.Config{
		Gateway: gateway,
		Key:     cfg.SnapshotKey,
		Costing: ledger.FixedCosting(cfg.UnitValue),
		Logger:  logger,
	})
	if err != nil {
		logger.Error("init ledger engine", slog.Any("error", err))
		os.Exit(1)
	}

	reportCache := report.NewCache(redisClient, cfg.TurnoverCacheTTL)
	reports := report.NewService(engine, reportCache, logger)

	warmupJob := jobs.NewTurnoverWarmupJob(reports, engine, logger, nil)
	backupJob := jobs.NewSnapshotBackupJob(copier, logger, nil)

	warmupTask, err := jobs.NewTurnoverWarmupTask(cfg.TurnoverWarmDays)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	backupTask, err := jobs.NewSnapshotBackupTask(cfg.SnapshotKey, cfg.SnapshotBackupKey)
	if err != nil {
		logger.Error("build backup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTurnoverWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskSnapshotBackup, Handler: backupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: backupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
