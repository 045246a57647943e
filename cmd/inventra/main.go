package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/inventra/inventra/internal/app"
	"github.com/inventra/inventra/internal/ledger"
	"github.com/inventra/inventra/internal/ledgerhttp"
	"github.com/inventra/inventra/internal/observability"
	"github.com/inventra/inventra/internal/report"
	"github.com/inventra/inventra/internal/store"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	gateway, cleanup, redisClient, err := buildGateway(ctx, cfg, logger)
	if err != nil {
		logger.Error("init store", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	metrics := observability.NewMetrics()

	engine, err := ledger.New(ctx, ledger.Config{
		Gateway: gateway,
		Key:     cfg.SnapshotKey,
		Costing: ledger.FixedCosting(cfg.UnitValue),
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		logger.Error("init ledger engine", slog.Any("error", err))
		os.Exit(1)
	}

	reportCache := report.NewCache(redisClient, cfg.TurnoverCacheTTL)
	reports := report.NewService(engine, reportCache, logger)

	handler := ledgerhttp.NewHandler(logger, engine, reports)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		LedgerHandler: handler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

// buildGateway selects the durability backend from configuration. The returned
// redis client is nil unless the redis backend is active; the report cache
// reuses it when present.
func buildGateway(ctx context.Context, cfg *app.Config, logger *slog.Logger) (ledger.Gateway, func(), *redis.Client, error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		gw, err := store.NewRedis(ctx, client)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
		return gw, cleanup, client, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		gw, err := store.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return gw, pool.Close, nil, nil
	default:
		return store.NewMemory(), func() {}, nil, nil
	}
}
