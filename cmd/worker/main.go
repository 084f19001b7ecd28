package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"truthlens/internal/app"
	"truthlens/internal/config"
	"truthlens/internal/infra/cache"
	workerPkg "truthlens/internal/infra/worker"
	"truthlens/internal/observability/logging"
	"truthlens/internal/usecase/agent"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	metrics := workerPkg.NewMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, metrics)
	logger.Info("worker configuration loaded",
		slog.String("schedule", workerConfig.Schedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	store := connectCache(ctx, logger, cfg)
	defer func() {
		if err := store.client.Close(); err != nil {
			logger.Error("failed to close redis", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger, prometheus.DefaultGatherer)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, store.redis, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	warmer := setupWarmer(logger, cfg, store.memo, workerConfig, metrics)
	c := startCronWorker(logger, warmer, workerConfig, healthServer)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	healthServer.SetReady(false)
	<-c.Stop().Done()
	cancel()
	logger.Info("worker stopped")
}

// sharedCache is the Redis-backed cache the worker fills for the API.
type sharedCache struct {
	memo   *cache.Memoizer
	redis  *cache.RedisStore
	client interface{ Close() error }
}

// connectCache requires REDIS_ADDR: an in-process cache would warm nothing
// the API can read.
func connectCache(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) *sharedCache {
	if cfg.Cache.RedisAddr == "" {
		logger.Error("REDIS_ADDR must be set for the worker")
		os.Exit(1)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := cache.Connect(dialCtx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	store := cache.NewRedisStore(client, cfg.Cache.Prefix)
	logger.Info("connected to redis", slog.String("addr", cfg.Cache.RedisAddr))
	return &sharedCache{
		memo:   cache.NewMemoizer(store, cfg.Cache.TTL),
		redis:  store,
		client: client,
	}
}

// setupWarmer builds the agents whose results the worker keeps warm.
// Collaborators without credentials are skipped.
func setupWarmer(logger *slog.Logger, cfg *config.AppConfig, memo *cache.Memoizer, wcfg workerPkg.Config, metrics *workerPkg.Metrics) *workerPkg.Warmer {
	clients := app.NewCollaborators(cfg.APIs)

	var metalWarmer workerPkg.MetalWarmer
	if clients.Quotes.Configured() {
		metalWarmer = agent.NewMetalPricesAgent(clients.Quotes, memo, app.MetalBase)
	} else {
		logger.Info("metal prices not configured, skipping")
	}

	var newsWarmer workerPkg.TrendingWarmer
	if clients.Headlines.Configured() {
		newsWarmer = agent.NewNewsFetchAgent(clients.Headlines, clients.Feed, clients.Pages, memo, cfg.Cache.TTL)
	} else {
		logger.Info("trending headlines not configured, skipping")
	}

	return workerPkg.NewWarmer(workerPkg.WarmerOptions{
		Metals:     metalWarmer,
		News:       newsWarmer,
		Categories: cfg.Worker.TrendingCategories,
		Limit:      cfg.Worker.TrendingLimit,
		Timeout:    wcfg.JobTimeout,
		Metrics:    metrics,
		Logger:     logger,
	})
}

// startCronWorker runs the warmer once, then on every schedule tick.
func startCronWorker(logger *slog.Logger, warmer *workerPkg.Warmer, cfg workerPkg.Config, healthServer *workerPkg.HealthServer) *cron.Cron {
	c := cron.New(cron.WithLocation(cfg.Location()))

	_, err := c.AddFunc(cfg.Schedule, func() {
		warmer.Run(context.Background())
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}

	warmer.Run(context.Background())
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.Schedule),
		slog.String("timezone", cfg.Timezone))
	return c
}
