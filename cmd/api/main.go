package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"truthlens/internal/app"
	"truthlens/internal/config"
	"truthlens/internal/infra/cache"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/tracing"
	"truthlens/internal/usecase/ai"
	"truthlens/internal/usecase/analysis"

	hhttp "truthlens/internal/handler/http"
	hagent "truthlens/internal/handler/http/agent"
	hanalyze "truthlens/internal/handler/http/analyze"
	"truthlens/internal/handler/http/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := initLogger(cfg)
	version := getVersion()

	shutdownTracing := tracing.Setup()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := initCache(ctx, logger, cfg)
	defer store.Close()

	components := setupServer(logger, cfg, store, version)
	runServer(ctx, cancel, logger, cfg, components, version)
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func initLogger(cfg *config.AppConfig) *slog.Logger {
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// cacheStore is the selected cache backend plus what the health probes and
// shutdown need from it.
type cacheStore struct {
	memo  *cache.Memoizer
	redis *cache.RedisStore
	conn  *redis.Client
}

// Close releases the Redis connection, if any.
func (c *cacheStore) Close() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// pinger returns the shared store for health checks, nil for the
// in-process store.
func (c *cacheStore) pinger() hhttp.Pinger {
	if c.redis == nil {
		return nil
	}
	return c.redis
}

// initCache selects Redis when REDIS_ADDR is set and the in-process store
// otherwise. An unreachable Redis is fatal: the API and the worker must
// share one cache.
func initCache(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) *cacheStore {
	if !cfg.Cache.Enabled {
		logger.Info("cache disabled")
		return &cacheStore{memo: cache.Disabled()}
	}

	if cfg.Cache.RedisAddr == "" {
		store := cache.NewMemoryStore()
		go store.RunSweeper(ctx, time.Minute)
		logger.Info("using in-process cache", slog.Duration("ttl", cfg.Cache.TTL))
		return &cacheStore{memo: cache.NewMemoizer(store, cfg.Cache.TTL)}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, err := cache.Connect(dialCtx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	store := cache.NewRedisStore(conn, cfg.Cache.Prefix)
	logger.Info("using redis cache",
		slog.String("addr", cfg.Cache.RedisAddr),
		slog.Duration("ttl", cfg.Cache.TTL))
	return &cacheStore{memo: cache.NewMemoizer(store, cfg.Cache.TTL), redis: store, conn: conn}
}

// ServerComponents holds what runServer needs.
type ServerComponents struct {
	Handler http.Handler
}

// setupServer wires collaborators, agents and the pipeline into routes and
// wraps them in the middleware chain.
func setupServer(logger *slog.Logger, cfg *config.AppConfig, store *cacheStore, version string) *ServerComponents {
	clients := app.NewCollaborators(cfg.APIs)
	llmSvc := app.NewLLM(logger, cfg)

	analysisCfg, err := config.LoadAnalysisConfig(cfg.AnalysisFile)
	if err != nil {
		logger.Error("failed to load analysis config", slog.Any("error", err))
		os.Exit(1)
	}

	built := app.NewAgents(llmSvc, clients, store.memo, cfg.Cache.TTL)
	agents := hagent.Agents{
		Router:  built.Router,
		News:    built.News,
		Truth:   built.Truth,
		Summary: built.Summary,
		Impact:  built.Impact,
		Media:   built.Media,
		Map:     built.Map,
		Metals:  built.Metals,
	}
	pipeline := analysis.NewPipeline(llmSvc, clients.Feed, analysisCfg)

	mux := setupRoutes(logger, cfg, agents, pipeline, llmSvc, store, clients, version)
	return &ServerComponents{Handler: applyMiddleware(logger, cfg, mux)}
}

// setupRoutes mounts the agent, analysis, health and metrics endpoints.
func setupRoutes(
	logger *slog.Logger,
	cfg *config.AppConfig,
	agents hagent.Agents,
	pipeline *analysis.Pipeline,
	llmSvc *ai.Service,
	store *cacheStore,
	clients *app.Collaborators,
	version string,
) *http.ServeMux {
	mux := http.NewServeMux()

	var limit func(http.Handler) http.Handler
	if cfg.Server.RateLimitRequests > 0 {
		limit = hhttp.NewRateLimiter(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow).Limit
		logger.Info("agent rate limit enabled",
			slog.Int("requests", cfg.Server.RateLimitRequests),
			slog.Duration("window", cfg.Server.RateLimitWindow))
	}

	hagent.Register(mux, agents, limit)
	hanalyze.Register(mux, pipeline)

	mux.Handle("GET /health", &hhttp.HealthHandler{
		Cache:         store.pinger(),
		LLMProvider:   llmSvc.ProviderName(),
		Collaborators: clients.Configured(),
		Version:       version,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Cache: store.pinger()})
	mux.Handle("GET /live", &hhttp.LiveHandler{})

	aiHealth := hhttp.NewAIHealthHandler(llmSvc)
	mux.HandleFunc("GET /health/ai", aiHealth.Health)
	mux.HandleFunc("GET /ready/ai", aiHealth.Ready)

	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	return mux
}

// applyMiddleware wraps handler, outermost first.
func applyMiddleware(logger *slog.Logger, cfg *config.AppConfig, handler http.Handler) http.Handler {
	cors := hhttp.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Server.CORSAllowedOrigins

	return hhttp.Chain(handler,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.CORS(cors, logger),
		hhttp.LimitRequestBody(cfg.Server.MaxBodyBytes),
		hhttp.Timeout(cfg.Server.RequestTimeout),
		hhttp.MetricsMiddleware,
	)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, cfg *config.AppConfig, components *ServerComponents, version string) {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// background sweepers stop after in-flight requests drain
	cancel()
	logger.Info("server stopped")
}
