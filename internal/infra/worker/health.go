package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"truthlens/internal/handler/http/respond"
)

// Pinger checks a dependency. *cache.RedisStore satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer serves the worker's liveness and readiness probes.
// Readiness needs the scheduler started and the cache reachable.
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	cache   Pinger
	isReady atomic.Bool
	server  *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// NewHealthServer creates a server on addr. A nil cache skips the cache check.
func NewHealthServer(addr string, cache Pinger, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, cache: cache, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully and
// returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errChan <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady marks the scheduler as started or stopped.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !h.isReady.Load() {
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready", Reason: "scheduler not started"})
		return
	}
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("readiness cache check failed", slog.String("error", respond.SanitizeError(err)))
			respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready", Reason: "cache unreachable"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
