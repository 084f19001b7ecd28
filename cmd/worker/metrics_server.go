package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgconfig "truthlens/pkg/config"
)

const defaultMetricsPort = 9090

// metricsPort reads METRICS_PORT, falling back to 9090 when the value is
// not a usable TCP port.
func metricsPort() int {
	port := pkgconfig.GetEnvInt("METRICS_PORT", defaultMetricsPort)
	if pkgconfig.ValidateIntRange(port, 1, 65535) != nil {
		return defaultMetricsPort
	}
	return port
}

// metricsHandler serves the gatherer on /metrics and an always-200
// liveness probe on /health.
func metricsHandler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	return mux
}

// startMetricsServer serves metricsHandler in the background and shuts it
// down when ctx ends.
func startMetricsServer(ctx context.Context, logger *slog.Logger, g prometheus.Gatherer) *http.Server {
	port := metricsPort()
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      metricsHandler(g),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
			return
		}
		logger.Info("metrics server stopped")
	})

	return srv
}
