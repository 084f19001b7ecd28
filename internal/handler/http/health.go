// Package http holds the cross-cutting HTTP pieces of the API: health probes,
// the middleware chain and the Prometheus endpoint. Route handlers live in
// the agent and analyze subpackages.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"truthlens/internal/handler/http/respond"
)

// Pinger is a dependency whose reachability decides readiness.
// *cache.RedisStore satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"` // "healthy", "unhealthy" or "disabled"
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports the shared cache, the LLM provider and which
// external collaborators have credentials. Only an unreachable shared cache
// makes the service unhealthy; everything else degrades to fallbacks.
type HealthHandler struct {
	// Cache is nil when the in-process store is used.
	Cache Pinger
	// LLMProvider is the provider name, "none" when disabled.
	LLMProvider string
	// Collaborators maps an external service name to whether it is configured.
	Collaborators map[string]bool
	Version       string
}

// ServeHTTP returns 200 when healthy and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		"cache": h.checkCache(ctx),
		"llm":   h.checkLLM(),
	}
	if len(h.Collaborators) > 0 {
		details := make(map[string]any, len(h.Collaborators))
		for name, ok := range h.Collaborators {
			details[name] = ok
		}
		checks["collaborators"] = CheckStatus{Status: "healthy", Details: details}
	}

	status, code := "healthy", http.StatusOK
	if checks["cache"].Status == "unhealthy" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkCache(ctx context.Context) CheckStatus {
	if h.Cache == nil {
		return CheckStatus{Status: "healthy", Message: "in-process store"}
	}
	start := time.Now()
	if err := h.Cache.Ping(ctx); err != nil {
		slog.Warn("health: cache ping failed", slog.Any("error", respond.SanitizeError(err)))
		return CheckStatus{Status: "unhealthy", Message: "redis unreachable"}
	}
	return CheckStatus{
		Status:  "healthy",
		Details: map[string]any{"latency_ms": time.Since(start).Milliseconds()},
	}
}

func (h *HealthHandler) checkLLM() CheckStatus {
	if h.LLMProvider == "" || h.LLMProvider == "none" {
		return CheckStatus{Status: "disabled", Message: "rule-based fallbacks in use"}
	}
	return CheckStatus{Status: "healthy", Details: map[string]any{"provider": h.LLMProvider}}
}

// ReadyHandler handles readiness probes. It fails only when the shared
// cache is configured and unreachable.
type ReadyHandler struct {
	Cache Pinger
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Cache != nil {
		if err := h.Cache.Ping(ctx); err != nil {
			http.Error(w, "cache not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Warn("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler handles liveness probes and always answers 200.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Warn("alive: failed to write response", slog.Any("error", err))
	}
}
