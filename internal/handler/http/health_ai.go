package http

import (
	"context"
	"net/http"
	"time"

	"truthlens/internal/handler/http/respond"
	"truthlens/internal/usecase/ai"
)

// AIHealthChecker reports provider health. *ai.Service satisfies it.
type AIHealthChecker interface {
	Health(ctx context.Context) (*ai.HealthStatus, error)
}

// AIHealthHandler serves /health/ai and /ready/ai.
type AIHealthHandler struct {
	checker AIHealthChecker
}

// NewAIHealthHandler creates a new AI health check handler.
func NewAIHealthHandler(checker AIHealthChecker) *AIHealthHandler {
	return &AIHealthHandler{checker: checker}
}

// AIHealthResponse represents the response structure for AI health endpoints.
type AIHealthResponse struct {
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	Latency     string `json:"latency,omitempty"`
	CircuitOpen bool   `json:"circuit_open,omitempty"`
	Ready       *bool  `json:"ready,omitempty"`
}

// Health answers 200 when the provider responds, 503 otherwise. A disabled
// provider is unhealthy here but the agents keep working on fallbacks.
func (h *AIHealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, err := h.checker.Health(ctx)
	if err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{
			Status:  "unhealthy",
			Message: respond.SanitizeError(err),
		})
		return
	}
	if status == nil || !status.Healthy {
		resp := AIHealthResponse{Status: "unhealthy"}
		if status != nil {
			resp.Message = status.Message
			resp.CircuitOpen = status.CircuitOpen
		}
		respond.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respond.JSON(w, http.StatusOK, AIHealthResponse{
		Status:  "healthy",
		Latency: status.Latency.String(),
	})
}

// Ready reports whether the provider's circuit breaker admits traffic.
// An unhealthy provider with a closed circuit is still ready.
func (h *AIHealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, err := h.checker.Health(ctx)
	ready := false

	switch {
	case status == nil:
		msg := "health check failed"
		if err != nil {
			msg = respond.SanitizeError(err)
		}
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{Ready: &ready, Message: msg})
	case status.CircuitOpen:
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{Ready: &ready, Message: "circuit breaker open"})
	default:
		ready = true
		respond.JSON(w, http.StatusOK, AIHealthResponse{Ready: &ready})
	}
}
