// Package agent serves the specialized agents under /agents and the query
// router under /agent/ask.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"truthlens/internal/handler/http/respond"
	"truthlens/internal/observability/logging"
	agentUC "truthlens/internal/usecase/agent"
)

// Envelope wraps every agent answer.
type Envelope struct {
	Status    string    `json:"status"`
	Agent     string    `json:"agent"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	errMalformedBody = errors.New("invalid JSON request body")
	errBodyTooLarge  = errors.New("request body too large")
)

// decode reads a JSON body into v. An empty body leaves v zero-valued so
// the agent reports the missing field itself.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return errMalformedBody
}

func writeSuccess(w http.ResponseWriter, name string, data any) {
	respond.JSON(w, http.StatusOK, Envelope{
		Status:    statusSuccess,
		Agent:     name,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// writeFailure maps agent errors onto status codes: caller mistakes are 400,
// deadlines 504 and collaborator failures 502. Only caller mistakes expose
// their message.
func writeFailure(w http.ResponseWriter, r *http.Request, name string, err error) {
	code, msg := classify(err)
	if code >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("agent request failed",
			"agent", name,
			"status", code,
			"error", respond.SanitizeError(err))
	}
	respond.JSON(w, code, Envelope{
		Status:    statusError,
		Agent:     name,
		Error:     msg,
		Timestamp: time.Now().UTC(),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, err.Error()
	case agentUC.IsInputError(err):
		return http.StatusBadRequest, respond.SanitizeError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream request timed out"
	default:
		return http.StatusBadGateway, "upstream service unavailable"
	}
}
