// Package analyze serves the deep credibility analysis pipeline.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"truthlens/internal/domain/entity"
	"truthlens/internal/handler/http/respond"
)

// MaxHeadlineLength bounds the headline accepted by the API.
const MaxHeadlineLength = 1000

// Analyzer runs the deep analysis pipeline. *analysis.Pipeline satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, headline string) entity.AnalysisResult
}

// DeepHandler serves POST /analyze/deep.
//
// The pipeline never fails the request: an empty headline or an internal
// failure comes back as a result with outcome "failed" and its error field
// set. Only a body that cannot be read is answered with an error status.
type DeepHandler struct {
	Analyzer Analyzer
}

type deepRequest struct {
	Headline string `json:"headline"`
}

func (h DeepHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req deepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.SafeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
			return
		}
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON request body"))
		return
	}
	if utf8.RuneCountInString(req.Headline) > MaxHeadlineLength {
		respond.SafeError(w, http.StatusBadRequest, errors.New("headline is too long"))
		return
	}

	respond.JSON(w, http.StatusOK, h.Analyzer.Analyze(r.Context(), req.Headline))
}

// Register mounts the analysis route on mux.
func Register(mux *http.ServeMux, analyzer Analyzer) {
	mux.Handle("POST /analyze/deep", DeepHandler{Analyzer: analyzer})
}
