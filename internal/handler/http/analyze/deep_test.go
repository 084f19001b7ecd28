package analyze

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/domain/entity"
)

type stubAnalyzer struct {
	got    string
	calls  int
	result entity.AnalysisResult
}

func (s *stubAnalyzer) Analyze(_ context.Context, headline string) entity.AnalysisResult {
	s.got = headline
	s.calls++
	r := s.result
	r.Headline = headline
	return r
}

func TestDeepHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		result    entity.AnalysisResult
		wantCode  int
		wantCalls int
		wantError string
	}{
		{
			name:      "analyzed",
			body:      `{"headline":"Central bank raises rates"}`,
			result:    entity.AnalysisResult{VerificationScore: 80, Verdict: "Highly Credible", Outcome: entity.OutcomeOK},
			wantCode:  http.StatusOK,
			wantCalls: 1,
		},
		{
			name:      "empty headline is reported in the result",
			body:      `{"headline":""}`,
			result:    entity.AnalysisResult{Outcome: entity.OutcomeFailed, Error: "No headline provided"},
			wantCode:  http.StatusOK,
			wantCalls: 1,
		},
		{
			name:      "malformed json",
			body:      `{"headline":`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid JSON request body",
		},
		{
			name:      "headline too long",
			body:      `{"headline":"` + strings.Repeat("a", MaxHeadlineLength+1) + `"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "headline is too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAnalyzer{result: tt.result}
			mux := http.NewServeMux()
			Register(mux, stub)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze/deep", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCalls, stub.calls)

			if tt.wantError != "" {
				assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, rec.Body.String())
				return
			}

			var got entity.AnalysisResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.result.Outcome, got.Outcome)
			assert.Equal(t, tt.result.Error, got.Error)
			assert.Equal(t, stub.got, got.Headline)
		})
	}
}

func TestDeepHandler_BodyTooLarge(t *testing.T) {
	stub := &stubAnalyzer{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze/deep", strings.NewReader(`{"headline":"`+strings.Repeat("a", 100)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 10)

	DeepHandler{Analyzer: stub}.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, stub.calls)
}
