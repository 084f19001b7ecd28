package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/domain/entity"
)

func sampleResult() entity.AnalysisResult {
	return entity.AnalysisResult{
		Headline:          "NASA confirms water on Mars",
		Summary:           "Several outlets report the finding.",
		KeyPoints:         []string{"Radar data", "Peer reviewed"},
		VerificationScore: 85,
		Verdict:           entity.VerdictHighlyCredible,
		SourceAnalysis: entity.SourceScore{
			Score: 85, Verdict: entity.VerdictHighlyCredible,
			SourceCount: 2, HighQualityCount: 2,
		},
		RelatedArticles: []entity.Article{
			{Title: "Water on Mars", URL: "https://reuters.com/mars", SourceName: "Reuters", RelevanceScore: 0.8},
		},
		KeywordsUsed: []string{"NASA", "Mars"},
		Outcome:      entity.OutcomeOK,
	}
}

func TestOutputText(t *testing.T) {
	tests := []struct {
		name     string
		result   entity.AnalysisResult
		contains []string
		absent   []string
	}{
		{
			name:   "full result",
			result: sampleResult(),
			contains: []string{
				"Verdict:  Highly Credible (score 85, outcome ok)",
				"  - Radar data",
				"1. Water on Mars (Reuters, relevance 0.80)",
				"Keywords: [NASA Mars]",
			},
			absent: []string{"Absurdity", "Error"},
		},
		{
			name: "failed",
			result: entity.AnalysisResult{
				Headline: "x", Verdict: entity.VerdictAnalysisError,
				Outcome: entity.OutcomeFailed, Error: "upstream unavailable",
			},
			contains: []string{"Error: upstream unavailable"},
			absent:   []string{"Sources:"},
		},
		{
			name: "absurd",
			result: entity.AnalysisResult{
				Headline: "Moon made of cheese", Verdict: entity.VerdictLikelyFake,
				AbsurdityDetected: true, AbsurdityReason: "physically impossible",
				Outcome: entity.OutcomeAbsurd,
			},
			contains: []string{"Absurdity: physically impossible", "Sources: 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			outputText(&buf, tt.result)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputJSON(&buf, sampleResult()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Highly Credible", got["verdict"])
	assert.Equal(t, float64(85), got["verification_score"])
	assert.Equal(t, "ok", got["outcome"])
}
