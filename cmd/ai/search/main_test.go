package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"truthlens/internal/domain/entity"
	"truthlens/internal/usecase/agent"
)

func TestOutputText(t *testing.T) {
	tests := []struct {
		name     string
		resp     *agent.NewsResponse
		contains []string
		absent   []string
	}{
		{
			name: "trending sample data",
			resp: &agent.NewsResponse{
				Mode: agent.ModeTrending, Category: "technology", Source: "mock", Total: 1, Mock: true,
				Articles: []entity.Article{{Title: "Chip launch", SourceName: "Tech Daily"}},
			},
			contains: []string{"Trending: technology", "1 articles (sample data)", "1. Chip launch", "   Tech Daily"},
			absent:   []string{"URL:"},
		},
		{
			name: "search",
			resp: &agent.NewsResponse{
				Mode: agent.ModeSearch, Query: "mars water", Source: "google_news", Total: 1,
				Articles: []entity.Article{{Title: "Water on Mars", URL: "https://reuters.com/mars"}},
			},
			contains: []string{"Search: mars water", "URL: https://reuters.com/mars"},
			absent:   []string{"sample data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			outputText(&buf, tt.resp)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
