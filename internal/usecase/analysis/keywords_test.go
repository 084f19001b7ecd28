package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"truthlens/internal/usecase/ai"
)

func TestFallbackKeywords(t *testing.T) {
	tests := []struct {
		name     string
		headline string
		want     []string
	}{
		{
			name:     "capitalized and long words",
			headline: "Scientists discover water on Mars",
			want:     []string{"Scientists", "discover", "water", "Mars"},
		},
		{
			name:     "stop words dropped",
			headline: "This would have been about Paris",
			want:     []string{"Paris"},
		},
		{
			name:     "case-insensitive dedupe keeps first spelling",
			headline: "Tesla recalls tesla cars, TESLA says",
			want:     []string{"Tesla", "recalls", "cars", "says"},
		},
		{
			name:     "at most five",
			headline: "Alpha Bravo Charlie Delta Echo Foxtrot Golf",
			want:     []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"},
		},
		{
			name:     "accented words",
			headline: "Über café résumé naïve",
			want:     []string{"Über", "café", "résumé", "naïve"},
		},
		{
			name:     "short capitalized non-ascii word",
			headline: "Ås council bans cars",
			want:     []string{"Ås", "council", "bans", "cars"},
		},
		{
			name:     "nothing extractable returns headline",
			headline: "it is so",
			want:     []string{"it is so"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackKeywords(tt.headline))
		})
	}
}

func TestKeywordExtractor_Extract(t *testing.T) {
	tests := []struct {
		name         string
		llm          Completer
		headline     string
		want         []string
		wantFallback bool
	}{
		{
			name:     "LLM reply split on commas",
			llm:      &fakeLLM{replies: map[string]string{keywordFragment: ` "Mars", water , NASA,`}},
			headline: "NASA finds water on Mars",
			want:     []string{"Mars", "water", "NASA"},
		},
		{
			name:     "LLM reply capped at five",
			llm:      &fakeLLM{replies: map[string]string{keywordFragment: "a,b,c,d,e,f,g"}},
			headline: "Anything goes here",
			want:     []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "LLM error falls back",
			llm: &fakeLLM{completeFn: func(context.Context, string) (string, error) {
				return "", errors.New("timeout")
			}},
			headline:     "NASA finds water on Mars",
			want:         []string{"NASA", "finds", "water", "Mars"},
			wantFallback: true,
		},
		{
			name:         "empty LLM reply falls back",
			llm:          &fakeLLM{replies: map[string]string{keywordFragment: " , "}},
			headline:     "Volcano erupts",
			want:         []string{"Volcano", "erupts"},
			wantFallback: true,
		},
		{
			name:         "nil LLM",
			headline:     "Volcano erupts",
			want:         []string{"Volcano", "erupts"},
			wantFallback: true,
		},
		{
			name:         "disabled service",
			llm:          ai.NewService(nil, true),
			headline:     "Volcano erupts",
			want:         []string{"Volcano", "erupts"},
			wantFallback: true,
		},
		{
			name:     "empty headline",
			llm:      &fakeLLM{},
			headline: "",
			want:     []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fellBack := NewKeywordExtractor(tt.llm).Extract(context.Background(), tt.headline)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFallback, fellBack)
			assert.NotEmpty(t, got)
		})
	}
}

func TestKeywordExtractor_EmptyHeadlineSkipsLLM(t *testing.T) {
	llm := &fakeLLM{}
	NewKeywordExtractor(llm).Extract(context.Background(), "   ")
	assert.Zero(t, llm.calls())
}
