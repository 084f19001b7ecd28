package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/infra/fetcher"
)

const marsText = "Scientists found liquid water under the Martian ice cap. The lake is about twenty kilometres wide! " +
	"Is it habitable? Nobody knows yet. Follow-up missions are planned."

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "mixed terminators",
			text: marsText,
			want: []string{
				"Scientists found liquid water under the Martian ice cap.",
				"The lake is about twenty kilometres wide!",
				"Is it habitable?",
				"Nobody knows yet.",
				"Follow-up missions are planned.",
			},
		},
		{name: "no terminator", text: "just a fragment", want: []string{"just a fragment"}},
		{name: "decimal is not a break", text: "Rates rose 0.25 points. Markets fell.", want: []string{"Rates rose 0.25 points.", "Markets fell."}},
		{name: "empty", text: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestExtractiveSummary(t *testing.T) {
	got := ExtractiveSummary(marsText)

	assert.Equal(t, "Scientists found liquid water under the Martian ice cap. The lake is about twenty kilometres wide! Is it habitable?", got.Summary)
	assert.Len(t, got.KeyPoints, 3)
	assert.Contains(t, got.Topics, "Scientists")
	assert.Equal(t, SentimentNeutral, got.Sentiment)
	assert.Equal(t, MethodRuleBased, got.Method)
	assert.Equal(t, len(strings.Fields(marsText)), got.WordCount)
}

func TestExtractiveSummary_LongSentenceTruncated(t *testing.T) {
	got := ExtractiveSummary(strings.Repeat("word ", 200) + ".")
	assert.True(t, strings.HasSuffix(got.Summary, "..."))
	assert.LessOrEqual(t, len([]rune(got.Summary)), maxFallbackSummary+3)
}

func TestSummaryAgent_AI(t *testing.T) {
	llm := &fakeLLM{reply: `SUMMARY: Radar data suggests a subsurface lake on Mars.
KEY_POINTS:
- Lake is twenty kilometres wide
- Kept liquid by salts
TOPICS: Mars, water, radar
SENTIMENT: positive`}

	got, err := NewSummaryAgent(llm, nil, nil).Summarize(context.Background(), SummaryRequest{Text: marsText, Title: "Mars"})
	require.NoError(t, err)

	assert.Equal(t, "Radar data suggests a subsurface lake on Mars.", got.Summary)
	assert.Equal(t, []string{"Lake is twenty kilometres wide", "Kept liquid by salts"}, got.KeyPoints)
	assert.Equal(t, []string{"Mars", "water", "radar"}, got.Topics)
	assert.Equal(t, SentimentPositive, got.Sentiment)
	assert.Equal(t, MethodAI, got.Method)
	assert.Equal(t, "Mars", got.Title)
}

func TestSummaryAgent_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		llm  LLM
	}{
		{name: "llm error", llm: &fakeLLM{err: errUpstream}},
		{name: "no summary line", llm: &fakeLLM{reply: "Here you go."}},
		{name: "disabled", llm: &fakeLLM{disabled: true}},
		{name: "nil", llm: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSummaryAgent(tt.llm, nil, nil).Summarize(context.Background(), SummaryRequest{Text: marsText})
			require.NoError(t, err)
			assert.Equal(t, MethodRuleBased, got.Method)
			assert.Equal(t, ExtractiveSummary(marsText).Summary, got.Summary)
		})
	}
}

func TestSummaryAgent_URL(t *testing.T) {
	pages := &fakePages{article: &fetcher.Article{Title: "Water on Mars", Content: marsText}}

	got, err := NewSummaryAgent(nil, pages, nil).Summarize(context.Background(), SummaryRequest{URL: "https://news.org/mars"})
	require.NoError(t, err)

	assert.Equal(t, "https://news.org/mars", pages.lastURL)
	assert.Equal(t, "Water on Mars", got.Title)
	assert.Equal(t, "https://news.org/mars", got.URL)
	assert.Contains(t, got.Summary, "liquid water")
}

func TestSummaryAgent_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewSummaryAgent(nil, nil, nil).Summarize(context.Background(), SummaryRequest{})
		assert.True(t, errors.Is(err, ErrEmptyText))
	})

	t.Run("fetch rejected", func(t *testing.T) {
		pages := &fakePages{err: fetcher.ErrPrivateIP}
		_, err := NewSummaryAgent(nil, pages, nil).Summarize(context.Background(), SummaryRequest{URL: "http://10.0.0.1"})
		assert.True(t, errors.Is(err, fetcher.ErrPrivateIP))
		assert.True(t, IsInputError(err))
	})

	t.Run("fetch failed", func(t *testing.T) {
		pages := &fakePages{err: fetcher.ErrTimeout}
		_, err := NewSummaryAgent(nil, pages, nil).Summarize(context.Background(), SummaryRequest{URL: "https://slow.org"})
		require.Error(t, err)
		assert.False(t, IsInputError(err))
	})
}
