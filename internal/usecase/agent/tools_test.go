package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/infra/factcheck"
	"truthlens/internal/infra/search"
	"truthlens/internal/usecase/ai"
)

func toolNames(set *ai.ToolSet) []string {
	var names []string
	for _, tool := range set.Tools() {
		names = append(names, tool.Name)
	}
	return names
}

func TestNewToolSet_OnlyConfigured(t *testing.T) {
	tests := []struct {
		name  string
		web   WebSearcher
		facts FactChecker
		want  []string
	}{
		{name: "none", want: nil},
		{name: "unconfigured clients", web: &fakeWeb{}, facts: &fakeFacts{}, want: nil},
		{name: "web only", web: &fakeWeb{configured: true}, want: []string{ToolGoogleSearch}},
		{name: "both", web: &fakeWeb{configured: true}, facts: &fakeFacts{configured: true}, want: []string{ToolGoogleSearch, ToolFactCheck}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toolNames(NewToolSet(tt.web, tt.facts)))
		})
	}
}

func TestNewToolSet_Execute(t *testing.T) {
	web := &fakeWeb{configured: true, results: []search.Result{{Title: "NASA", Link: "https://nasa.gov", Snippet: "ice"}}}
	facts := &fakeFacts{configured: true, claims: []factcheck.Claim{{Text: "Moon is cheese", Rating: "False", Publisher: "AFP"}}}
	set := NewToolSet(web, facts)

	out, err := set.Execute(context.Background(), ai.ToolCall{Name: ToolGoogleSearch, Args: map[string]string{"query": "mars ice"}})
	require.NoError(t, err)
	var searchOut struct {
		Results []search.Result `json:"results"`
		Total   int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &searchOut))
	assert.Equal(t, 1, searchOut.Total)
	assert.Equal(t, []string{"mars ice"}, web.queries)

	out, err = set.Execute(context.Background(), ai.ToolCall{Name: ToolFactCheck, Args: map[string]string{"claim": "moon cheese"}})
	require.NoError(t, err)
	var factOut struct {
		FactChecks []factcheck.Claim `json:"fact_checks"`
		Found      bool              `json:"found"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &factOut))
	assert.True(t, factOut.Found)
	assert.Equal(t, "AFP", factOut.FactChecks[0].Publisher)

	_, err = set.Execute(context.Background(), ai.ToolCall{Name: ToolGoogleSearch, Args: map[string]string{}})
	assert.Error(t, err)
}
