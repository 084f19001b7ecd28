package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"truthlens/internal/usecase/ai"
)

// Tool names offered to the model.
const (
	ToolGoogleSearch = "google_search"
	ToolFactCheck    = "fact_check"
)

const toolSearchResults = 5

var (
	googleSearchTool = ai.Tool{
		Name:        ToolGoogleSearch,
		Description: "Search Google for current information, news, and facts. Use this to verify claims or find recent information.",
		Parameters: []ai.ToolParam{
			{Name: "query", Description: "The search query", Required: true},
		},
	}

	factCheckTool = ai.Tool{
		Name:        ToolFactCheck,
		Description: "Check if a claim has been fact-checked by professional fact-checkers.",
		Parameters: []ai.ToolParam{
			{Name: "claim", Description: "The claim to fact-check", Required: true},
		},
	}
)

// NewToolSet registers the tools whose backing clients are configured.
// Either argument may be nil.
func NewToolSet(web WebSearcher, facts FactChecker) *ai.ToolSet {
	set := ai.NewToolSet()

	if web != nil && web.Configured() {
		set.Register(googleSearchTool, func(ctx context.Context, args map[string]string) (string, error) {
			results, err := web.Search(ctx, args["query"], toolSearchResults)
			if err != nil {
				return "", fmt.Errorf("google search: %w", err)
			}
			return toolJSON(map[string]any{"results": results, "total": len(results)})
		})
	}

	if facts != nil && facts.Configured() {
		set.Register(factCheckTool, func(ctx context.Context, args map[string]string) (string, error) {
			claims, err := facts.Search(ctx, args["claim"])
			if err != nil {
				return "", fmt.Errorf("fact check: %w", err)
			}
			return toolJSON(map[string]any{"fact_checks": claims, "found": len(claims) > 0})
		})
	}

	return set
}

func toolJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
