package agent

import (
	"context"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/factcheck"
	"truthlens/internal/infra/fetcher"
	"truthlens/internal/infra/metals"
	"truthlens/internal/infra/newsfeed"
	"truthlens/internal/infra/search"
	"truthlens/internal/usecase/ai"
)

// LLM is the model capability agents use. *ai.Service satisfies it.
type LLM interface {
	Enabled() bool
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithTools(ctx context.Context, prompt string, set *ai.ToolSet) (string, error)
	DescribeImage(ctx context.Context, img ai.Image, prompt string) (string, error)
	Analyze(ctx context.Context, text string, task ai.Task, set *ai.ToolSet) (string, error)
}

// NewsSearcher runs a free-text news search.
type NewsSearcher interface {
	SearchNews(ctx context.Context, query string, limit int) ([]entity.Article, error)
}

// HeadlineSource lists trending headlines by category.
type HeadlineSource interface {
	Configured() bool
	TopHeadlines(ctx context.Context, category string, limit int) (newsfeed.Headlines, error)
}

// WebSearcher is a general web search.
type WebSearcher interface {
	Configured() bool
	Search(ctx context.Context, query string, num int) ([]search.Result, error)
}

// FactChecker looks up published fact checks for a claim.
type FactChecker interface {
	Configured() bool
	Search(ctx context.Context, query string) ([]factcheck.Claim, error)
}

// Geocoder names the area around a coordinate. It never fails.
type Geocoder interface {
	AreaName(ctx context.Context, lat, lon float64) string
}

// MetalQuoter returns the latest metal rates against a base currency.
type MetalQuoter interface {
	Configured() bool
	Latest(ctx context.Context, base string, symbols ...string) (metals.Rates, error)
}

// PageFetcher extracts readable text from an article page.
type PageFetcher interface {
	FetchArticle(ctx context.Context, rawURL string) (*fetcher.Article, error)
}

// ImageLoader downloads raw bytes. *apiclient.Client satisfies it.
type ImageLoader interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// llmEnabled reports whether llm is set and switched on.
func llmEnabled(llm LLM) bool {
	return llm != nil && llm.Enabled()
}
