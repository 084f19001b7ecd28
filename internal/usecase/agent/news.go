package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/cache"
	"truthlens/internal/infra/fetcher"
	"truthlens/internal/infra/newsfeed"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
)

// News fetch modes.
const (
	ModeTrending = "trending"
	ModeSearch   = "search"
	ModeURL      = "url"
)

// Data sources reported in NewsResponse.Source.
const (
	SourceNewsAPI    = "newsapi"
	SourceMock       = "mock"
	SourceGoogleNews = "google_news_rss"
	SourceArticle    = "article_fetch"
)

const (
	defaultNewsLimit = 20
	maxNewsLimit     = 100

	// DefaultTrendingTTL is how long a trending page is served from cache.
	DefaultTrendingTTL = 5 * time.Minute
)

// NewsRequest selects one of the three fetch modes. With Mode empty, URL
// wins over Query, and Query over trending.
type NewsRequest struct {
	Mode     string `json:"mode"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
	Query    string `json:"query"`
	URL      string `json:"url"`
}

// NewsResponse is the news fetch agent's answer.
type NewsResponse struct {
	Mode     string           `json:"mode"`
	Articles []entity.Article `json:"articles"`
	Total    int              `json:"total"`
	Category string           `json:"category,omitempty"`
	Query    string           `json:"query,omitempty"`
	Source   string           `json:"source"`
	Mock     bool             `json:"mock,omitempty"`
	Article  *fetcher.Article `json:"article,omitempty"`
}

// TrendingPage is the cached form of a trending listing.
type TrendingPage struct {
	Articles []entity.Article `json:"articles"`
	Total    int              `json:"total"`
}

// NewsFetchAgent serves trending headlines, news search and single article
// extraction.
type NewsFetchAgent struct {
	headlines HeadlineSource
	search    NewsSearcher
	pages     PageFetcher
	memo      *cache.Memoizer
	ttl       time.Duration
	now       func() time.Time
}

// NewNewsFetchAgent wires the agent. memo may be cache.Disabled(); a zero
// ttl uses DefaultTrendingTTL.
func NewNewsFetchAgent(headlines HeadlineSource, search NewsSearcher, pages PageFetcher, memo *cache.Memoizer, ttl time.Duration) *NewsFetchAgent {
	if memo == nil {
		memo = cache.Disabled()
	}
	if ttl <= 0 {
		ttl = DefaultTrendingTTL
	}
	return &NewsFetchAgent{
		headlines: headlines,
		search:    search,
		pages:     pages,
		memo:      memo,
		ttl:       ttl,
		now:       time.Now,
	}
}

// TrendingKey is the cache key of a trending page.
func TrendingKey(category string, limit int) string {
	return fmt.Sprintf("trending_%s_%d", category, limit)
}

// Fetch dispatches req to its mode.
func (a *NewsFetchAgent) Fetch(ctx context.Context, req NewsRequest) (resp *NewsResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "agent.news_fetch")
	defer span.End()
	defer func() {
		metrics.RecordAgentRequest("news_fetch", err == nil)
		tracing.RecordError(span, err)
	}()

	mode, err := resolveMode(req)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(req.Limit)

	switch mode {
	case ModeURL:
		return a.fetchURL(ctx, req.URL)
	case ModeSearch:
		return a.searchNews(ctx, req.Query, limit)
	default:
		return a.Trending(ctx, req.Category, limit)
	}
}

// Trending returns top headlines for category, cached per category and limit.
// Without a configured headline source, or when it fails, demo headlines are
// returned and nothing is cached.
func (a *NewsFetchAgent) Trending(ctx context.Context, category string, limit int) (*NewsResponse, error) {
	logger := logging.FromContext(ctx)
	category = normalizeCategory(category)
	limit = clampLimit(limit)

	if a.headlines == nil || !a.headlines.Configured() {
		logger.Warn("no headline source configured, serving mock headlines")
		return a.mockTrending(category, limit), nil
	}

	page, err := cache.Memoize(ctx, a.memo, TrendingKey(category, limit), a.ttl, func(ctx context.Context) (TrendingPage, error) {
		return a.loadTrending(ctx, category, limit)
	})
	if err != nil {
		logger.Warn("trending headlines unavailable, serving mock headlines",
			"category", category,
			"error", err)
		return a.mockTrending(category, limit), nil
	}

	return &NewsResponse{
		Mode:     ModeTrending,
		Articles: page.Articles,
		Total:    page.Total,
		Category: category,
		Source:   SourceNewsAPI,
	}, nil
}

// WarmTrending refreshes the cached trending page for category and limit.
func (a *NewsFetchAgent) WarmTrending(ctx context.Context, category string, limit int) error {
	if a.headlines == nil || !a.headlines.Configured() {
		return fmt.Errorf("warm %s: headline source not configured", TrendingKey(category, limit))
	}
	category = normalizeCategory(category)
	limit = clampLimit(limit)
	return cache.Warm(ctx, a.memo, TrendingKey(category, limit), a.ttl, func(ctx context.Context) (TrendingPage, error) {
		return a.loadTrending(ctx, category, limit)
	})
}

func (a *NewsFetchAgent) loadTrending(ctx context.Context, category string, limit int) (TrendingPage, error) {
	h, err := a.headlines.TopHeadlines(ctx, category, limit)
	if err != nil {
		return TrendingPage{}, fmt.Errorf("top headlines: %w", err)
	}
	return TrendingPage{Articles: h.Articles, Total: h.Total}, nil
}

func (a *NewsFetchAgent) searchNews(ctx context.Context, query string, limit int) (*NewsResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if a.search == nil {
		return nil, fmt.Errorf("news search: %w", entity.ErrNotConfigured)
	}

	articles, err := a.search.SearchNews(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	if articles == nil {
		articles = []entity.Article{}
	}

	return &NewsResponse{
		Mode:     ModeSearch,
		Articles: articles,
		Total:    len(articles),
		Query:    query,
		Source:   SourceGoogleNews,
	}, nil
}

func (a *NewsFetchAgent) fetchURL(ctx context.Context, rawURL string) (*NewsResponse, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrMissingURL
	}
	if a.pages == nil {
		return nil, fmt.Errorf("article fetch: %w", entity.ErrNotConfigured)
	}

	page, err := a.pages.FetchArticle(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("article fetch: %w", err)
	}

	return &NewsResponse{
		Mode:     ModeURL,
		Articles: []entity.Article{},
		Total:    1,
		Source:   SourceArticle,
		Article:  page,
	}, nil
}

func (a *NewsFetchAgent) mockTrending(category string, limit int) *NewsResponse {
	now := a.now().UTC()
	at := func(ago time.Duration) *time.Time {
		t := now.Add(-ago)
		return &t
	}

	all := []entity.Article{
		{
			Title:       "AI Breakthrough in Medical Diagnosis",
			Description: "New AI system achieves 95% accuracy in early cancer detection",
			URL:         "https://example.com/ai-medical",
			PublishedAt: at(0),
			SourceName:  "Tech Health",
		},
		{
			Title:       "Climate Summit Reaches Historic Agreement",
			Description: "World leaders commit to ambitious carbon reduction targets",
			URL:         "https://example.com/climate",
			PublishedAt: at(2 * time.Hour),
			SourceName:  "Global News",
		},
		{
			Title:       "Space Mission Discovers New Exoplanet",
			Description: "Potentially habitable planet found 100 light-years away",
			URL:         "https://example.com/space",
			PublishedAt: at(5 * time.Hour),
			SourceName:  "Space Today",
		},
	}

	return &NewsResponse{
		Mode:     ModeTrending,
		Articles: all[:min(limit, len(all))],
		Total:    len(all),
		Category: category,
		Source:   SourceMock,
		Mock:     true,
	}
}

func resolveMode(req NewsRequest) (string, error) {
	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case ModeTrending:
		return ModeTrending, nil
	case ModeSearch:
		return ModeSearch, nil
	case ModeURL:
		return ModeURL, nil
	case "":
	default:
		return "", ErrInvalidMode
	}

	switch {
	case strings.TrimSpace(req.URL) != "":
		return ModeURL, nil
	case strings.TrimSpace(req.Query) != "":
		return ModeSearch, nil
	default:
		return ModeTrending, nil
	}
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultNewsLimit
	}
	return min(n, maxNewsLimit)
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return newsfeed.CategoryAll
	}
	return c
}
