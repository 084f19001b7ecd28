// Package app builds the collaborators and agents shared by the API server
// and the command-line tools.
package app

import (
	"log/slog"
	"time"

	"truthlens/internal/config"
	"truthlens/internal/infra/apiclient"
	"truthlens/internal/infra/cache"
	"truthlens/internal/infra/factcheck"
	"truthlens/internal/infra/fetcher"
	"truthlens/internal/infra/geocode"
	"truthlens/internal/infra/llm"
	"truthlens/internal/infra/metals"
	"truthlens/internal/infra/newsfeed"
	"truthlens/internal/infra/search"
	"truthlens/internal/usecase/agent"
	"truthlens/internal/usecase/ai"
)

// MetalBase is the currency metal prices are quoted in.
const MetalBase = "USD"

// Collaborators are the external API clients. Clients without credentials
// are still built; their calls fail with apiclient.ErrNotConfigured and the
// agents fall back.
type Collaborators struct {
	Feed      *newsfeed.GoogleNews
	Headlines *newsfeed.NewsAPI
	Web       *search.Google
	Facts     *factcheck.Client
	Geocoder  *geocode.Nominatim
	Quotes    *metals.Client
	Pages     *fetcher.ReadabilityFetcher
	Images    *apiclient.Client
}

// NewCollaborators builds every client from cfg.
func NewCollaborators(cfg config.APIConfig) *Collaborators {
	opts := func(name string) apiclient.Options {
		return apiclient.Options{Name: name, Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent}
	}
	return &Collaborators{
		Feed:      newsfeed.NewGoogleNews(cfg.NewsFeedURL, opts("news-feed")),
		Headlines: newsfeed.NewNewsAPI(cfg.NewsAPIKey, "", opts("newsapi")),
		Web:       search.NewGoogle(cfg.GoogleSearchKey, cfg.GoogleSearchCX, "", opts("google-search")),
		Facts:     factcheck.NewClient(cfg.FactCheckKey, "", opts("fact-check")),
		Geocoder:  geocode.NewNominatim(cfg.NominatimURL, opts("geocode")),
		Quotes:    metals.NewClient(cfg.MetalPriceKey, "", opts("metal-prices")),
		Pages:     fetcher.NewReadabilityFetcher(fetcher.LoadConfigFromEnv()),
		Images:    apiclient.New(opts("media")),
	}
}

// Configured reports which credentialed collaborators are usable.
func (c *Collaborators) Configured() map[string]bool {
	return map[string]bool{
		"newsapi":       c.Headlines.Configured(),
		"google_search": c.Web.Configured(),
		"fact_check":    c.Facts.Configured(),
		"metal_prices":  c.Quotes.Configured(),
	}
}

// NewLLM selects the provider named in cfg. A missing key is logged and
// the service is disabled, so every stage uses its rule-based fallback.
func NewLLM(logger *slog.Logger, cfg *config.AppConfig) *ai.Service {
	provider, ok := llm.NewProvider(cfg.AI.Provider, cfg.AI.ClaudeAPIKey, cfg.AI.OpenAIAPIKey)
	if !ok && cfg.LLMEnabled() {
		logger.Warn("LLM provider has no API key, using rule-based fallbacks",
			slog.String("provider", cfg.AI.Provider))
	}
	svc := ai.NewService(provider, cfg.LLMEnabled() && ok)
	logger.Info("LLM provider selected",
		slog.String("provider", svc.ProviderName()),
		slog.Bool("enabled", svc.Enabled()))
	return svc
}

// Agents is every agent the API exposes.
type Agents struct {
	Router  *agent.Router
	News    *agent.NewsFetchAgent
	Truth   *agent.TruthVerificationAgent
	Summary *agent.SummaryAgent
	Impact  *agent.ImpactAgent
	Media   *agent.MediaForensicsAgent
	Map     *agent.MapIntelligenceAgent
	Metals  *agent.MetalPricesAgent
}

// NewAgents wires the agents onto svc and c. memo caches trending listings
// and metal prices for ttl.
func NewAgents(svc *ai.Service, c *Collaborators, memo *cache.Memoizer, ttl time.Duration) *Agents {
	tools := agent.NewToolSet(c.Web, c.Facts)
	truth := agent.NewTruthVerificationAgent(svc, tools)
	summary := agent.NewSummaryAgent(svc, c.Pages, tools)
	media := agent.NewMediaForensicsAgent(svc, c.Images)
	mapper := agent.NewMapIntelligenceAgent(c.Geocoder, c.Feed, c.Web)

	return &Agents{
		Router: agent.NewRouter(agent.RouterDeps{
			LLM:     svc,
			Tools:   tools,
			Web:     c.Web,
			News:    c.Feed,
			Truth:   truth,
			Summary: summary,
			Map:     mapper,
			Media:   media,
		}),
		News:    agent.NewNewsFetchAgent(c.Headlines, c.Feed, c.Pages, memo, ttl),
		Truth:   truth,
		Summary: summary,
		Impact:  agent.NewImpactAgent(svc),
		Media:   media,
		Map:     mapper,
		Metals:  agent.NewMetalPricesAgent(c.Quotes, memo, MetalBase),
	}
}
