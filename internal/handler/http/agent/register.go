package agent

import (
	"net/http"

	agentUC "truthlens/internal/usecase/agent"
)

// Agents are the use cases served by Register.
type Agents struct {
	Router  *agentUC.Router
	News    *agentUC.NewsFetchAgent
	Truth   *agentUC.TruthVerificationAgent
	Summary *agentUC.SummaryAgent
	Impact  *agentUC.ImpactAgent
	Media   *agentUC.MediaForensicsAgent
	Map     *agentUC.MapIntelligenceAgent
	Metals  *agentUC.MetalPricesAgent
}

// Register mounts the agent routes on mux. limit wraps every route that
// reaches a paid upstream API; pass nil to serve them unlimited.
func Register(mux *http.ServeMux, a Agents, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}

	mux.Handle("POST /agent/ask", limit(Handler[agentUC.AskRequest, *agentUC.AskResponse]{
		Name: "router", Run: a.Router.Ask,
	}))
	mux.Handle("POST /agents/news_fetch", limit(Handler[agentUC.NewsRequest, *agentUC.NewsResponse]{
		Name: "news_fetch", Run: a.News.Fetch,
	}))
	mux.Handle("POST /agents/truth_verification", limit(Handler[agentUC.VerificationRequest, *agentUC.VerificationResult]{
		Name: "truth_verification", Run: a.Truth.Verify,
	}))
	mux.Handle("POST /agents/summary", limit(Handler[agentUC.SummaryRequest, *agentUC.SummaryResult]{
		Name: "summary", Run: a.Summary.Summarize,
	}))
	mux.Handle("POST /agents/impact", limit(Handler[agentUC.ImpactRequest, *agentUC.ImpactResult]{
		Name: "impact", Run: a.Impact.Assess,
	}))
	mux.Handle("POST /agents/media_forensics", limit(Handler[agentUC.MediaRequest, *agentUC.MediaResult]{
		Name: "media_forensics", Run: a.Media.Inspect,
	}))
	mux.Handle("POST /agents/map_intelligence", limit(Handler[agentUC.MapRequest, *agentUC.MapResult]{
		Name: "map_intelligence", Run: a.Map.Locate,
	}))
	mux.Handle("GET /agents/metal_prices", QueryHandler[*agentUC.MetalPrices]{
		Name: "metal_prices", Run: a.Metals.Prices,
	})
}
