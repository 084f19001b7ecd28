package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/search"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
	"truthlens/internal/usecase/ai"
)

// QueryType is the router's classification of a free-text query.
type QueryType string

const (
	QuerySearch  QueryType = "search"
	QueryVerify  QueryType = "verify"
	QuerySummary QueryType = "summary"
	QueryMap     QueryType = "map"
	QueryMedia   QueryType = "media"
	QueryGeneral QueryType = "general"
)

const routerSearchResults = 5

// queryRules are checked in order; the first rule with a matching substring wins.
var queryRules = []struct {
	kind     QueryType
	keywords []string
}{
	{QuerySearch, []string{"search", "find", "look for", "current"}},
	{QueryVerify, []string{"verify", "true", "fake", "check", "authentic"}},
	{QuerySummary, []string{"summarize", "summary", "explain"}},
	{QueryMap, []string{"where", "location", "map", "area"}},
	{QueryMedia, []string{"image", "photo", "video", "media"}},
}

// ClassifyQuery maps a query to the agent that should answer it.
func ClassifyQuery(query string) QueryType {
	lower := strings.ToLower(query)
	for _, rule := range queryRules {
		if containsAny(lower, rule.keywords...) {
			return rule.kind
		}
	}
	return QueryGeneral
}

// AskRequest is a free-text query with optional location and media context.
type AskRequest struct {
	Query     string   `json:"query"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
}

// AskResponse reports which agent answered and its result.
type AskResponse struct {
	Query     string    `json:"query"`
	QueryType QueryType `json:"query_type"`
	Agent     string    `json:"agent"`
	Result    any       `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchAnswer is the router's answer to search-like queries.
type SearchAnswer struct {
	Results  []search.Result  `json:"results,omitempty"`
	Articles []entity.Article `json:"articles,omitempty"`
	Total    int              `json:"total"`
	Source   string           `json:"source"`
}

// GeneralAnswer is a free-form model analysis.
type GeneralAnswer struct {
	Analysis string `json:"analysis"`
	Method   string `json:"method"`
}

// Router dispatches free-text queries to the specialized agents.
type Router struct {
	llm    LLM
	tools  *ai.ToolSet
	web    WebSearcher
	news   NewsSearcher
	truth  *TruthVerificationAgent
	sum    *SummaryAgent
	mapper *MapIntelligenceAgent
	media  *MediaForensicsAgent
	now    func() time.Time
}

// RouterDeps lists the router's collaborators. Nil agents make their query
// types fall back to search.
type RouterDeps struct {
	LLM     LLM
	Tools   *ai.ToolSet
	Web     WebSearcher
	News    NewsSearcher
	Truth   *TruthVerificationAgent
	Summary *SummaryAgent
	Map     *MapIntelligenceAgent
	Media   *MediaForensicsAgent
}

// NewRouter creates a Router.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		llm:    deps.LLM,
		tools:  deps.Tools,
		web:    deps.Web,
		news:   deps.News,
		truth:  deps.Truth,
		sum:    deps.Summary,
		mapper: deps.Map,
		media:  deps.Media,
		now:    time.Now,
	}
}

// Ask classifies req.Query and runs the matching agent. Map queries without
// coordinates and media queries without an image are answered by search.
func (r *Router) Ask(ctx context.Context, req AskRequest) (resp *AskResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "agent.router")
	defer span.End()
	defer func() {
		metrics.RecordAgentRequest("router", err == nil)
		tracing.RecordError(span, err)
	}()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	kind := ClassifyQuery(query)
	logging.FromContext(ctx).Info("routing query", "query_type", string(kind))

	agent, result, err := r.route(ctx, kind, query, req)
	if err != nil {
		return nil, err
	}

	return &AskResponse{
		Query:     query,
		QueryType: kind,
		Agent:     agent,
		Result:    result,
		Timestamp: r.now().UTC(),
	}, nil
}

func (r *Router) route(ctx context.Context, kind QueryType, query string, req AskRequest) (string, any, error) {
	switch kind {
	case QueryVerify:
		if r.truth != nil {
			res, err := r.truth.Verify(ctx, VerificationRequest{Text: query, ArticleID: "root_query"})
			return "truth_verification", res, err
		}
	case QuerySummary:
		if r.sum != nil {
			res, err := r.sum.Summarize(ctx, SummaryRequest{Text: query, Title: "User Query Summary"})
			return "summary", res, err
		}
	case QueryMap:
		if r.mapper != nil && req.Latitude != nil && req.Longitude != nil {
			res, err := r.mapper.Locate(ctx, MapRequest{Latitude: *req.Latitude, Longitude: *req.Longitude})
			return "map_intelligence", res, err
		}
	case QueryMedia:
		if r.media != nil && req.ImageURL != "" {
			res, err := r.media.Inspect(ctx, MediaRequest{MediaURL: req.ImageURL, Text: query})
			return "media_forensics", res, err
		}
	case QueryGeneral:
		if llmEnabled(r.llm) {
			analysis, err := r.llm.Analyze(ctx, query, ai.TaskGeneral, r.tools)
			if err == nil {
				return "general", &GeneralAnswer{Analysis: analysis, Method: MethodAI}, nil
			}
			logging.FromContext(ctx).Warn("general analysis failed, answering with search", "error", err)
			metrics.RecordLLMFallback("router")
		}
	}

	res, err := r.search(ctx, query)
	return "search", res, err
}

// search prefers the web search and falls back to the news feed.
func (r *Router) search(ctx context.Context, query string) (*SearchAnswer, error) {
	if r.web != nil && r.web.Configured() {
		results, err := r.web.Search(ctx, query, routerSearchResults)
		if err == nil {
			return &SearchAnswer{Results: results, Total: len(results), Source: "google_search"}, nil
		}
		logging.FromContext(ctx).Warn("web search failed, trying news search", "error", err)
	}

	if r.news == nil {
		return nil, fmt.Errorf("search: %w", entity.ErrNotConfigured)
	}
	articles, err := r.news.SearchNews(ctx, query, routerSearchResults)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &SearchAnswer{Articles: articles, Total: len(articles), Source: SourceGoogleNews}, nil
}
