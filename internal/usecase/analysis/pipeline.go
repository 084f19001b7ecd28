package analysis

import (
	"cmp"
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"truthlens/internal/domain/entity"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
)

// Pipeline runs the deep analysis of one headline. It holds no per-request
// state; concurrent Analyze calls are independent.
type Pipeline struct {
	cfg        Config
	search     NewsSearcher
	keywords   *KeywordExtractor
	absurdity  *AbsurdityDetector
	scorer     *Scorer
	summarizer *Summarizer
}

// NewPipeline wires the stages. llm may be nil (every LLM stage falls back);
// search may be nil (every run finds zero candidates).
func NewPipeline(llm Completer, search NewsSearcher, cfg Config) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		search:     search,
		keywords:   NewKeywordExtractor(llm),
		absurdity:  NewAbsurdityDetector(llm),
		scorer:     NewScorer(cfg.Scoring),
		summarizer: NewSummarizer(llm),
	}
}

// Analyze never returns an error: input problems, upstream failures and
// panics all come back as a result whose Outcome says what happened.
func (p *Pipeline) Analyze(ctx context.Context, headline string) (result entity.AnalysisResult) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "analysis.Analyze",
		attribute.Int("headline.length", len(headline)))
	logger := logging.ForComponent(logging.FromContext(ctx), "analysis")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("analysis panicked",
				"panic", r,
				"stack", string(debug.Stack()))
			result = failedResult(headline, fmt.Sprintf("analysis failed: %v", r))
		}
		if result.Failed() {
			tracing.RecordError(span, fmt.Errorf("%s", result.Error))
		}
		span.SetAttributes(
			attribute.String("analysis.outcome", string(result.Outcome)),
			attribute.Int("analysis.score", result.VerificationScore))
		span.End()
		metrics.RecordAnalysis(string(result.Outcome), result.VerificationScore, time.Since(start))
	}()

	headline = strings.TrimSpace(headline)
	if headline == "" {
		return failedResult(headline, "No headline provided")
	}

	logger.Info("deep analysis started", "headline", headline)

	// absurdity pre-check: no search when the claim is clearly fabricated
	check, absurdityRan := p.checkAbsurdity(ctx, headline)
	if check.IsAbsurd {
		logger.Info("headline flagged as absurd", "reason", check.Reason)
		return absurdResult(headline, check)
	}

	keywords, keywordsFellBack := p.extractKeywords(ctx, headline)
	raw, searchErr := p.searchArticles(ctx, keywords)
	degraded := !absurdityRan || keywordsFellBack || searchErr != nil

	relevant := p.filterRelevant(ctx, headline, raw)
	if len(raw) > 0 && len(relevant) == 0 {
		logger.Info("no relevant articles", "candidates", len(raw))
		return noRelevantResult(headline, keywords, len(raw))
	}

	score := p.scorer.Score(relevant)
	sortArticles(relevant)

	synthesis, summaryFellBack := p.summarize(ctx, headline, relevant)
	degraded = degraded || summaryFellBack

	if len(relevant) > entity.MaxRelatedArticles {
		relevant = relevant[:entity.MaxRelatedArticles]
	}

	outcome := entity.OutcomeOK
	if degraded {
		outcome = entity.OutcomeDegraded
	}

	logger.Info("deep analysis completed",
		"score", score.Score,
		"verdict", score.Verdict,
		"articles", len(relevant),
		"outcome", outcome)

	return entity.AnalysisResult{
		Headline:          headline,
		Summary:           synthesis.Summary,
		Assessment:        synthesis.Assessment,
		KeyPoints:         synthesis.KeyPoints,
		VerificationScore: score.Score,
		Verdict:           score.Verdict,
		SourceAnalysis:    score,
		RelatedArticles:   relevant,
		KeywordsUsed:      keywords,
		Outcome:           outcome,
	}
}

func (p *Pipeline) checkAbsurdity(ctx context.Context, headline string) (AbsurdityCheck, bool) {
	ctx, span := tracing.StartSpan(ctx, "analysis.absurdity")
	defer span.End()

	check, ran := p.absurdity.Check(ctx, headline)
	span.SetAttributes(attribute.Bool("absurd", check.IsAbsurd), attribute.Bool("ran", ran))
	return check, ran
}

func (p *Pipeline) extractKeywords(ctx context.Context, headline string) ([]string, bool) {
	ctx, span := tracing.StartSpan(ctx, "analysis.keywords")
	defer span.End()

	keywords, fellBack := p.keywords.Extract(ctx, headline)
	span.SetAttributes(attribute.StringSlice("keywords", keywords), attribute.Bool("fallback", fellBack))
	return keywords, fellBack
}

// searchArticles queries with the top keywords, asking for twice the limit so
// ad filtering still leaves enough. A search error yields zero candidates.
func (p *Pipeline) searchArticles(ctx context.Context, keywords []string) ([]entity.Article, error) {
	n := min(p.cfg.QueryKeywords, len(keywords))
	query := strings.Join(keywords[:n], " ")

	ctx, span := tracing.StartSpan(ctx, "analysis.search", attribute.String("query", query))
	defer span.End()

	if p.search == nil {
		return nil, nil
	}

	entries, err := p.search.SearchNews(ctx, query, p.cfg.SearchLimit*2)
	if err != nil {
		tracing.RecordError(span, err)
		logging.FromContext(ctx).Warn("news search failed, continuing without sources",
			"query", query,
			"error", err)
		return nil, err
	}

	valid := make([]entity.Article, 0, len(entries))
	invalid := 0
	for _, a := range entries {
		if a.Validate() != nil {
			invalid++
			continue
		}
		valid = append(valid, a)
	}
	metrics.RecordArticlesDropped("invalid", invalid)

	kept, ads := FilterAds(valid, p.cfg.SearchLimit)
	metrics.RecordArticlesDropped("advertisement", ads)
	span.SetAttributes(attribute.Int("raw", len(entries)), attribute.Int("kept", len(kept)), attribute.Int("ads", ads))
	return kept, nil
}

func (p *Pipeline) filterRelevant(ctx context.Context, headline string, raw []entity.Article) []entity.Article {
	_, span := tracing.StartSpan(ctx, "analysis.relevance")
	defer span.End()

	relevant := FilterRelevant(headline, raw, p.cfg.MinRelevance)
	metrics.RecordArticlesDropped("irrelevant", len(raw)-len(relevant))
	span.SetAttributes(attribute.Int("candidates", len(raw)), attribute.Int("relevant", len(relevant)))
	return relevant
}

func (p *Pipeline) summarize(ctx context.Context, headline string, articles []entity.Article) (Synthesis, bool) {
	ctx, span := tracing.StartSpan(ctx, "analysis.summarize")
	defer span.End()

	out, fellBack := p.summarizer.Summarize(ctx, headline, articles)
	span.SetAttributes(attribute.Bool("fallback", fellBack))
	return out, fellBack
}

// sortArticles orders by relevance desc, then newest first, undated last.
// The sort is stable so ties keep search order.
func sortArticles(articles []entity.Article) {
	slices.SortStableFunc(articles, func(a, b entity.Article) int {
		if c := cmp.Compare(b.RelevanceScore, a.RelevanceScore); c != 0 {
			return c
		}
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return 0
		case a.PublishedAt == nil:
			return 1
		case b.PublishedAt == nil:
			return -1
		default:
			return b.PublishedAt.Compare(*a.PublishedAt)
		}
	})
}

func failedResult(headline, msg string) entity.AnalysisResult {
	return entity.AnalysisResult{
		Headline:        headline,
		Verdict:         entity.VerdictAnalysisError,
		KeyPoints:       []string{},
		RelatedArticles: []entity.Article{},
		KeywordsUsed:    []string{},
		Outcome:         entity.OutcomeFailed,
		Error:           msg,
	}
}

func absurdResult(headline string, check AbsurdityCheck) entity.AnalysisResult {
	summary := "This claim appears to be fabricated or satirical."
	if check.Reason != "" {
		summary += " " + check.Reason
	}
	return entity.AnalysisResult{
		Headline:          headline,
		Summary:           summary,
		KeyPoints:         []string{},
		VerificationScore: NoSourcesScore,
		Verdict:           entity.VerdictLikelyFake,
		SourceAnalysis: entity.SourceScore{
			Score:   NoSourcesScore,
			Verdict: entity.VerdictLikelyFake,
			Reason:  "Headline flagged as absurd before searching for sources",
		},
		RelatedArticles:   []entity.Article{},
		KeywordsUsed:      []string{},
		AbsurdityDetected: true,
		AbsurdityReason:   check.Reason,
		Outcome:           entity.OutcomeAbsurd,
	}
}

func noRelevantResult(headline string, keywords []string, candidates int) entity.AnalysisResult {
	return entity.AnalysisResult{
		Headline:          headline,
		Summary:           fmt.Sprintf("Found %d news articles, but none were relevant to this headline.", candidates),
		KeyPoints:         []string{fmt.Sprintf("%d candidate articles failed the relevance check", candidates)},
		VerificationScore: NoSourcesScore,
		Verdict:           entity.VerdictNoRelevant,
		SourceAnalysis: entity.SourceScore{
			Score:   NoSourcesScore,
			Verdict: entity.VerdictNoRelevant,
			Reason:  fmt.Sprintf("Found %d article(s), none relevant to the headline", candidates),
		},
		RelatedArticles: []entity.Article{},
		KeywordsUsed:    keywords,
		Outcome:         entity.OutcomeNoRelevant,
	}
}
