package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
	"truthlens/internal/usecase/ai"
)

// ImpactRequest is the news text to assess, with optional context.
type ImpactRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// ImpactFactors break down an impact score.
type ImpactFactors struct {
	Urgency         string `json:"urgency"`
	Scope           string `json:"scope"`
	TopicImportance string `json:"topic_importance,omitempty"`
	Reasoning       string `json:"reasoning,omitempty"`
}

// ImpactResult is the impact agent's answer.
type ImpactResult struct {
	ImpactScore    int           `json:"impact_score"`
	Relevance      string        `json:"relevance"`
	EstimatedReach string        `json:"estimated_reach"`
	Factors        ImpactFactors `json:"factors"`
	Method         string        `json:"method"`
}

// ImpactAgent estimates how significant and far-reaching a story is.
type ImpactAgent struct {
	llm LLM
}

// NewImpactAgent creates the agent.
func NewImpactAgent(llm LLM) *ImpactAgent {
	return &ImpactAgent{llm: llm}
}

// Assess scores req.Text.
func (a *ImpactAgent) Assess(ctx context.Context, req ImpactRequest) (res *ImpactResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "agent.impact")
	defer span.End()
	defer func() {
		metrics.RecordAgentRequest("impact", err == nil)
		tracing.RecordError(span, err)
	}()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	if llmEnabled(a.llm) && utf8.RuneCountInString(text) > minAITextLength {
		res, err := a.assessWithAI(ctx, text, req.Context)
		if err == nil {
			return res, nil
		}
		logging.FromContext(ctx).Warn("ai impact analysis failed, using rule-based scoring",
			"error", err)
		metrics.RecordLLMFallback("impact")
	}

	return RuleBasedImpact(text), nil
}

func (a *ImpactAgent) assessWithAI(ctx context.Context, text, extra string) (*ImpactResult, error) {
	reply, err := a.llm.Complete(ctx, impactPrompt(text, extra))
	if err != nil {
		return nil, err
	}

	f := ai.ParseFields(reply)
	if _, ok := f.Get("IMPACT_SCORE"); !ok {
		return nil, fmt.Errorf("%w: IMPACT_SCORE", errUnparsedReply)
	}

	return &ImpactResult{
		ImpactScore:    f.Int("IMPACT_SCORE", 50, 0, 100),
		Relevance:      f.String("RELEVANCE", "Moderate Relevance"),
		EstimatedReach: f.String("REACH", "Regional"),
		Factors: ImpactFactors{
			Urgency:   f.String("URGENCY", "Medium"),
			Scope:     f.String("SCOPE", "National"),
			Reasoning: f.String("REASONING", ""),
		},
		Method: MethodAI,
	}, nil
}

func impactPrompt(text, extra string) string {
	return fmt.Sprintf(`Analyze the impact and relevance of this news:

Text: %s
Context: %s

Provide:
1. Impact Score (0-100): How significant is this news?
2. Relevance: How current and relevant is this?
3. Estimated Reach: Who will this affect?
4. Urgency Level: How urgent is this news?
5. Scope: Local, National, or Global?

Respond in this format:
IMPACT_SCORE: [number 0-100]
RELEVANCE: [description]
REACH: [description]
URGENCY: [High/Medium/Low]
SCOPE: [Local/National/Global]
REASONING: [brief explanation]`, truncateRunes(text, maxPromptText), extra)
}

var (
	highImpactWords = []string{"breaking", "urgent", "critical", "major", "significant", "historic"}
	scopeWords      = []string{"global", "national", "worldwide", "international"}
)

// RuleBasedImpact scores text from 50, adding 10 per high-impact word and 5
// per scope word, capped at 100.
func RuleBasedImpact(text string) *ImpactResult {
	lower := strings.ToLower(text)

	score := 50
	for _, w := range highImpactWords {
		if strings.Contains(lower, w) {
			score += 10
		}
	}
	for _, w := range scopeWords {
		if strings.Contains(lower, w) {
			score += 5
		}
	}

	return &ImpactResult{
		ImpactScore:    min(100, score),
		Relevance:      assessRelevance(lower),
		EstimatedReach: estimateReach(lower),
		Factors:        impactFactors(lower),
		Method:         MethodRuleBased,
	}
}

func assessRelevance(lower string) string {
	switch {
	case containsAny(lower, "today", "now", "current", "latest"):
		return "Highly Relevant - Current Event"
	case containsAny(lower, "recent", "this week", "yesterday"):
		return "Relevant - Recent News"
	default:
		return "Moderate Relevance"
	}
}

func estimateReach(lower string) string {
	switch {
	case containsAny(lower, "global", "worldwide", "international"):
		return "Global (Millions)"
	case containsAny(lower, "national", "country"):
		return "National (Hundreds of thousands)"
	default:
		return "Local/Regional (Thousands)"
	}
}

func impactFactors(lower string) ImpactFactors {
	f := ImpactFactors{Urgency: "Medium", Scope: "Local", TopicImportance: "Medium"}
	if strings.Contains(lower, "breaking") {
		f.Urgency = "High"
	}
	if strings.Contains(lower, "global") {
		f.Scope = "Global"
	}
	if containsAny(lower, "health", "safety", "security") {
		f.TopicImportance = "High"
	}
	return f
}

func containsAny(lower string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
