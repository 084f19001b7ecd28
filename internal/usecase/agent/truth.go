package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
	"truthlens/internal/usecase/ai"
)

// Methods reported by the agents.
const (
	MethodAI        = "ai_powered"
	MethodRuleBased = "rule_based"
)

// Verification verdicts, best first.
const (
	VerdictHighlyCredible    = "Highly Credible"
	VerdictLikelyCredible    = "Likely Credible"
	VerdictNeedsVerification = "Needs Verification"
	VerdictLowCredibility    = "Low Credibility"
)

// minAITextLength is the text length above which the model is consulted.
const minAITextLength = 20

// maxPromptText bounds the text embedded in prompts.
const maxPromptText = 1000

// VerificationRequest is a claim or article text to verify.
type VerificationRequest struct {
	Text      string `json:"text"`
	ArticleID string `json:"article_id"`
}

// SourceMention is a known outlet named in the text.
type SourceMention struct {
	Name        string `json:"name"`
	Reliability string `json:"reliability"`
	URL         string `json:"url"`
}

// VerificationResult is the truth verification agent's answer.
type VerificationResult struct {
	Score      int             `json:"score"`
	Verdict    string          `json:"verdict"`
	Method     string          `json:"method"`
	ArticleID  string          `json:"article_id"`
	Sources    []SourceMention `json:"sources"`
	Indicators []string        `json:"credibility_indicators"`
	Concerns   string          `json:"concerns,omitempty"`
	FactCheck  string          `json:"fact_check,omitempty"`
	Analysis   string          `json:"analysis,omitempty"`
	TextLength int             `json:"text_length"`
}

// TruthVerificationAgent scores the credibility of a text, with the model and
// its search tools when available and a phrase-counting heuristic otherwise.
type TruthVerificationAgent struct {
	llm   LLM
	tools *ai.ToolSet
}

// NewTruthVerificationAgent creates the agent. tools may be nil.
func NewTruthVerificationAgent(llm LLM, tools *ai.ToolSet) *TruthVerificationAgent {
	return &TruthVerificationAgent{llm: llm, tools: tools}
}

// Verify scores req.Text. It fails only on empty input.
func (a *TruthVerificationAgent) Verify(ctx context.Context, req VerificationRequest) (res *VerificationResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "agent.truth_verification")
	defer span.End()
	defer func() {
		metrics.RecordAgentRequest("truth_verification", err == nil)
		tracing.RecordError(span, err)
	}()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	articleID := req.ArticleID
	if articleID == "" {
		articleID = "unknown"
	}

	if llmEnabled(a.llm) && utf8.RuneCountInString(text) > minAITextLength {
		res, err := a.verifyWithAI(ctx, text)
		if err == nil {
			res.ArticleID = articleID
			return res, nil
		}
		logging.FromContext(ctx).Warn("ai verification failed, using rule-based scoring",
			"error", err)
		metrics.RecordLLMFallback("truth_verification")
	}

	res = RuleBasedVerification(text)
	res.ArticleID = articleID
	return res, nil
}

func (a *TruthVerificationAgent) verifyWithAI(ctx context.Context, text string) (*VerificationResult, error) {
	reply, err := a.llm.CompleteWithTools(ctx, verificationPrompt(text), a.tools)
	if err != nil {
		return nil, err
	}

	f := ai.ParseFields(reply)
	if _, ok := f.Get("SCORE"); !ok {
		return nil, fmt.Errorf("%w: SCORE", errUnparsedReply)
	}

	score := f.Int("SCORE", 50, 0, 100)
	return &VerificationResult{
		Score:      score,
		Verdict:    f.String("VERDICT", VerificationVerdict(score)),
		Method:     MethodAI,
		Sources:    findSources(text),
		Indicators: nonNil(f.List("INDICATORS")),
		Concerns:   f.String("CONCERNS", "None"),
		FactCheck:  f.String("FACT_CHECK", ""),
		Analysis:   reply,
		TextLength: utf8.RuneCountInString(text),
	}, nil
}

func verificationPrompt(text string) string {
	return fmt.Sprintf(`Analyze this news text for credibility and authenticity.

Text to analyze:
%s

Use the google_search tool to cross-reference the key claims and the fact_check
tool for claims that may already have been reviewed, when they are available.

Provide:
1. A credibility score from 0-100 (where 100 is highly credible)
2. A verdict (Highly Credible, Likely Credible, Needs Verification, or Low Credibility)
3. Key credibility indicators found
4. Any red flags or concerns
5. A cross-reference with the search results

Respond in this exact format:
SCORE: [number]
VERDICT: [verdict]
INDICATORS: [comma-separated list]
CONCERNS: [concerns or "None"]
FACT_CHECK: [brief fact-check summary]`, truncateRunes(text, maxPromptText))
}

var (
	credibilityPhrases = []struct {
		phrase string
		points int
	}{
		{"according to", 5},
		{"study shows", 5},
		{"research", 5},
		{"expert", 5},
		{"official", 5},
		{"confirmed", 5},
		{"reported", 3},
		{"sources say", 3},
	}

	sensationalPhrases = []string{"shocking", "unbelievable", "you won't believe", "miracle"}

	knownSources = []struct {
		name, reliability string
	}{
		{"Reuters", "High"},
		{"AP News", "High"},
		{"BBC", "High"},
		{"CNN", "Medium"},
		{"Fox News", "Medium"},
	}

	yearPattern = regexp.MustCompile(`\b20\d{2}\b`)
)

// RuleBasedVerification scores text from 50 by adding points for attribution
// phrases and removing 10 per sensational phrase, clamped to [0, 100].
func RuleBasedVerification(text string) *VerificationResult {
	lower := strings.ToLower(text)

	score := 50
	for _, p := range credibilityPhrases {
		if strings.Contains(lower, p.phrase) {
			score += p.points
		}
	}
	for _, p := range sensationalPhrases {
		if strings.Contains(lower, p) {
			score -= 10
		}
	}
	score = max(0, min(100, score))

	return &VerificationResult{
		Score:      score,
		Verdict:    VerificationVerdict(score),
		Method:     MethodRuleBased,
		Sources:    findSources(text),
		Indicators: findIndicators(text),
		TextLength: utf8.RuneCountInString(text),
	}
}

// VerificationVerdict bands a verification score.
func VerificationVerdict(score int) string {
	switch {
	case score >= 80:
		return VerdictHighlyCredible
	case score >= 60:
		return VerdictLikelyCredible
	case score >= 40:
		return VerdictNeedsVerification
	default:
		return VerdictLowCredibility
	}
}

func findSources(text string) []SourceMention {
	lower := strings.ToLower(text)
	out := []SourceMention{}
	for _, s := range knownSources {
		if !strings.Contains(lower, strings.ToLower(s.name)) {
			continue
		}
		host := strings.ReplaceAll(strings.ToLower(s.name), " ", "")
		out = append(out, SourceMention{
			Name:        s.name,
			Reliability: s.reliability,
			URL:         "https://" + host + ".com",
		})
	}
	return out
}

func findIndicators(text string) []string {
	lower := strings.ToLower(text)

	out := []string{}
	if containsAny(lower, "according to", "study", "research") {
		out = append(out, "Has citations")
	}
	if strings.Contains(text, `"`) {
		out = append(out, "Has quotes")
	}
	if containsAny(lower, "today", "yesterday") || yearPattern.MatchString(lower) {
		out = append(out, "Has dates")
	}
	if !containsAny(lower, "shocking", "unbelievable") {
		out = append(out, "Professional tone")
	}
	return out
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
