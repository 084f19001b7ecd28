package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
	"truthlens/internal/usecase/ai"
	"truthlens/internal/usecase/analysis"
)

const (
	summarySentences    = 3
	maxFallbackSummary  = 500
	maxSummaryPromptLen = 4000
)

// Sentiments reported by the summary agent.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// SummaryRequest carries either the text to summarize or a page URL.
type SummaryRequest struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// SummaryResult is the summary agent's answer.
type SummaryResult struct {
	Title     string   `json:"title,omitempty"`
	URL       string   `json:"url,omitempty"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Topics    []string `json:"topics"`
	Sentiment string   `json:"sentiment"`
	WordCount int      `json:"word_count"`
	Method    string   `json:"method"`
}

// SummaryAgent condenses a text or an article page.
type SummaryAgent struct {
	llm   LLM
	pages PageFetcher
	tools *ai.ToolSet
}

// NewSummaryAgent creates the agent. pages and tools may be nil.
func NewSummaryAgent(llm LLM, pages PageFetcher, tools *ai.ToolSet) *SummaryAgent {
	return &SummaryAgent{llm: llm, pages: pages, tools: tools}
}

// Summarize condenses req.Text, or the page at req.URL when no text is given.
func (a *SummaryAgent) Summarize(ctx context.Context, req SummaryRequest) (res *SummaryResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "agent.summary")
	defer span.End()
	defer func() {
		metrics.RecordAgentRequest("summary", err == nil)
		tracing.RecordError(span, err)
	}()

	text, title := strings.TrimSpace(req.Text), strings.TrimSpace(req.Title)
	if text == "" && strings.TrimSpace(req.URL) != "" {
		if a.pages == nil {
			return nil, ErrEmptyText
		}
		page, err := a.pages.FetchArticle(ctx, req.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch article: %w", err)
		}
		text = page.Content
		if title == "" {
			title = page.Title
		}
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	if llmEnabled(a.llm) {
		res, err := a.summarizeWithAI(ctx, text)
		if err == nil {
			res.Title, res.URL = title, req.URL
			return res, nil
		}
		logging.FromContext(ctx).Warn("ai summary failed, using extractive summary",
			"error", err)
		metrics.RecordLLMFallback("summary")
	}

	res = ExtractiveSummary(text)
	res.Title, res.URL = title, req.URL
	return res, nil
}

func (a *SummaryAgent) summarizeWithAI(ctx context.Context, text string) (*SummaryResult, error) {
	reply, err := a.llm.CompleteWithTools(ctx, summaryPrompt(text), a.tools)
	if err != nil {
		return nil, err
	}

	f := ai.ParseFields(reply)
	summary := f.String("SUMMARY", "")
	if summary == "" {
		return nil, fmt.Errorf("%w: SUMMARY", errUnparsedReply)
	}

	return &SummaryResult{
		Summary:   summary,
		KeyPoints: nonNil(f.List("KEY_POINTS")),
		Topics:    nonNil(f.List("TOPICS")),
		Sentiment: normalizeSentiment(f.String("SENTIMENT", SentimentNeutral)),
		WordCount: len(strings.Fields(text)),
		Method:    MethodAI,
	}, nil
}

func summaryPrompt(text string) string {
	return fmt.Sprintf(`Summarize and analyze this text.

Text:
%s

Use google_search if you need context about unfamiliar topics.

Respond in this exact format:
SUMMARY: [concise 2-3 sentence summary]
KEY_POINTS:
- [point 1]
- [point 2]
- [point 3]
TOPICS: [comma-separated main topics]
SENTIMENT: [Positive/Negative/Neutral]`, truncateRunes(text, maxSummaryPromptLen))
}

// ExtractiveSummary summarizes without a model: the leading sentences form the
// summary and the key points, and the topics are the fallback keywords.
func ExtractiveSummary(text string) *SummaryResult {
	sentences := splitSentences(text)

	lead := sentences[:min(summarySentences, len(sentences))]
	summary := strings.Join(lead, " ")
	if utf8.RuneCountInString(summary) > maxFallbackSummary {
		summary = strings.TrimSpace(truncateRunes(summary, maxFallbackSummary)) + "..."
	}

	return &SummaryResult{
		Summary:   summary,
		KeyPoints: append([]string{}, lead...),
		Topics:    analysis.FallbackKeywords(text),
		Sentiment: SentimentNeutral,
		WordCount: len(strings.Fields(text)),
		Method:    MethodRuleBased,
	}
}

// splitSentences splits on ., ! and ? followed by whitespace. Text without a
// terminator is one sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func normalizeSentiment(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "pos"):
		return SentimentPositive
	case strings.HasPrefix(lower, "neg"):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
