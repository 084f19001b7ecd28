package analysis

import (
	"context"
	"fmt"
	"strings"

	"truthlens/internal/domain/entity"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/usecase/ai"
)

// summaryArticles is how many articles are quoted in the synthesis prompt.
const summaryArticles = 5

// Synthesis is the summary stage output.
type Synthesis struct {
	Summary    string
	KeyPoints  []string
	Assessment string
}

// Summarizer synthesizes a summary over the relevant articles.
type Summarizer struct {
	llm Completer
}

// NewSummarizer creates a Summarizer. A nil llm always uses the template.
func NewSummarizer(llm Completer) *Summarizer {
	return &Summarizer{llm: llm}
}

// Summarize never fails. With no articles or no LLM it returns the plain
// template; an LLM error returns the "various sources" template. fellBack
// reports either case.
func (s *Summarizer) Summarize(ctx context.Context, headline string, articles []entity.Article) (out Synthesis, fellBack bool) {
	n := len(articles)
	defaultPoints := []string{fmt.Sprintf("Found %d related articles", n)}

	if n == 0 || !available(s.llm) {
		return Synthesis{
			Summary:   fmt.Sprintf("Found %d news articles covering this topic.", n),
			KeyPoints: defaultPoints,
		}, n > 0
	}

	reply, err := s.llm.Complete(ctx, summaryPrompt(headline, articles))
	if err != nil {
		if unavailable(err) {
			return Synthesis{
				Summary:   fmt.Sprintf("Found %d news articles covering this topic.", n),
				KeyPoints: defaultPoints,
			}, true
		}
		logging.FromContext(ctx).Warn("LLM summary failed, using template", "error", err)
		metrics.RecordLLMFallback("summary")
		return Synthesis{
			Summary:   variousSources(n),
			KeyPoints: defaultPoints,
		}, true
	}

	f := ai.ParseFields(reply)
	out = Synthesis{
		Summary:    f.String("SUMMARY", variousSources(n)),
		KeyPoints:  f.List("KEY_POINTS"),
		Assessment: f.String("ASSESSMENT", ""),
	}
	if len(out.KeyPoints) == 0 {
		out.KeyPoints = defaultPoints
	}
	return out, false
}

func variousSources(n int) string {
	return fmt.Sprintf("Found %d news articles covering this topic from various sources.", n)
}

func summaryPrompt(headline string, articles []entity.Article) string {
	if len(articles) > summaryArticles {
		articles = articles[:summaryArticles]
	}
	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		blocks = append(blocks, a.Title+"\n"+a.Description)
	}

	return fmt.Sprintf(`Analyze these news articles about: %s

Articles:
%s

Provide:
1. A comprehensive 3-4 sentence summary
2. 4-6 key points (bullet format)
3. Overall assessment of the situation

Format:
SUMMARY: [summary]
KEY_POINTS:
- [point 1]
- [point 2]
...
ASSESSMENT: [assessment]`, headline, strings.Join(blocks, "\n\n"))
}
