package analysis

import (
	"context"
	"fmt"

	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/usecase/ai"
)

// AbsurdityCheck is the detector's verdict. The zero value means "not absurd".
type AbsurdityCheck struct {
	IsAbsurd   bool
	Reason     string
	Confidence string
}

// AbsurdityDetector flags headlines that are self-evidently false or satirical.
type AbsurdityDetector struct {
	llm Completer
}

// NewAbsurdityDetector creates a detector. A nil llm never flags anything.
func NewAbsurdityDetector(llm Completer) *AbsurdityDetector {
	return &AbsurdityDetector{llm: llm}
}

// Check asks the LLM. Any failure, including a reply without an ABSURD line,
// yields the zero AbsurdityCheck. ran reports whether a verdict was parsed.
func (d *AbsurdityDetector) Check(ctx context.Context, headline string) (check AbsurdityCheck, ran bool) {
	if !available(d.llm) {
		return AbsurdityCheck{}, false
	}

	reply, err := d.llm.Complete(ctx, absurdityPrompt(headline))
	if err != nil {
		if !unavailable(err) {
			logging.FromContext(ctx).Warn("absurdity check failed, assuming plausible",
				"error", err)
		}
		metrics.RecordLLMFallback("absurdity")
		return AbsurdityCheck{}, false
	}

	check, ok := parseAbsurdity(reply)
	if !ok {
		metrics.RecordLLMFallback("absurdity")
		return AbsurdityCheck{}, false
	}
	return check, true
}

func absurdityPrompt(headline string) string {
	return fmt.Sprintf(`Assess whether this news headline is absurd, satirical or self-evidently false.

Headline: %s

Flag it as absurd only if it:
- describes something physically impossible
- reads as satire or parody
- contradicts itself
- would be front-page news around the world if it were true, yet reads like a rumor

Respond in this exact format:
ABSURD: yes or no
REASON: [one sentence]
CONFIDENCE: low, medium or high`, headline)
}

// parseAbsurdity reads the ABSURD/REASON/CONFIDENCE fields; ok is false
// when the ABSURD line is missing.
func parseAbsurdity(reply string) (AbsurdityCheck, bool) {
	f := ai.ParseFields(reply)
	if _, ok := f.Get("ABSURD"); !ok {
		return AbsurdityCheck{}, false
	}
	if !f.Bool("ABSURD") {
		return AbsurdityCheck{}, true
	}
	return AbsurdityCheck{
		IsAbsurd:   true,
		Reason:     f.String("REASON", ""),
		Confidence: f.String("CONFIDENCE", ""),
	}, true
}
