package entity

// Outcome classifies how an analysis run ended.
type Outcome string

const (
	// OutcomeOK means every stage ran with its primary collaborator.
	OutcomeOK Outcome = "ok"
	// OutcomeDegraded means at least one stage fell back (no LLM, search failure).
	OutcomeDegraded Outcome = "degraded"
	// OutcomeAbsurd means the absurdity check short-circuited the run.
	OutcomeAbsurd Outcome = "absurd"
	// OutcomeNoRelevant means candidates were found but none passed the relevance gate.
	OutcomeNoRelevant Outcome = "no_relevant"
	// OutcomeFailed means the run could not produce a verdict; Error is set.
	OutcomeFailed Outcome = "failed"
)

// MaxRelatedArticles bounds AnalysisResult.RelatedArticles.
const MaxRelatedArticles = 10

// AnalysisResult is the deep analysis pipeline's output envelope.
// It owns its SourceScore and article slice exclusively.
type AnalysisResult struct {
	Headline          string      `json:"headline"`
	Summary           string      `json:"summary"`
	Assessment        string      `json:"assessment,omitempty"`
	KeyPoints         []string    `json:"key_points"`
	VerificationScore int         `json:"verification_score"`
	Verdict           string      `json:"verdict"`
	SourceAnalysis    SourceScore `json:"source_analysis"`
	RelatedArticles   []Article   `json:"related_articles"`
	KeywordsUsed      []string    `json:"keywords_used"`
	AbsurdityDetected bool        `json:"absurdity_detected"`
	AbsurdityReason   string      `json:"absurdity_reason,omitempty"`
	Outcome           Outcome     `json:"outcome"`
	Error             string      `json:"error,omitempty"`
}

// Failed reports whether the result represents an error.
func (r AnalysisResult) Failed() bool {
	return r.Outcome == OutcomeFailed
}
