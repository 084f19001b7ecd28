package entity

// Credibility verdict labels produced by the source credibility scorer.
const (
	VerdictHighlyCredible     = "Highly Credible"
	VerdictCredible           = "Credible"
	VerdictModeratelyCredible = "Moderately Credible"
	VerdictLowCredibility     = "Low Credibility"
	VerdictUnverifiable       = "Unverifiable"
	VerdictNoSources          = "No Sources Found"

	// Terminal pipeline verdicts.
	VerdictLikelyFake    = "Likely Fake/Satirical"
	VerdictNoRelevant    = "Unverifiable - No Relevant Sources"
	VerdictAnalysisError = "Analysis Failed"
)

// SourceScore is the aggregate credibility verdict for a set of articles.
// Reason is display-only prose and must not be parsed.
type SourceScore struct {
	Score              int    `json:"score"`
	Verdict            string `json:"verdict"`
	SourceCount        int    `json:"source_count"`
	HighQualityCount   int    `json:"high_quality_sources"`
	MediumQualityCount int    `json:"medium_quality_sources"`
	Reason             string `json:"reason"`
}
