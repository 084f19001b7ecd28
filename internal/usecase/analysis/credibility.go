package analysis

import (
	"fmt"
	"strings"

	"truthlens/internal/domain/entity"
)

// Scorer maps an article set to a SourceScore. It is pure: the same articles
// and tables always give the same result.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a Scorer. Tier names are lower-cased once here.
func NewScorer(cfg ScoringConfig) *Scorer {
	cfg.HighReliability = lowerAll(cfg.HighReliability)
	cfg.MediumReliability = lowerAll(cfg.MediumReliability)
	if len(cfg.CountSteps) == 0 {
		cfg.CountSteps = DefaultScoringConfig().CountSteps
	}
	return &Scorer{cfg: cfg}
}

// Score computes base-by-count plus tier bonus, clamped to [0,100].
func (s *Scorer) Score(articles []entity.Article) entity.SourceScore {
	n := len(articles)
	if n == 0 {
		return entity.SourceScore{
			Score:   NoSourcesScore,
			Verdict: entity.VerdictNoSources,
			Reason:  "No credible news sources found covering this topic",
		}
	}

	high, medium := 0, 0
	for _, a := range articles {
		switch s.tier(a.SourceName) {
		case tierHigh:
			high++
		case tierMedium:
			medium++
		}
	}

	total := s.base(n) + high*s.cfg.HighBonus + medium*s.cfg.MediumBonus
	total = max(0, min(total, 100))

	return entity.SourceScore{
		Score:              total,
		Verdict:            VerdictFor(total),
		SourceCount:        n,
		HighQualityCount:   high,
		MediumQualityCount: medium,
		Reason:             reason(n, high, medium),
	}
}

func (s *Scorer) base(n int) int {
	steps := s.cfg.CountSteps
	if n > len(steps) {
		return steps[len(steps)-1]
	}
	return steps[n-1]
}

type tier int

const (
	tierNone tier = iota
	tierHigh
	tierMedium
)

// tier classifies a source; high is checked first so an outlet counts once.
func (s *Scorer) tier(source string) tier {
	name := strings.ToLower(source)
	for _, h := range s.cfg.HighReliability {
		if strings.Contains(name, h) {
			return tierHigh
		}
	}
	for _, m := range s.cfg.MediumReliability {
		if strings.Contains(name, m) {
			return tierMedium
		}
	}
	return tierNone
}

// VerdictFor bands a score, evaluated high to low.
func VerdictFor(score int) string {
	switch {
	case score >= 80:
		return entity.VerdictHighlyCredible
	case score >= 60:
		return entity.VerdictCredible
	case score >= 40:
		return entity.VerdictModeratelyCredible
	case score >= 20:
		return entity.VerdictLowCredibility
	default:
		return entity.VerdictUnverifiable
	}
}

func reason(n, high, medium int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d source(s)", n)
	if high > 0 {
		fmt.Fprintf(&b, ", including %d high-reliability source(s)", high)
	}
	if medium > 0 {
		fmt.Fprintf(&b, " and %d medium-reliability source(s)", medium)
	}
	return b.String()
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
