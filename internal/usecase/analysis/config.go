// Package analysis implements the deep analysis pipeline: keyword extraction,
// advertisement and relevance filtering, source credibility scoring, the
// absurdity pre-check and summary synthesis, folded into one AnalysisResult.
package analysis

import (
	"fmt"
	"strings"

	pkgconfig "truthlens/pkg/config"
)

// NoSourcesScore is the score assigned when no article survives to scoring,
// and to the absurd and no-relevant terminal states.
const NoSourcesScore = 5

// Config holds the tunable parameters of the pipeline. Zero values are not
// meaningful; start from DefaultConfig.
type Config struct {
	// MinRelevance is the relevance gate threshold in [0,1].
	MinRelevance float64 `yaml:"min_relevance"`

	// SearchLimit is the number of articles kept after ad filtering. Twice
	// as many raw entries are requested.
	SearchLimit int `yaml:"search_limit"`

	// QueryKeywords is how many extracted keywords form the search query.
	QueryKeywords int `yaml:"query_keywords"`

	Scoring ScoringConfig `yaml:"scoring"`
}

// ScoringConfig parameterizes the source credibility scorer.
type ScoringConfig struct {
	// CountSteps[i] is the base score for i+1 sources; larger counts use the
	// last entry.
	CountSteps []int `yaml:"count_steps"`

	// HighReliability and MediumReliability are lower-case outlet name
	// fragments matched as substrings of the source name.
	HighReliability   []string `yaml:"high_reliability"`
	MediumReliability []string `yaml:"medium_reliability"`

	HighBonus   int `yaml:"high_bonus"`
	MediumBonus int `yaml:"medium_bonus"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MinRelevance:  0.3,
		SearchLimit:   10,
		QueryKeywords: 3,
		Scoring:       DefaultScoringConfig(),
	}
}

// DefaultScoringConfig returns the stock step table and outlet tiers.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		CountSteps: []int{5, 10, 15, 20, 25, 30, 33, 36, 38, 40},
		HighReliability: []string{
			"reuters", "ap news", "bbc", "associated press",
			"npr", "the guardian", "the new york times", "washington post",
		},
		MediumReliability: []string{
			"cnn", "fox news", "msnbc", "abc news",
			"cbs news", "nbc news", "usa today", "bloomberg",
		},
		HighBonus:   15,
		MediumBonus: 8,
	}
}

// Validate checks ranges and table shapes.
func (c Config) Validate() error {
	if err := pkgconfig.ValidateFloatRange(c.MinRelevance, 0, 1); err != nil {
		return fmt.Errorf("min_relevance: %w", err)
	}
	if err := pkgconfig.ValidateIntRange(c.SearchLimit, 1, 50); err != nil {
		return fmt.Errorf("search_limit: %w", err)
	}
	if err := pkgconfig.ValidateIntRange(c.QueryKeywords, 1, maxKeywords); err != nil {
		return fmt.Errorf("query_keywords: %w", err)
	}
	return c.Scoring.Validate()
}

// Validate checks the step table and tiers.
func (s ScoringConfig) Validate() error {
	if len(s.CountSteps) == 0 {
		return fmt.Errorf("count_steps cannot be empty")
	}
	prev := 0
	for i, v := range s.CountSteps {
		if v < 0 || v > 100 {
			return fmt.Errorf("count_steps[%d]=%d out of range 0-100", i, v)
		}
		if v < prev {
			return fmt.Errorf("count_steps must be non-decreasing, count_steps[%d]=%d < %d", i, v, prev)
		}
		prev = v
	}
	if s.HighBonus < 0 || s.MediumBonus < 0 {
		return fmt.Errorf("tier bonuses must not be negative")
	}
	for _, tier := range [][]string{s.HighReliability, s.MediumReliability} {
		for _, name := range tier {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("reliability tiers cannot contain empty names")
			}
		}
	}
	return nil
}
