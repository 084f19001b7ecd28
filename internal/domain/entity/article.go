// Package entity defines the core domain types shared by the analysis pipeline
// and the agents: articles, credibility scores, analysis results and the
// domain-specific errors and validation rules around them.
package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is the maximum number of characters kept in an article description.
const MaxDescriptionLength = 200

// Article represents one retrieved news item.
// RelevanceScore is attached once by the relevance filter; Scored reports whether
// that has happened. Articles are not persisted and die with the request.
type Article struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	URL            string     `json:"url"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	SourceName     string     `json:"source"`
	RelevanceScore float64    `json:"relevance_score,omitempty"`
	Scored         bool       `json:"-"`
}

// Validate checks the retention invariant: title and URL are never both empty.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.URL) == "" {
		return invalid("title", "title and url must not both be empty")
	}
	return nil
}

// WithRelevance returns a copy of the article carrying the given relevance score.
func (a Article) WithRelevance(score float64) Article {
	a.RelevanceScore = score
	a.Scored = true
	return a
}

// TruncateDescription shortens s to MaxDescriptionLength runes.
func TruncateDescription(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxDescriptionLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxDescriptionLength])
}
