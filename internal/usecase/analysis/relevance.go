package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"truthlens/internal/domain/entity"
)

// neutralRelevance is returned when the headline has no meaningful tokens.
const neutralRelevance = 0.5

// RelevanceScore is the fraction of meaningful headline tokens contained in
// the article's title and description. Tokens are split on anything that is
// not a letter or digit; stop words and tokens of two characters or fewer do
// not count.
func RelevanceScore(headline, title, description string) float64 {
	tokens := meaningfulTokens(headline)
	if len(tokens) == 0 {
		return neutralRelevance
	}

	text := strings.ToLower(title + " " + description)
	found := 0
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			found++
		}
	}
	return float64(found) / float64(len(tokens))
}

// FilterRelevant keeps articles scoring at least minRelevance, attaching the
// score. Input order is preserved; re-filtering the output at the same
// threshold returns it unchanged.
func FilterRelevant(headline string, articles []entity.Article, minRelevance float64) []entity.Article {
	kept := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		score := RelevanceScore(headline, a.Title, a.Description)
		if score >= minRelevance {
			kept = append(kept, a.WithRelevance(score))
		}
	}
	return kept
}

func meaningfulTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 2 || isStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
