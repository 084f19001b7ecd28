package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
)

const maxKeywords = 5

// stopWords are English function words ignored by keyword extraction and
// relevance scoring.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "been": {}, "be": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"into": {}, "about": {},
}

func isStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

// wordRunes splits text into runs of letters, digits and underscores.
func wordRunes(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// isKeywordToken keeps capitalized words ("Über", "Paris") and words of four
// or more characters in any script.
func isKeywordToken(w string) bool {
	if utf8.RuneCountInString(w) >= 4 {
		return true
	}
	first, size := utf8.DecodeRuneInString(w)
	if !unicode.IsUpper(first) || size == len(w) {
		return false
	}
	for _, r := range w[size:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// KeywordExtractor derives search terms from a headline.
type KeywordExtractor struct {
	llm Completer
}

// NewKeywordExtractor creates an extractor. A nil llm uses the fallback only.
func NewKeywordExtractor(llm Completer) *KeywordExtractor {
	return &KeywordExtractor{llm: llm}
}

// Extract returns 1..5 keywords. fellBack reports that the deterministic
// path produced them. An empty headline yields the headline itself.
func (k *KeywordExtractor) Extract(ctx context.Context, headline string) (keywords []string, fellBack bool) {
	if strings.TrimSpace(headline) == "" {
		return []string{headline}, false
	}

	if available(k.llm) {
		reply, err := k.llm.Complete(ctx, keywordPrompt(headline))
		if err == nil {
			if parsed := parseKeywordReply(reply); len(parsed) > 0 {
				return parsed, false
			}
			err = fmt.Errorf("no keywords in reply")
		}
		logging.FromContext(ctx).Warn("LLM keyword extraction failed, using fallback",
			"error", err)
	}

	metrics.RecordLLMFallback("keywords")
	return FallbackKeywords(headline), true
}

func keywordPrompt(headline string) string {
	return fmt.Sprintf(`Extract 3-5 key search terms from this headline for finding related news articles.
Focus on:
- Main entities (people, organizations, places)
- Key events or actions
- Important topics

Headline: %s

Return ONLY the keywords separated by commas, nothing else.`, headline)
}

func parseKeywordReply(reply string) []string {
	var out []string
	for _, part := range strings.Split(reply, ",") {
		kw := strings.Trim(strings.TrimSpace(part), `"'`)
		if kw == "" {
			continue
		}
		out = append(out, kw)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// FallbackKeywords extracts keywords without a network call: capitalized or
// long tokens, minus stop words, deduplicated case-insensitively in
// first-seen order, at most five. It never returns an empty slice.
func FallbackKeywords(headline string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range wordRunes(headline) {
		if !isKeywordToken(tok) {
			continue
		}
		lower := strings.ToLower(tok)
		if isStopWord(lower) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, tok)
		if len(out) == maxKeywords {
			break
		}
	}
	if len(out) == 0 {
		return []string{headline}
	}
	return out
}
