package analysis

import (
	"context"
	"errors"

	"truthlens/internal/domain/entity"
	"truthlens/internal/usecase/ai"
)

// Completer is the LLM capability the pipeline needs. *ai.Service satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewsSearcher returns candidate articles for a query, at most limit of them.
type NewsSearcher interface {
	SearchNews(ctx context.Context, query string, limit int) ([]entity.Article, error)
}

// available reports whether c can be called at all. Completers exposing
// Enabled (like *ai.Service) are asked.
func available(c Completer) bool {
	if c == nil {
		return false
	}
	if e, ok := c.(interface{ Enabled() bool }); ok {
		return e.Enabled()
	}
	return true
}

// unavailable reports whether err means "no LLM" rather than "LLM failed".
func unavailable(err error) bool {
	return errors.Is(err, ai.ErrAIDisabled)
}
