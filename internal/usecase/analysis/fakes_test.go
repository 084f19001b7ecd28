package analysis

import (
	"context"
	"strings"
	"sync"

	"truthlens/internal/domain/entity"
)

// fakeLLM answers by matching a prompt fragment; unmatched prompts use completeFn.
type fakeLLM struct {
	mu         sync.Mutex
	completeFn func(ctx context.Context, prompt string) (string, error)
	replies    map[string]string
	prompts    []string
	disabled   bool
}

func (f *fakeLLM) Enabled() bool { return !f.disabled }

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	for fragment, reply := range f.replies {
		if strings.Contains(prompt, fragment) {
			return reply, nil
		}
	}
	if f.completeFn != nil {
		return f.completeFn(ctx, prompt)
	}
	return "", nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeSearcher struct {
	searchFn  func(ctx context.Context, query string, limit int) ([]entity.Article, error)
	lastQuery string
	lastLimit int
	called    int
}

func (f *fakeSearcher) SearchNews(ctx context.Context, query string, limit int) ([]entity.Article, error) {
	f.called++
	f.lastQuery = query
	f.lastLimit = limit
	if f.searchFn != nil {
		return f.searchFn(ctx, query, limit)
	}
	return nil, nil
}

// Prompt fragments that identify each LLM stage.
const (
	absurdityFragment = "absurd, satirical or self-evidently false"
	keywordFragment   = "Extract 3-5 key search terms"
	summaryFragment   = "Analyze these news articles about"
)

func article(title, source string) entity.Article {
	return entity.Article{
		Title:       title,
		Description: title,
		URL:         "https://news.example.org/" + strings.ReplaceAll(strings.ToLower(source), " ", "-"),
		SourceName:  source,
	}
}
