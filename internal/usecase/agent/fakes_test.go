package agent

import (
	"context"
	"errors"
	"sync"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/factcheck"
	"truthlens/internal/infra/fetcher"
	"truthlens/internal/infra/metals"
	"truthlens/internal/infra/newsfeed"
	"truthlens/internal/infra/search"
	"truthlens/internal/usecase/ai"
)

var errUpstream = errors.New("upstream down")

// fakeLLM answers every call with reply/err and records what it was asked.
type fakeLLM struct {
	mu       sync.Mutex
	disabled bool
	reply    string
	err      error
	prompts  []string
	toolSets []*ai.ToolSet
	images   []ai.Image
	tasks    []ai.Task
}

func (f *fakeLLM) Enabled() bool { return !f.disabled }

func (f *fakeLLM) record(prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	return f.record(prompt)
}

func (f *fakeLLM) CompleteWithTools(_ context.Context, prompt string, set *ai.ToolSet) (string, error) {
	f.mu.Lock()
	f.toolSets = append(f.toolSets, set)
	f.mu.Unlock()
	return f.record(prompt)
}

func (f *fakeLLM) DescribeImage(_ context.Context, img ai.Image, prompt string) (string, error) {
	f.mu.Lock()
	f.images = append(f.images, img)
	f.mu.Unlock()
	return f.record(prompt)
}

func (f *fakeLLM) Analyze(ctx context.Context, text string, task ai.Task, set *ai.ToolSet) (string, error) {
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()
	return f.CompleteWithTools(ctx, ai.AnalysisPrompt(text, task), set)
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeNews struct {
	mu        sync.Mutex
	articles  []entity.Article
	err       error
	lastQuery string
	lastLimit int
	called    int
}

func (f *fakeNews) SearchNews(_ context.Context, query string, limit int) ([]entity.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called++
	f.lastQuery, f.lastLimit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.articles[:min(limit, len(f.articles))], nil
}

type fakeHeadlines struct {
	configured bool
	headlines  newsfeed.Headlines
	err        error
	called     int
	lastCat    string
}

func (f *fakeHeadlines) Configured() bool { return f.configured }

func (f *fakeHeadlines) TopHeadlines(_ context.Context, category string, _ int) (newsfeed.Headlines, error) {
	f.called++
	f.lastCat = category
	return f.headlines, f.err
}

type fakeWeb struct {
	mu         sync.Mutex
	configured bool
	results    []search.Result
	err        error
	queries    []string
}

func (f *fakeWeb) Configured() bool { return f.configured }

func (f *fakeWeb) Search(_ context.Context, query string, num int) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[:min(num, len(f.results))], nil
}

type fakeFacts struct {
	configured bool
	claims     []factcheck.Claim
}

func (f *fakeFacts) Configured() bool { return f.configured }

func (f *fakeFacts) Search(context.Context, string) ([]factcheck.Claim, error) {
	return f.claims, nil
}

type fakeGeocoder struct{ name string }

func (f fakeGeocoder) AreaName(context.Context, float64, float64) string { return f.name }

type fakeQuoter struct {
	configured bool
	rates      metals.Rates
	err        error
	called     int
}

func (f *fakeQuoter) Configured() bool { return f.configured }

func (f *fakeQuoter) Latest(context.Context, string, ...string) (metals.Rates, error) {
	f.called++
	return f.rates, f.err
}

type fakePages struct {
	article *fetcher.Article
	err     error
	lastURL string
}

func (f *fakePages) FetchArticle(_ context.Context, rawURL string) (*fetcher.Article, error) {
	f.lastURL = rawURL
	return f.article, f.err
}

type fakeImages struct {
	data []byte
	err  error
}

func (f fakeImages) Get(context.Context, string) ([]byte, error) { return f.data, f.err }
