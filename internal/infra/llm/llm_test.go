package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/resilience/retry"
	"truthlens/internal/usecase/ai"
)

type recordedRequest struct {
	provider, operation string
	success             bool
}

type mockRecorder struct {
	mu        sync.Mutex
	requests  []recordedRequest
	toolCalls []string
	rounds    []int
}

func (m *mockRecorder) RecordRequest(provider, operation string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{provider, operation, success})
}

func (m *mockRecorder) RecordToolCall(_, tool string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCalls = append(m.toolCalls, tool)
}

func (m *mockRecorder) RecordToolRounds(_ string, rounds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, rounds)
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func testConfig(baseURL string) Config {
	return Config{Model: "test-model", MaxTokens: 256, Timeout: 5 * time.Second, MaxToolRounds: 3, MaxInputChars: 1000, BaseURL: baseURL}
}

func newTestClaude(t *testing.T, handler http.HandlerFunc) (*Claude, *mockRecorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClaude("test-key", testConfig(server.URL+"/"))
	rec := &mockRecorder{}
	c.metricsRecorder = rec
	c.retryConfig = fastRetry()
	return c, rec
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) (*OpenAI, *mockRecorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	o := NewOpenAI("test-key", testConfig(server.URL+"/v1"))
	rec := &mockRecorder{}
	o.metricsRecorder = rec
	o.retryConfig = fastRetry()
	return o, rec
}

func claudeText(text string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"test-model",` +
		`"content":[{"type":"text","text":` + quote(text) + `}],` +
		`"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`
}

func claudeToolUse(id, name, input string) string {
	return `{"id":"msg_2","type":"message","role":"assistant","model":"test-model",` +
		`"content":[{"type":"tool_use","id":"` + id + `","name":"` + name + `","input":` + input + `}],` +
		`"stop_reason":"tool_use","usage":{"input_tokens":1,"output_tokens":1}}`
}

func openAIText(text string) string {
	return `{"id":"c1","object":"chat.completion","model":"test-model","choices":[{"index":0,` +
		`"message":{"role":"assistant","content":` + quote(text) + `},"finish_reason":"stop"}]}`
}

func openAIToolCall(id, name, args string) string {
	return `{"id":"c2","object":"chat.completion","model":"test-model","choices":[{"index":0,` +
		`"message":{"role":"assistant","content":"","tool_calls":[{"id":"` + id + `","type":"function",` +
		`"function":{"name":"` + name + `","arguments":` + quote(args) + `}}]},"finish_reason":"tool_calls"}]}`
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func echoTools() *ai.ToolSet {
	return ai.NewToolSet().Register(ai.Tool{
		Name:        "google_search",
		Description: "search the web",
		Parameters:  []ai.ToolParam{{Name: "query", Required: true}},
	}, func(_ context.Context, args map[string]string) (string, error) {
		return "results for " + args["query"], nil
	})
}

func TestClaude_Complete(t *testing.T) {
	c, rec := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, claudeText("ABSURD: no"))
	})

	reply, err := c.Complete(context.Background(), "is this absurd?")
	require.NoError(t, err)
	assert.Equal(t, "ABSURD: no", reply)
	require.Len(t, rec.requests, 1)
	assert.Equal(t, recordedRequest{"claude", "complete", true}, rec.requests[0])
}

func TestClaude_CompleteWithTools(t *testing.T) {
	var calls int32
	c, rec := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := io.ReadAll(r.Body)
		if atomic.AddInt32(&calls, 1) == 1 {
			assert.Contains(t, string(body), `"google_search"`)
			_, _ = io.WriteString(w, claudeToolUse("tu_1", "google_search", `{"query":"mars water"}`))
			return
		}
		assert.Contains(t, string(body), "results for mars water")
		assert.Contains(t, string(body), `"tool_use_id":"tu_1"`)
		_, _ = io.WriteString(w, claudeText("SCORE: 70/100"))
	})

	set := echoTools()
	reply, err := c.CompleteWithTools(context.Background(), "verify", set.Tools(), set)
	require.NoError(t, err)
	assert.Equal(t, "SCORE: 70/100", reply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"google_search"}, rec.toolCalls)
	assert.Equal(t, []int{2}, rec.rounds)
}

func TestClaude_ToolLoopRoundLimit(t *testing.T) {
	var calls int32
	c, _ := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, claudeToolUse("tu_x", "google_search", `{"query":"again"}`))
	})

	set := echoTools()
	_, err := c.CompleteWithTools(context.Background(), "loop", set.Tools(), set)
	assert.ErrorIs(t, err, ErrToolLoopExceeded)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClaude_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	c, rec := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	})

	_, err := c.Complete(context.Background(), "hello")
	require.Error(t, err)

	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, rec.requests[0].success)
}

func TestClaude_ServerErrorRetried(t *testing.T) {
	var calls int32
	c, _ := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`)
			return
		}
		_, _ = io.WriteString(w, claudeText("ok"))
	})

	reply, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAI_Complete(t *testing.T) {
	o, rec := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, openAIText("tesla, recall, autopilot"))
	})

	reply, err := o.Complete(context.Background(), "keywords please")
	require.NoError(t, err)
	assert.Equal(t, "tesla, recall, autopilot", reply)
	assert.Equal(t, recordedRequest{"openai", "complete", true}, rec.requests[0])
}

func TestOpenAI_CompleteWithTools(t *testing.T) {
	var calls int32
	o, rec := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := io.ReadAll(r.Body)
		if atomic.AddInt32(&calls, 1) == 1 {
			assert.Contains(t, string(body), `"tools"`)
			_, _ = io.WriteString(w, openAIToolCall("call_1", "google_search", `{"query":"eclipse"}`))
			return
		}
		assert.Contains(t, string(body), `"tool_call_id":"call_1"`)
		assert.Contains(t, string(body), "results for eclipse")
		_, _ = io.WriteString(w, openAIText("VERDICT: Likely Credible"))
	})

	set := echoTools()
	reply, err := o.CompleteWithTools(context.Background(), "verify", set.Tools(), set)
	require.NoError(t, err)
	assert.Equal(t, "VERDICT: Likely Credible", reply)
	assert.Equal(t, []string{"google_search"}, rec.toolCalls)
}

func TestOpenAI_ToolErrorFedBack(t *testing.T) {
	var calls int32
	o, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := io.ReadAll(r.Body)
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = io.WriteString(w, openAIToolCall("call_1", "unknown_tool", `{}`))
			return
		}
		assert.Contains(t, string(body), "unknown tool")
		_, _ = io.WriteString(w, openAIText("done"))
	})

	set := echoTools()
	reply, err := o.CompleteWithTools(context.Background(), "x", set.Tools(), set)
	require.NoError(t, err)
	assert.Equal(t, "done", reply)
}

func TestOpenAI_AnalyzeImage(t *testing.T) {
	o, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "data:image/png;base64,")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, openAIText("a red square"))
	})

	reply, err := o.AnalyzeImage(context.Background(), ai.Image{Data: []byte{1, 2, 3}, MIMEType: "image/png"}, "describe")
	require.NoError(t, err)
	assert.Equal(t, "a red square", reply)
}

func TestOpenAI_EmptyResponse(t *testing.T) {
	o, _ := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c","object":"chat.completion","choices":[]}`)
	})

	_, err := o.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestHealth_ReflectsBreaker(t *testing.T) {
	o, _ := newTestOpenAI(t, func(http.ResponseWriter, *http.Request) {})
	status, err := o.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.False(t, status.CircuitOpen)
}

func TestNoOp(t *testing.T) {
	n := NewNoOp()
	_, err := n.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ai.ErrAIDisabled)
	_, err = n.CompleteWithTools(context.Background(), "x", nil, nil)
	assert.ErrorIs(t, err, ai.ErrAIDisabled)
	_, err = n.AnalyzeImage(context.Background(), ai.Image{}, "x")
	assert.ErrorIs(t, err, ai.ErrAIDisabled)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name, provider, claudeKey, openAIKey string
		wantName                             string
		wantOK                               bool
	}{
		{"claude with key", "claude", "k", "", "claude", true},
		{"claude without key", "claude", "", "k", "noop", false},
		{"openai with key", "openai", "", "k", "openai", true},
		{"none", "none", "k", "k", "noop", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := NewProvider(tt.provider, tt.claudeKey, tt.openAIKey)
			assert.Equal(t, tt.wantName, p.Name())
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestDecodeArgs(t *testing.T) {
	args := decodeArgs([]byte(`{"query":"mars","num":5,"nested":{"a":1}}`))
	assert.Equal(t, "mars", args["query"])
	assert.Equal(t, "5", args["num"])
	assert.Equal(t, `{"a":1}`, args["nested"])

	assert.Empty(t, decodeArgs(nil))
	assert.Empty(t, decodeArgs([]byte("not json")))
}

func TestConfig_Validate(t *testing.T) {
	valid := testConfig("")
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model", func(c *Config) { c.Model = "" }},
		{"zero tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"too many rounds", func(c *Config) { c.MaxToolRounds = 50 }},
		{"tiny input cap", func(c *Config) { c.MaxInputChars = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadOpenAIConfig_Env(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("LLM_MAX_TOOL_ROUNDS", "4")

	cfg := LoadOpenAIConfig()
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "gpt-4o", cfg.VisionModel)
	assert.Equal(t, 4, cfg.MaxToolRounds)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
}

func TestTruncate(t *testing.T) {
	s, cut := truncate(strings.Repeat("あ", 10), 20)
	assert.False(t, cut)
	assert.Equal(t, strings.Repeat("あ", 10), s)

	s, cut = truncate(strings.Repeat("あ", 30), 20)
	assert.True(t, cut)
	assert.True(t, strings.HasPrefix(s, strings.Repeat("あ", 20)+"..."))
}
