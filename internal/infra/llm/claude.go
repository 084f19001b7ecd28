// Package llm provides the LLM providers behind ai.Provider: Claude
// (Anthropic) and OpenAI, both wrapped with retry and circuit breaker, plus a
// noop provider for deployments without an API key.
package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"truthlens/internal/resilience/circuitbreaker"
	"truthlens/internal/resilience/retry"
	"truthlens/internal/usecase/ai"
)

const providerClaude = "claude"

// Claude implements ai.Provider using Anthropic's Claude API.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder MetricsRecorder
}

// NewClaude creates a Claude provider. SDK-level retries are disabled; the
// retry package owns backoff.
func NewClaude(apiKey string, cfg Config) *Claude {
	cfg = cfg.withDefaults()

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("Initialized Claude provider",
		slog.String("model", cfg.Model),
		slog.Int("max_tool_rounds", cfg.MaxToolRounds))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMConfig(providerClaude)),
		retryConfig:     retry.LLMConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// Name implements ai.Provider.
func (c *Claude) Name() string { return providerClaude }

// Complete implements ai.Provider.
func (c *Claude) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	prompt = c.prepare(ctx, prompt)
	message, err := c.send(ctx, "complete", anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	text, _ := splitClaudeContent(message)
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// CompleteWithTools implements ai.Provider. Each round trip goes through
// retry and the circuit breaker; tool execution does not.
func (c *Claude) CompleteWithTools(ctx context.Context, prompt string, tools []ai.Tool, exec ai.ToolExecutor) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	prompt = c.prepare(ctx, prompt)
	toolParams := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		props, required := t.JSONSchema()
		toolParams = append(toolParams, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   required,
				},
			},
		})
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	var lastText string
	for round := 1; round <= c.config.MaxToolRounds; round++ {
		message, err := c.send(ctx, "complete_with_tools", anthropic.MessageNewParams{
			Model:     anthropic.Model(c.config.Model),
			MaxTokens: int64(c.config.MaxTokens),
			Messages:  messages,
			Tools:     toolParams,
		})
		if err != nil {
			return "", err
		}

		text, calls := splitClaudeContent(message)
		if text != "" {
			lastText = text
		}
		if message.StopReason != anthropic.StopReasonToolUse || len(calls) == 0 {
			c.metricsRecorder.RecordToolRounds(providerClaude, round)
			if lastText == "" {
				return "", ai.ErrEmptyResponse
			}
			return lastText, nil
		}

		messages = append(messages, message.ToParam())
		results := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
		for _, call := range calls {
			out, isErr := runTool(ctx, exec, call, providerClaude, c.metricsRecorder)
			results = append(results, anthropic.NewToolResultBlock(call.ID, out, isErr))
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	c.metricsRecorder.RecordToolRounds(providerClaude, c.config.MaxToolRounds)
	slog.WarnContext(ctx, "claude tool loop hit round limit",
		slog.Int("max_rounds", c.config.MaxToolRounds))
	if lastText == "" {
		return "", ErrToolLoopExceeded
	}
	return lastText, nil
}

// AnalyzeImage implements ai.Provider using a base64 image block.
func (c *Claude) AnalyzeImage(ctx context.Context, img ai.Image, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	message, err := c.send(ctx, "analyze_image", anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.VisionModel),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", err
	}

	text, _ := splitClaudeContent(message)
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// Health implements ai.Provider. It reports the circuit state without
// spending tokens.
func (c *Claude) Health(_ context.Context) (*ai.HealthStatus, error) {
	return breakerHealth(c.circuitBreaker), nil
}

func (c *Claude) prepare(ctx context.Context, prompt string) string {
	truncated, cut := truncate(prompt, c.config.MaxInputChars)
	if cut {
		slog.WarnContext(ctx, "prompt truncated for claude api",
			slog.Int("original_length", len([]rune(prompt))),
			slog.Int("limit", c.config.MaxInputChars))
	}
	return truncated
}

// send performs one API round trip with retry and circuit breaker.
func (c *Claude) send(ctx context.Context, operation string, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	message, err := retry.Do(ctx, c.retryConfig, func() (*anthropic.Message, error) {
		return circuitbreaker.Call(c.circuitBreaker, func() (*anthropic.Message, error) {
			return c.doSend(ctx, operation, params)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("claude %s failed: %w", operation, err)
	}
	return message, nil
}

// doSend performs the actual API call without retry or circuit breaker.
func (c *Claude) doSend(ctx context.Context, operation string, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	requestID := uuid.New().String()
	start := time.Now()

	message, err := c.client.Messages.New(ctx, params)
	duration := time.Since(start)
	c.metricsRecorder.RecordRequest(providerClaude, operation, err == nil, duration)

	if err != nil {
		slog.ErrorContext(ctx, "Claude API call failed",
			slog.String("request_id", requestID),
			slog.String("operation", operation),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			// expose the status so retry can tell 429/5xx from 4xx
			return nil, fmt.Errorf("claude api error: %w", &retry.HTTPError{
				StatusCode: apiErr.StatusCode,
				Message:    http.StatusText(apiErr.StatusCode),
			})
		}
		return nil, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, ai.ErrEmptyResponse
	}

	slog.DebugContext(ctx, "Claude API call completed",
		slog.String("request_id", requestID),
		slog.String("operation", operation),
		slog.String("stop_reason", string(message.StopReason)),
		slog.Duration("duration", duration))

	return message, nil
}

// splitClaudeContent joins the text blocks and collects tool-use blocks.
func splitClaudeContent(message *anthropic.Message) (string, []ai.ToolCall) {
	var (
		parts []string
		calls []ai.ToolCall
	)
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			if strings.TrimSpace(b.Text) != "" {
				parts = append(parts, b.Text)
			}
		case anthropic.ToolUseBlock:
			calls = append(calls, ai.ToolCall{
				ID:   b.ID,
				Name: b.Name,
				Args: decodeArgs(b.Input),
			})
		}
	}
	return strings.Join(parts, "\n"), calls
}

// decodeArgs flattens a tool input object into string arguments.
// Non-string values keep their JSON text.
func decodeArgs(raw []byte) map[string]string {
	args := map[string]string{}
	if len(raw) == 0 {
		return args
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return args
	}
	for k, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			args[k] = s
			continue
		}
		args[k] = string(v)
	}
	return args
}

// runTool executes one call; failures are returned as the tool output so the
// model can recover.
func runTool(ctx context.Context, exec ai.ToolExecutor, call ai.ToolCall, provider string, rec MetricsRecorder) (string, bool) {
	out, err := exec.Execute(ctx, call)
	rec.RecordToolCall(provider, call.Name, err == nil)
	if err != nil {
		slog.WarnContext(ctx, "tool call failed",
			slog.String("provider", provider),
			slog.String("tool", call.Name),
			slog.String("error", err.Error()))
		return "error: " + err.Error(), true
	}
	return out, false
}

func breakerHealth(cb *circuitbreaker.CircuitBreaker) *ai.HealthStatus {
	if cb.IsOpen() {
		return &ai.HealthStatus{
			Healthy:     false,
			CircuitOpen: true,
			Message:     fmt.Sprintf("%s circuit breaker open", cb.Name()),
		}
	}
	if n := cb.Counts().ConsecutiveFailures; n > 0 {
		return &ai.HealthStatus{Healthy: true, Message: fmt.Sprintf("%s, %d consecutive failures", cb.State(), n)}
	}
	return &ai.HealthStatus{Healthy: true, Message: cb.State().String()}
}
