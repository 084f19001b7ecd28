package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"truthlens/internal/resilience/circuitbreaker"
	"truthlens/internal/resilience/retry"
	"truthlens/internal/usecase/ai"
)

const providerOpenAI = "openai"

// OpenAI implements ai.Provider using the OpenAI chat completions API.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder MetricsRecorder
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	cfg = cfg.withDefaults()

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized OpenAI provider",
		slog.String("model", cfg.Model),
		slog.String("vision_model", cfg.VisionModel),
		slog.Int("max_tool_rounds", cfg.MaxToolRounds))

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientCfg),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMConfig(providerOpenAI)),
		retryConfig:     retry.LLMConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// Name implements ai.Provider.
func (o *OpenAI) Name() string { return providerOpenAI }

// Complete implements ai.Provider.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	resp, err := o.send(ctx, "complete", openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: o.prepare(ctx, prompt)},
		},
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// CompleteWithTools implements ai.Provider.
func (o *OpenAI) CompleteWithTools(ctx context.Context, prompt string, tools []ai.Tool, exec ai.ToolExecutor) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	defs := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		props, required := t.JSONSchema()
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		})
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: o.prepare(ctx, prompt)},
	}

	var lastText string
	for round := 1; round <= o.config.MaxToolRounds; round++ {
		resp, err := o.send(ctx, "complete_with_tools", openai.ChatCompletionRequest{
			Model:     o.config.Model,
			MaxTokens: o.config.MaxTokens,
			Messages:  messages,
			Tools:     defs,
		})
		if err != nil {
			return "", err
		}

		choice := resp.Choices[0]
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			lastText = text
		}
		if len(choice.Message.ToolCalls) == 0 {
			o.metricsRecorder.RecordToolRounds(providerOpenAI, round)
			if lastText == "" {
				return "", ai.ErrEmptyResponse
			}
			return lastText, nil
		}

		messages = append(messages, choice.Message)
		for _, tc := range choice.Message.ToolCalls {
			call := ai.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: decodeArgs([]byte(tc.Function.Arguments)),
			}
			out, _ := runTool(ctx, exec, call, providerOpenAI, o.metricsRecorder)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    out,
				ToolCallID: tc.ID,
			})
		}
	}

	o.metricsRecorder.RecordToolRounds(providerOpenAI, o.config.MaxToolRounds)
	slog.WarnContext(ctx, "openai tool loop hit round limit",
		slog.Int("max_rounds", o.config.MaxToolRounds))
	if lastText == "" {
		return "", ErrToolLoopExceeded
	}
	return lastText, nil
}

// AnalyzeImage implements ai.Provider with an inline data URL.
func (o *OpenAI) AnalyzeImage(ctx context.Context, img ai.Image, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
	resp, err := o.send(ctx, "analyze_image", openai.ChatCompletionRequest{
		Model:     o.config.VisionModel,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// Health implements ai.Provider.
func (o *OpenAI) Health(_ context.Context) (*ai.HealthStatus, error) {
	return breakerHealth(o.circuitBreaker), nil
}

func (o *OpenAI) prepare(ctx context.Context, prompt string) string {
	truncated, cut := truncate(prompt, o.config.MaxInputChars)
	if cut {
		slog.WarnContext(ctx, "prompt truncated for openai api",
			slog.Int("original_length", len([]rune(prompt))),
			slog.Int("limit", o.config.MaxInputChars))
	}
	return truncated
}

func (o *OpenAI) send(ctx context.Context, operation string, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	resp, err := retry.Do(ctx, o.retryConfig, func() (openai.ChatCompletionResponse, error) {
		return circuitbreaker.Call(o.circuitBreaker, func() (openai.ChatCompletionResponse, error) {
			return o.doSend(ctx, operation, req)
		})
	})
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("openai %s failed: %w", operation, err)
	}
	return resp, nil
}

// doSend performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doSend(ctx context.Context, operation string, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	requestID := uuid.New().String()
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	o.metricsRecorder.RecordRequest(providerOpenAI, operation, err == nil, duration)

	if err != nil {
		slog.ErrorContext(ctx, "OpenAI API call failed",
			slog.String("request_id", requestID),
			slog.String("operation", operation),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		if code := openAIStatus(err); code > 0 {
			return resp, fmt.Errorf("openai api error: %w", &retry.HTTPError{
				StatusCode: code,
				Message:    http.StatusText(code),
			})
		}
		return resp, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return resp, ai.ErrEmptyResponse
	}

	slog.DebugContext(ctx, "OpenAI API call completed",
		slog.String("request_id", requestID),
		slog.String("operation", operation),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Duration("duration", duration))

	return resp, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
