package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"truthlens/internal/observability/logging"
)

var (
	// ErrAIDisabled is returned when no LLM provider is configured.
	ErrAIDisabled = errors.New("AI features are disabled")
	// ErrInvalidPrompt is returned when the prompt or text is empty.
	ErrInvalidPrompt = errors.New("prompt cannot be empty")
	// ErrInvalidImage is returned when image data is missing.
	ErrInvalidImage = errors.New("image data cannot be empty")
	// ErrEmptyResponse is returned when the model replies with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Task selects the prompt used by Analyze.
type Task string

const (
	TaskVerify    Task = "verify"
	TaskSummarize Task = "summarize"
	TaskGeneral   Task = "general"
)

// Service provides LLM-backed operations to agents and the pipeline.
// It validates input, checks the feature flag and logs each call.
type Service struct {
	provider  Provider
	aiEnabled bool
}

// NewService creates a new AI service with the given provider.
// A nil provider disables the service regardless of aiEnabled.
func NewService(provider Provider, aiEnabled bool) *Service {
	return &Service{
		provider:  provider,
		aiEnabled: aiEnabled && provider != nil,
	}
}

// Enabled reports whether calls will reach a provider.
func (s *Service) Enabled() bool {
	return s != nil && s.aiEnabled
}

// ProviderName returns the provider name, or "none" when disabled.
func (s *Service) ProviderName() string {
	if !s.Enabled() {
		return "none"
	}
	return s.provider.Name()
}

// Complete sends a single prompt.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrAIDisabled
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidPrompt
	}

	logger := logging.FromContext(ctx)
	logger.Debug("llm completion requested",
		"provider", s.provider.Name(),
		"prompt_length", len(prompt))

	reply, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("llm completion failed",
			"provider", s.provider.Name(),
			"error", err)
		return "", fmt.Errorf("llm complete: %w", err)
	}
	return reply, nil
}

// CompleteWithTools runs a tool-enabled completion against the tools in set.
func (s *Service) CompleteWithTools(ctx context.Context, prompt string, set *ToolSet) (string, error) {
	if !s.Enabled() {
		return "", ErrAIDisabled
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidPrompt
	}
	if set == nil || len(set.Tools()) == 0 {
		return s.Complete(ctx, prompt)
	}

	logger := logging.FromContext(ctx)
	logger.Debug("llm tool completion requested",
		"provider", s.provider.Name(),
		"tools", len(set.Tools()))

	reply, err := s.provider.CompleteWithTools(ctx, prompt, set.Tools(), set)
	if err != nil {
		logger.Warn("llm tool completion failed",
			"provider", s.provider.Name(),
			"error", err)
		return "", fmt.Errorf("llm complete with tools: %w", err)
	}
	return reply, nil
}

// DescribeImage runs a vision prompt over img.
func (s *Service) DescribeImage(ctx context.Context, img Image, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrAIDisabled
	}
	if len(img.Data) == 0 {
		return "", ErrInvalidImage
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/jpeg"
	}

	reply, err := s.provider.AnalyzeImage(ctx, img, prompt)
	if err != nil {
		logging.FromContext(ctx).Warn("llm image analysis failed",
			"provider", s.provider.Name(),
			"error", err)
		return "", fmt.Errorf("llm analyze image: %w", err)
	}
	return reply, nil
}

// Analyze runs one of the canned analysis prompts over text, letting the
// model call the tools in set.
func (s *Service) Analyze(ctx context.Context, text string, task Task, set *ToolSet) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrInvalidPrompt
	}
	return s.CompleteWithTools(ctx, AnalysisPrompt(text, task), set)
}

// Health checks the health of the provider.
func (s *Service) Health(ctx context.Context) (*HealthStatus, error) {
	if !s.Enabled() {
		return &HealthStatus{Healthy: false, Message: ErrAIDisabled.Error()}, nil
	}
	return s.provider.Health(ctx)
}

// AnalysisPrompt builds the prompt for an Analyze task.
func AnalysisPrompt(text string, task Task) string {
	switch task {
	case TaskVerify:
		return fmt.Sprintf(`Analyze this text for credibility and authenticity.

Text: %s

Tasks:
1. Assess credibility (score 0-100)
2. Identify key claims that need verification
3. Use the google_search tool to verify important claims
4. Use the fact_check tool if specific claims are made
5. Provide verdict: Highly Credible, Likely Credible, Needs Verification, or Low Credibility
6. List credibility indicators and concerns

Provide detailed analysis with evidence from your searches.`, text)
	case TaskSummarize:
		return fmt.Sprintf(`Summarize and analyze this text.

Text: %s

Tasks:
1. Create a concise 2-3 sentence summary
2. Extract 3-5 key points
3. Identify main topics
4. Assess sentiment (Positive/Negative/Neutral)
5. Use google_search if you need context about unfamiliar topics`, text)
	default:
		return fmt.Sprintf(`Analyze this text comprehensively.

Text: %s

Tasks:
1. Verify credibility using google_search
2. Summarize key points
3. Assess impact and relevance
4. Check for misinformation using fact_check
5. Provide actionable insights`, text)
	}
}
