package llm

import (
	"context"

	"truthlens/internal/usecase/ai"
)

// NoOp is a provider for deployments without an API key. Every call fails
// with ai.ErrAIDisabled so callers take their deterministic fallbacks.
type NoOp struct{}

// NewNoOp creates a new NoOp provider.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) Name() string { return "noop" }

func (n *NoOp) Complete(context.Context, string) (string, error) {
	return "", ai.ErrAIDisabled
}

func (n *NoOp) CompleteWithTools(context.Context, string, []ai.Tool, ai.ToolExecutor) (string, error) {
	return "", ai.ErrAIDisabled
}

func (n *NoOp) AnalyzeImage(context.Context, ai.Image, string) (string, error) {
	return "", ai.ErrAIDisabled
}

func (n *NoOp) Health(context.Context) (*ai.HealthStatus, error) {
	return &ai.HealthStatus{Healthy: true, Message: "noop provider"}, nil
}

// NewProvider selects a provider by name ("claude", "openai", "none").
// A missing key for the selected provider yields NoOp and ok=false.
func NewProvider(name, claudeKey, openAIKey string) (provider ai.Provider, ok bool) {
	switch name {
	case providerClaude:
		if claudeKey != "" {
			return NewClaude(claudeKey, LoadClaudeConfig()), true
		}
	case providerOpenAI:
		if openAIKey != "" {
			return NewOpenAI(openAIKey, LoadOpenAIConfig()), true
		}
	}
	return NewNoOp(), false
}
