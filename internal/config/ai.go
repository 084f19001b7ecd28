package config

import (
	"fmt"
	"strings"

	pkgconfig "truthlens/pkg/config"
)

// LLM provider names accepted by LLM_PROVIDER.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// AIConfig selects and authenticates the LLM provider.
type AIConfig struct {
	// Provider is one of claude, openai or none. Default: claude
	Provider string

	// Enabled controls whether LLM stages run at all. When false every
	// stage uses its deterministic fallback.
	// Default: true
	Enabled bool

	// ClaudeAPIKey is read from ANTHROPIC_API_KEY.
	ClaudeAPIKey string

	// OpenAIAPIKey is read from OPENAI_API_KEY.
	OpenAIAPIKey string
}

// LoadAIConfig loads AI configuration from environment variables.
func LoadAIConfig() (*AIConfig, error) {
	cfg := &AIConfig{
		Provider:     strings.ToLower(pkgconfig.GetEnvString("LLM_PROVIDER", ProviderClaude)),
		Enabled:      pkgconfig.GetEnvBool("AI_ENABLED", true),
		ClaudeAPIKey: pkgconfig.GetEnvString("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey: pkgconfig.GetEnvString("OPENAI_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the provider name. A missing key is not an error: the
// provider degrades to the no-op implementation.
func (c *AIConfig) Validate() error {
	switch c.Provider {
	case ProviderClaude, ProviderOpenAI, ProviderNone:
		return nil
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of claude, openai, none; got %q", c.Provider)
	}
}

// HasKey reports whether the selected provider has credentials.
func (c *AIConfig) HasKey() bool {
	switch c.Provider {
	case ProviderClaude:
		return c.ClaudeAPIKey != ""
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	default:
		return false
	}
}
