package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	pkgconfig "truthlens/pkg/config"
)

// ErrToolLoopExceeded is returned when the model keeps requesting tools past
// the round limit without producing any text.
var ErrToolLoopExceeded = errors.New("tool loop exceeded round limit")

const (
	defaultMaxTokens     = 1024
	defaultTimeout       = 60 * time.Second
	defaultMaxToolRounds = 5
	defaultMaxInputChars = 10000
)

// Config holds the per-provider call settings.
type Config struct {
	// Model is the text model identifier.
	Model string

	// VisionModel is used by AnalyzeImage. Defaults to Model.
	VisionModel string

	// MaxTokens is the maximum number of tokens for one response.
	MaxTokens int

	// Timeout bounds one public call, tool loop included.
	Timeout time.Duration

	// MaxToolRounds caps model round trips in CompleteWithTools.
	MaxToolRounds int

	// MaxInputChars truncates prompts longer than this many runes.
	MaxInputChars int

	// BaseURL overrides the API endpoint (proxies, tests). Empty keeps the SDK default.
	BaseURL string
}

// LoadClaudeConfig loads Claude settings from the environment.
//
// Environment variables:
//   - CLAUDE_MODEL (default: claude-sonnet-4-5-20250929)
//   - LLM_MAX_TOKENS (default: 1024)
//   - LLM_TIMEOUT (default: 60s)
//   - LLM_MAX_TOOL_ROUNDS (default: 5)
//   - LLM_MAX_INPUT_CHARS (default: 10000)
func LoadClaudeConfig() Config {
	model := pkgconfig.GetEnvString("CLAUDE_MODEL", string(anthropic.ModelClaudeSonnet4_5_20250929))
	return loadShared(model, model)
}

// LoadOpenAIConfig loads OpenAI settings from the environment.
//
// Environment variables:
//   - OPENAI_MODEL (default: gpt-4o-mini)
//   - OPENAI_VISION_MODEL (default: OPENAI_MODEL)
//   - OPENAI_BASE_URL (default: SDK endpoint)
//   - LLM_MAX_TOKENS, LLM_TIMEOUT, LLM_MAX_TOOL_ROUNDS, LLM_MAX_INPUT_CHARS
func LoadOpenAIConfig() Config {
	model := pkgconfig.GetEnvString("OPENAI_MODEL", openai.GPT4oMini)
	cfg := loadShared(model, pkgconfig.GetEnvString("OPENAI_VISION_MODEL", model))
	cfg.BaseURL = pkgconfig.GetEnvString("OPENAI_BASE_URL", "")
	return cfg
}

func loadShared(model, visionModel string) Config {
	return Config{
		Model:         model,
		VisionModel:   visionModel,
		MaxTokens:     pkgconfig.GetEnvInt("LLM_MAX_TOKENS", defaultMaxTokens),
		Timeout:       pkgconfig.GetEnvDuration("LLM_TIMEOUT", defaultTimeout),
		MaxToolRounds: pkgconfig.GetEnvInt("LLM_MAX_TOOL_ROUNDS", defaultMaxToolRounds),
		MaxInputChars: pkgconfig.GetEnvInt("LLM_MAX_INPUT_CHARS", defaultMaxInputChars),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	if c.MaxToolRounds < 1 || c.MaxToolRounds > 20 {
		return fmt.Errorf("max tool rounds %d out of range 1-20", c.MaxToolRounds)
	}
	if c.MaxInputChars < 100 {
		return fmt.Errorf("max input chars %d is below minimum 100", c.MaxInputChars)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.VisionModel == "" {
		c.VisionModel = c.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxToolRounds <= 0 {
		c.MaxToolRounds = defaultMaxToolRounds
	}
	if c.MaxInputChars <= 0 {
		c.MaxInputChars = defaultMaxInputChars
	}
	return c
}

// truncate cuts s to limit runes, marking the cut.
func truncate(s string, limit int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]) + "...\n(truncated)", true
}
