package ai

import (
	"context"
	"time"
)

// Provider defines the interface for LLM operations.
// This abstraction allows switching between backends (Claude, OpenAI, noop)
// without changing agent or pipeline logic.
type Provider interface {
	// Name identifies the backend ("claude", "openai", "noop").
	Name() string

	// Complete sends a single prompt and returns the text reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithTools runs the call / execute / feed-back loop until the
	// model stops requesting tools or the round limit is reached.
	CompleteWithTools(ctx context.Context, prompt string, tools []Tool, exec ToolExecutor) (string, error)

	// AnalyzeImage asks the model to describe or assess an image.
	AnalyzeImage(ctx context.Context, img Image, prompt string) (string, error)

	// Health returns the health status of the provider.
	Health(ctx context.Context) (*HealthStatus, error)
}

// Tool describes a function the model may call. All parameters are strings.
type Tool struct {
	Name        string
	Description string
	Parameters  []ToolParam
}

// ToolParam is one string argument of a Tool.
type ToolParam struct {
	Name        string
	Description string
	Required    bool
}

// ToolCall is a model request to run a tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]string
}

// ToolExecutor runs tool calls on behalf of the model. A returned error is
// reported back to the model as a failed tool result, not to the caller.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) (string, error)
}

// Image is raw image content with its MIME type ("image/jpeg", ...).
type Image struct {
	Data     []byte
	MIMEType string
}

// HealthStatus represents the health of an LLM provider.
type HealthStatus struct {
	Healthy     bool
	Latency     time.Duration
	Message     string
	CircuitOpen bool
}

// JSONSchema renders the tool parameters as a JSON schema object body
// ("properties" and "required"), the shape both SDKs accept.
func (t Tool) JSONSchema() (properties map[string]any, required []string) {
	properties = make(map[string]any, len(t.Parameters))
	for _, p := range t.Parameters {
		properties[p.Name] = map[string]any{
			"type":        "string",
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return properties, required
}
