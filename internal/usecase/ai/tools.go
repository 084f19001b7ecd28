package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ToolFunc implements one tool.
type ToolFunc func(ctx context.Context, args map[string]string) (string, error)

// ToolSet is a ToolExecutor backed by a map of named handlers.
type ToolSet struct {
	tools    []Tool
	handlers map[string]ToolFunc
}

// NewToolSet creates an empty ToolSet.
func NewToolSet() *ToolSet {
	return &ToolSet{handlers: make(map[string]ToolFunc)}
}

// Register adds a tool. Registering the same name twice replaces the handler.
func (s *ToolSet) Register(tool Tool, fn ToolFunc) *ToolSet {
	if _, exists := s.handlers[tool.Name]; !exists {
		s.tools = append(s.tools, tool)
	}
	s.handlers[tool.Name] = fn
	return s
}

// Tools returns the declared tools in registration order.
func (s *ToolSet) Tools() []Tool {
	return s.tools
}

// Execute implements ToolExecutor.
func (s *ToolSet) Execute(ctx context.Context, call ToolCall) (string, error) {
	fn, ok := s.handlers[call.Name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}

	for _, tool := range s.tools {
		if tool.Name != call.Name {
			continue
		}
		for _, p := range tool.Parameters {
			if p.Required && strings.TrimSpace(call.Args[p.Name]) == "" {
				return "", fmt.Errorf("tool %s: missing argument %q", call.Name, p.Name)
			}
		}
	}

	slog.DebugContext(ctx, "executing tool call",
		slog.String("tool", call.Name),
		slog.String("call_id", call.ID))

	return fn(ctx, call.Args)
}
