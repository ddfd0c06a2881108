package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/searchforge/searchforge/internal/domain"
)

// TokenStream yields answer text chunks in generation order. Recv returns
// io.EOF when the stream is complete.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// ToolDefinition describes a function the model may call, with a JSON
// schema for its parameters.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolResult is the outcome of a tool-enabled chat call: either the raw JSON
// arguments of the invoked tool, or the model's free-text content when it
// ignored the tool.
type ToolResult struct {
	Arguments string
	Content   string
}

// Client is the LLM capability consumed by the orchestrator: stream
// completion tokens given messages, and one-shot structured calls.
type Client interface {
	Model() string
	StreamChat(ctx context.Context, messages []domain.ChatMessage) (TokenStream, error)
	ChatWithTool(ctx context.Context, messages []domain.ChatMessage, tool ToolDefinition) (*ToolResult, error)
}

// IsClaudeModel reports whether the configured model belongs to the Claude
// family, which takes its system prompt outside the message list.
func IsClaudeModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "claude-3")
}
