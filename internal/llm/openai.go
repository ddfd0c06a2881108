package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/config"
	"github.com/searchforge/searchforge/internal/domain"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
// (OpenAI, Groq, or a proxied Anthropic deployment) selected by base URL.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a client from configuration.
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// StreamChat starts a streaming chat completion.
func (c *OpenAIClient) StreamChat(ctx context.Context, messages []domain.ChatMessage) (TokenStream, error) {
	c.logger.Debug("requesting answer stream",
		zap.String("model", c.model),
		zap.Int("messages", len(messages)),
	)
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamLLM, err)
	}
	return &openaiTokenStream{stream: stream}, nil
}

// ChatWithTool sends a non-streaming request that forces the given tool.
func (c *OpenAIClient) ChatWithTool(ctx context.Context, messages []domain.ChatMessage, tool ToolDefinition) (*ToolResult, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  toOpenAIMessages(messages),
		MaxTokens: 1000,
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: tool.Name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamLLM, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", domain.ErrUpstreamLLM)
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		return &ToolResult{Arguments: msg.ToolCalls[0].Function.Arguments}, nil
	}
	return &ToolResult{Content: msg.Content}, nil
}

type openaiTokenStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiTokenStream) Recv() (string, error) {
	// Skip keep-alive responses that carry no choices.
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) > 0 {
			return resp.Choices[0].Delta.Content, nil
		}
	}
}

func (s *openaiTokenStream) Close() error {
	return s.stream.Close()
}

func toOpenAIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
