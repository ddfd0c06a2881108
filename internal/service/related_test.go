package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
	"github.com/searchforge/searchforge/internal/llm"
)

// fakeLLM implements llm.Client for tests.
type fakeLLM struct {
	model       string
	chunks      []string
	streamErr   error
	toolResult  *llm.ToolResult
	toolErr     error
	streamCalls int
	toolCalls   int
	lastStream  []domain.ChatMessage
}

func (f *fakeLLM) Model() string {
	if f.model == "" {
		return "gpt-4o-mini"
	}
	return f.model
}

func (f *fakeLLM) StreamChat(_ context.Context, messages []domain.ChatMessage) (llm.TokenStream, error) {
	f.streamCalls++
	f.lastStream = messages
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &fakeTokenStream{chunks: f.chunks}, nil
}

func (f *fakeLLM) ChatWithTool(_ context.Context, _ []domain.ChatMessage, _ llm.ToolDefinition) (*llm.ToolResult, error) {
	f.toolCalls++
	if f.toolErr != nil {
		return nil, f.toolErr
	}
	return f.toolResult, nil
}

type fakeTokenStream struct {
	chunks []string
	pos    int
}

func (s *fakeTokenStream) Recv() (string, error) {
	if s.pos >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *fakeTokenStream) Close() error { return nil }

func TestGenerateFromToolCall(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{
		Arguments: `{"questions":["What is Y?","What about Z?"]}`,
	}}
	g := NewRelatedQuestionsGenerator(client, zap.NewNop())

	questions := g.Generate(context.Background(), "What is X?", nil)

	require.Len(t, questions, 2)
	assert.Equal(t, "What is Y?", questions[0].Question)
	assert.Equal(t, "What about Z?", questions[1].Question)
}

func TestGenerateCapsAtFive(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{
		Arguments: `{"questions":["a","b","c","d","e","f","g"]}`,
	}}
	g := NewRelatedQuestionsGenerator(client, zap.NewNop())

	questions := g.Generate(context.Background(), "q", nil)

	assert.Len(t, questions, 5)
}

func TestGenerateFallbackNumberedList(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{
		Content: "1. A?\n2. B?\n3. C?",
	}}
	g := NewRelatedQuestionsGenerator(client, zap.NewNop())

	questions := g.Generate(context.Background(), "q", nil)

	require.Len(t, questions, 3)
	assert.Equal(t, "A?", questions[0].Question)
	assert.Equal(t, "B?", questions[1].Question)
	assert.Equal(t, "C?", questions[2].Question)
}

func TestGenerateFallbackStripsQuotes(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{
		Content: "Here are some ideas:\n1. \"Quoted question?\"\nand a trailing remark",
	}}
	g := NewRelatedQuestionsGenerator(client, zap.NewNop())

	questions := g.Generate(context.Background(), "q", nil)

	require.Len(t, questions, 1)
	assert.Equal(t, "Quoted question?", questions[0].Question)
}

func TestGenerateNeverFails(t *testing.T) {
	client := &fakeLLM{toolErr: errors.New("network down")}
	g := NewRelatedQuestionsGenerator(client, zap.NewNop())

	assert.Empty(t, g.Generate(context.Background(), "q", nil))
}

func TestGenerateBadArgumentsYieldsEmpty(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{Arguments: "not json"}}
	g := NewRelatedQuestionsGenerator(client, zap.NewNop())

	assert.Empty(t, g.Generate(context.Background(), "q", nil))
}
