package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
	"github.com/searchforge/searchforge/internal/llm"
)

const maxRelatedQuestions = 5

var relatedQuestionsTool = llm.ToolDefinition{
	Name:        "ask_related_questions",
	Description: "Get a list of questions related to the original question and context.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"questions": {
				"type": "array",
				"items": {
					"type": "string",
					"description": "A related question to the original question and context."
				}
			}
		},
		"required": ["questions"]
	}`),
}

var ordinalPattern = regexp.MustCompile(`^\d[.)]\s*`)

// RelatedQuestionsGenerator produces follow-up questions for a query. It
// never fails the overall request: every error path degrades to nil.
type RelatedQuestionsGenerator struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewRelatedQuestionsGenerator creates a generator over the given LLM client.
func NewRelatedQuestionsGenerator(client llm.Client, logger *zap.Logger) *RelatedQuestionsGenerator {
	return &RelatedQuestionsGenerator{llm: client, logger: logger}
}

// Generate asks the model for follow-up questions via a forced tool call,
// falling back to free-text numbered-list extraction when the model ignores
// the tool. At most five questions are returned.
func (g *RelatedQuestionsGenerator) Generate(ctx context.Context, query string, contexts []domain.SearchHit) []domain.RelatedQuestion {
	prompt := BuildRelatedPrompt(contexts)

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: prompt},
		{Role: domain.RoleUser, Content: query},
	}

	result, err := g.llm.ChatWithTool(ctx, messages, relatedQuestionsTool)
	if err != nil {
		g.logger.Error("related questions call failed", zap.Error(err))
		return nil
	}

	if result.Arguments != "" {
		var args struct {
			Questions []string `json:"questions"`
		}
		if err := json.Unmarshal([]byte(result.Arguments), &args); err != nil {
			g.logger.Error("failed to parse related questions arguments", zap.Error(err))
			return nil
		}
		return toRelatedQuestions(args.Questions)
	}

	return toRelatedQuestions(extractNumberedQuestions(result.Content))
}

// extractNumberedQuestions pulls questions out of a free-text numbered list,
// stripping the ordinal marker and any wrapping quotation marks.
func extractNumberedQuestions(content string) []string {
	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !ordinalPattern.MatchString(line) {
			continue
		}
		q := strings.TrimSpace(ordinalPattern.ReplaceAllString(line, ""))
		q = strings.TrimPrefix(q, `"`)
		q = strings.TrimSuffix(q, `"`)
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}

func toRelatedQuestions(questions []string) []domain.RelatedQuestion {
	if len(questions) > maxRelatedQuestions {
		questions = questions[:maxRelatedQuestions]
	}
	out := make([]domain.RelatedQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, domain.RelatedQuestion{Question: q})
	}
	return out
}
