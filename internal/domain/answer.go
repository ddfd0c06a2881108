package domain

import "fmt"

// SearchHit is one web search result. Order is significant: citation
// numbering in generated answers is the 1-based position of the hit.
type SearchHit struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// RelatedQuestion is a suggested follow-up question.
type RelatedQuestion struct {
	Question string `json:"question"`
}

// Turn is one completed query/answer exchange in a conversation.
// A turn is never mutated after creation.
type Turn struct {
	Query            string            `json:"query"`
	SearchResults    []SearchHit       `json:"search_results"`
	LLMResponse      *string           `json:"llm_response"`
	RelatedQuestions []RelatedQuestion `json:"related_questions"`
}

// Complete reports whether the turn carries both a query and an answer.
// Only complete turns contribute to reconstructed chat history.
func (t Turn) Complete() bool {
	return t.Query != "" && t.LLMResponse != nil
}

// SchemaVersion tags every persisted record so legacy shapes are detected
// at read time instead of silently misinterpreted.
const SchemaVersion = 1

// SessionRecord is the flat-mode persisted record: the full raw transcript
// of the latest answer for one session, keyed by session id.
type SessionRecord struct {
	Schema int    `json:"schema"`
	Query  string `json:"query"`
	Txt    string `json:"txt"`
}

// HistoryRecord is the history-mode persisted record, keyed by
// "<session_id>_history" and capped at a configured number of turns.
type HistoryRecord struct {
	Schema int    `json:"schema"`
	Turns  []Turn `json:"turns"`
}

// ChatMessage is a role/content pair passed to the LLM capability.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query                    string `json:"query" form:"query"`
	SearchUUID               string `json:"search_uuid" form:"search_uuid"`
	GenerateRelatedQuestions *bool  `json:"generate_related_questions" form:"generate_related_questions"`
}

// WantsRelatedQuestions defaults to true when the field is omitted.
func (r QueryRequest) WantsRelatedQuestions() bool {
	return r.GenerateRelatedQuestions == nil || *r.GenerateRelatedQuestions
}

// Validate checks the request carries both required fields.
func (r QueryRequest) Validate() error {
	if r.Query == "" || r.SearchUUID == "" {
		return fmt.Errorf("%w: query and search_uuid must be provided", ErrInvalidRequest)
	}
	return nil
}
