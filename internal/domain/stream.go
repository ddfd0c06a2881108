package domain

import "encoding/json"

// Stream markers delimit the three logical segments of a response body.
// They are part of the wire contract shared with the UI and must not change.
const (
	LLMResponseMarker      = "\n\n__LLM_RESPONSE__\n\n"
	RelatedQuestionsMarker = "\n\n__RELATED_QUESTIONS__\n\n"
)

// EmptyContextWarning is prepended to the answer segment when the search
// engine returned nothing for the query.
const EmptyContextWarning = "(The search engine returned nothing for this query. " +
	"Please take the answer with a grain of salt.)\n\n"

// EventKind discriminates StreamEvent variants.
type EventKind int

const (
	// EventContexts carries the JSON-encoded search hits, always first.
	EventContexts EventKind = iota
	// EventWarning carries the empty-context warning sentence.
	EventWarning
	// EventAnswerChunk carries one LLM token chunk, in generation order.
	EventAnswerChunk
	// EventRelatedQuestions carries the follow-up question list, always last.
	EventRelatedQuestions
)

// StreamEvent is one logical unit produced by the orchestrator before wire
// serialization. Representing segments as events keeps generation logic
// independent of the string-marker protocol.
type StreamEvent struct {
	Kind      EventKind
	Contexts  []SearchHit
	Chunk     string
	Questions []RelatedQuestion
}

// Encode serializes the event into the marker-delimited wire protocol.
func (e StreamEvent) Encode() string {
	switch e.Kind {
	case EventContexts:
		contexts := e.Contexts
		if contexts == nil {
			contexts = []SearchHit{}
		}
		b, err := json.Marshal(contexts)
		if err != nil {
			return "[]" + LLMResponseMarker
		}
		return string(b) + LLMResponseMarker
	case EventWarning:
		return EmptyContextWarning
	case EventAnswerChunk:
		return e.Chunk
	case EventRelatedQuestions:
		questions := e.Questions
		if questions == nil {
			questions = []RelatedQuestion{}
		}
		b, err := json.Marshal(questions)
		if err != nil {
			b = []byte("[]")
		}
		return RelatedQuestionsMarker + string(b)
	}
	return ""
}
