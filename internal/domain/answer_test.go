package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryRequestValidate(t *testing.T) {
	assert.NoError(t, QueryRequest{Query: "q", SearchUUID: "abc"}.Validate())
	assert.ErrorIs(t, QueryRequest{SearchUUID: "abc"}.Validate(), ErrInvalidRequest)
	assert.ErrorIs(t, QueryRequest{Query: "q"}.Validate(), ErrInvalidRequest)
}

func TestEncodeNilQuestionsAsEmptyList(t *testing.T) {
	out := StreamEvent{Kind: EventRelatedQuestions}.Encode()
	assert.Equal(t, RelatedQuestionsMarker+"[]", out)
}

func TestEncodeNilContextsAsEmptyList(t *testing.T) {
	out := StreamEvent{Kind: EventContexts}.Encode()
	assert.Equal(t, "[]"+LLMResponseMarker, out)
}
