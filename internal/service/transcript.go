package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
)

// transcriptPattern splits a raw transcript into its three sections. The
// answer group is non-greedy so the optional related-questions marker is
// captured exactly once.
var transcriptPattern = regexp.MustCompile(`(?s)^(.*?)__LLM_RESPONSE__(.*?)(?:__RELATED_QUESTIONS__(.*))?$`)

// TranscriptSections are the trimmed raw sections of a completed transcript.
// All fields are nil when the transcript is malformed (missing the answer
// marker), e.g. a legacy record.
type TranscriptSections struct {
	SearchResults    *string
	LLMResponse      *string
	RelatedQuestions *string
}

// ParseTranscript splits a raw transcript back into its logical sections.
func ParseTranscript(raw string) TranscriptSections {
	idx := transcriptPattern.FindStringSubmatchIndex(raw)
	if idx == nil {
		return TranscriptSections{}
	}

	group := func(n int) *string {
		if idx[2*n] < 0 {
			return nil
		}
		s := strings.TrimSpace(raw[idx[2*n]:idx[2*n+1]])
		return &s
	}

	return TranscriptSections{
		SearchResults:    group(1),
		LLMResponse:      group(2),
		RelatedQuestions: group(3),
	}
}

// Turn decodes the parsed sections into a stored conversation turn.
// Sections that fail to decode are dropped rather than failing the turn.
func (s TranscriptSections) Turn(query string, logger *zap.Logger) domain.Turn {
	turn := domain.Turn{Query: query, LLMResponse: s.LLMResponse}

	if s.SearchResults != nil {
		if err := json.Unmarshal([]byte(*s.SearchResults), &turn.SearchResults); err != nil {
			logger.Warn("failed to decode search results section", zap.Error(err))
		}
	}
	if s.RelatedQuestions != nil {
		if err := json.Unmarshal([]byte(*s.RelatedQuestions), &turn.RelatedQuestions); err != nil {
			logger.Warn("failed to decode related questions section", zap.Error(err))
		}
	}
	return turn
}
