package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/searchforge/searchforge/internal/domain"
)

const ragQueryPrompt = `You are a large language AI assistant that answers user questions. You are given a user question, and please write a clean, concise and accurate answer to the question. You will be given a set of related contexts to the question, each starting with a reference number like [[citation:x]], where x is a number. Please use the context and cite the context at the end of each sentence if applicable.

Your answer must be correct, accurate and written by an expert using an unbiased and professional tone. Please limit to 1024 tokens. Do not give any information that is not related to the question, and do not repeat. Say "information is missing on" followed by the related topic, if the given context does not provide sufficient information.

Please cite the contexts with the reference numbers, in the format [citation:x]. If a sentence comes from multiple contexts, please list all applicable citations, like [citation:3][citation:5]. Other than code and specific names and citations, your answer must be written in the same language as the question.

Here are the set of contexts:

%s

Remember, don't blindly repeat the contexts verbatim. And here is the user question:`

const moreQuestionsPrompt = `You are a helpful assistant that helps the user to ask related questions, based on user's original question and the related contexts. Please identify worthwhile topics that can be follow-ups, and write questions no longer than 20 words each. Please make sure that specifics, like events, names, locations, are included in follow up questions so they can be asked standalone. For example, if the original question asks about "the Manhattan project", in the follow up question, do not just say "the project", but use the full name "the Manhattan project". Your related questions must be in the same language as the original question.

Here are the contexts of the question:

%s

Remember, based on the original question and related contexts, suggest three such further questions. Do NOT repeat the original question. Each related question should be no longer than 20 words. Here is the original question:`

// instructionOverridePattern matches bracketed instruction-override tokens.
// Stripping them from the query is a basic injection guard; generated text
// and snippets are deliberately left untouched.
var instructionOverridePattern = regexp.MustCompile(`\[/?INST\]`)

// SanitizeQuery strips instruction-override tokens from a user query.
func SanitizeQuery(query string) string {
	return instructionOverridePattern.ReplaceAllString(query, "")
}

// BuildSystemPrompt renders the answer system prompt with the citation
// context block. Citation numbers are the 1-based positions of the hits.
func BuildSystemPrompt(contexts []domain.SearchHit) string {
	lines := make([]string, 0, len(contexts))
	for i, c := range contexts {
		lines = append(lines, fmt.Sprintf("[[citation:%d]] %s", i+1, c.Snippet))
	}
	return fmt.Sprintf(ragQueryPrompt, strings.Join(lines, "\n\n"))
}

// BuildRelatedPrompt renders the follow-up question prompt from the context
// snippets.
func BuildRelatedPrompt(contexts []domain.SearchHit) string {
	snippets := make([]string, 0, len(contexts))
	for _, c := range contexts {
		snippets = append(snippets, c.Snippet)
	}
	return fmt.Sprintf(moreQuestionsPrompt, strings.Join(snippets, "\n\n"))
}

// BuildChatHistory reconstructs LLM chat messages from stored turns. Turns
// missing either side of the exchange are skipped.
func BuildChatHistory(turns []domain.Turn) []domain.ChatMessage {
	var messages []domain.ChatMessage
	for _, t := range turns {
		if !t.Complete() {
			continue
		}
		messages = append(messages,
			domain.ChatMessage{Role: domain.RoleUser, Content: t.Query},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: *t.LLMResponse},
		)
	}
	return messages
}

// BuildAnswerMessages assembles the message list for the answer stream.
// Claude-family models take the system prompt packed without a parity check
// on the history; OpenAI-style models get a leading system message with the
// history spliced after it only when the history pairs up evenly.
func BuildAnswerMessages(claudeFamily bool, systemPrompt string, history []domain.ChatMessage, query string) []domain.ChatMessage {
	if claudeFamily {
		messages := make([]domain.ChatMessage, 0, len(history)+2)
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
		messages = append(messages, history...)
		return append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: query})
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: query},
	}
	if len(history) > 0 && len(history)%2 == 0 {
		spliced := make([]domain.ChatMessage, 0, len(messages)+len(history))
		spliced = append(spliced, messages[0])
		spliced = append(spliced, history...)
		spliced = append(spliced, messages[1])
		return spliced
	}
	return messages
}
