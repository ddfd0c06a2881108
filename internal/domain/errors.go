package domain

import "errors"

var (
	// ErrNotFound indicates no record stored for the requested key
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSearchEngine indicates a failed or malformed search provider response
	ErrSearchEngine = errors.New("search engine error")
	// ErrUpstreamLLM indicates a failure talking to the LLM provider
	ErrUpstreamLLM = errors.New("llm provider error")
)
