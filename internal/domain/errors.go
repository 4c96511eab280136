package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("search query is required")
	// ErrInvalidQuery signals malformed search parameters.
	ErrInvalidQuery = errors.New("invalid search query")
	// ErrSourceUnavailable signals a failed institution call.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrRateLimited signals an exhausted per-institution request window.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotImplemented signals an institution without a live integration.
	ErrNotImplemented = errors.New("not implemented")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrLLMUnavailable signals an unreachable or unconfigured LLM provider.
	ErrLLMUnavailable = errors.New("llm provider unavailable")
	// ErrInvalidAnalysisType signals an unknown document analysis type.
	ErrInvalidAnalysisType = errors.New("invalid analysis type")
)
