package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank input query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrModelProviderError signals a generation model failure.
	ErrModelProviderError = errors.New("model provider error")
	// ErrRetrievalFailed signals that every candidate lookup against the index failed.
	ErrRetrievalFailed = errors.New("retrieval failed for all candidates")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
