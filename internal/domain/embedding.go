package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
// Embedding is deterministic: the same text always maps to the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// SuffixEmbedder is a domain decorator that appends a fixed token before embedding.
// The video index is populated with the same suffix on every title, so queries
// must carry it too for the vectors to live in the same space.
type SuffixEmbedder struct {
	inner  Embedder
	suffix string
}

// NewSuffixEmbedder creates a decorator that appends suffix text.
func NewSuffixEmbedder(inner Embedder, suffix string) *SuffixEmbedder {
	return &SuffixEmbedder{inner: inner, suffix: suffix}
}

// Embed appends the suffix and delegates to the inner embedder.
func (e *SuffixEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, text+e.suffix)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("suffix embed: %w", err)
	}
	return result, nil
}
