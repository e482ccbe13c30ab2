package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func TestSuffixEmbedder_AppendsSuffix(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewSuffixEmbedder(inner, " ##")

	result, err := emb.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "hello world ##" {
		t.Errorf("expected suffixed text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestSuffixEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}
	emb := NewSuffixEmbedder(inner, " ##")

	_, err := emb.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestSimilarityFromDistance(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{0.25, 0.75},
		{1, 0},
		{1.8, 0},  // cosine distance beyond 1 clamps to zero
		{-0.5, 1}, // defensive clamp on malformed index output
	}
	for _, tt := range tests {
		if got := SimilarityFromDistance(tt.distance); got != tt.want {
			t.Errorf("SimilarityFromDistance(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestEmbedURLFor(t *testing.T) {
	got := EmbedURLFor("https://www.youtube.com/watch?v=abc123")
	want := "https://www.youtube.com/embed/abc123"
	if got != want {
		t.Errorf("EmbedURLFor = %q, want %q", got, want)
	}
}
