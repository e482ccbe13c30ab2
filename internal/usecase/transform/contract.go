package transform

import "context"

// Generator produces free-form text from a prompt. Implementations wrap an
// OpenAI-compatible chat endpoint; a nil Generator disables model-assisted
// rewriting and the engine stays purely rule-based.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
