package domain

import "context"

// Generator is the optional free-text completion contract.
// Implementations are best-effort: callers wrap every invocation in a hard
// timeout and degrade to rule-based behavior on failure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
