package translate

import (
	"context"

	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
)

// Transformer produces ASL-grammar candidates for a sentence.
type Transformer interface {
	Transform(ctx context.Context, query string) (candidate.TransformationResult, error)
}

// Retriever runs candidates against the video index.
type Retriever interface {
	Retrieve(ctx context.Context, candidates []candidate.Candidate, limit int) ([]domain.ScoredMatch, error)
}

// Kind is the translation strategy that won.
type Kind string

const (
	KindPhrase       Kind = "phrase"
	KindWordSequence Kind = "word_sequence"
	KindNoEquivalent Kind = "no_equivalent"
)

// WordResult is one slot of a word-sequence translation. Match is nil when
// no video covers the word; the slot stays so sequence order is preserved.
type WordResult struct {
	Word  string
	Match *domain.ScoredMatch
}

// Translation is the outcome of translating a sentence.
type Translation struct {
	Kind       Kind
	Original   string
	Notice     string
	Phrase     *domain.ScoredMatch
	Words      []WordResult
	Rules      []string
	Confidence float64
}
