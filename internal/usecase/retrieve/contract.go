package retrieve

import (
	"context"

	"github.com/signlearner/signdex/internal/domain"
)

// Embedder vectorizes candidate text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Repository performs nearest-neighbor lookup over the video index.
type Repository interface {
	SearchNearest(ctx context.Context, vector []float32, topK int) ([]domain.RetrievedItem, error)
}
