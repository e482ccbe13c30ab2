// Package video maps KNN hits on the video index into domain items.
package video

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/signlearner/signdex/internal/db"
	"github.com/signlearner/signdex/internal/domain"
)

// store is the consumer interface for video retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements nearest-neighbor lookup over the externally populated
// video index. The index schema is owned by the ingestion pipeline; this
// repository only reads.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a video repository.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// SearchNearest returns the topK nearest videos for a query vector,
// ordered by ascending distance as reported by the index.
func (r *Repo) SearchNearest(ctx context.Context, vector []float32, topK int) ([]domain.RetrievedItem, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"title", "url", "duration", "original_title", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("video index %s: %w", r.indexName, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("search knn %s: %w", r.indexName, err)
	}

	return r.parseResults(sr), nil
}

func (r *Repo) parseResults(sr *db.SearchResult) []domain.RetrievedItem {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	items := make([]domain.RetrievedItem, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		item, ok := r.parseEntry(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// parseEntry converts one hash entry into a RetrievedItem. Entries without
// a url are dropped: the player cannot render them.
func (r *Repo) parseEntry(entry db.SearchEntry) (domain.RetrievedItem, bool) {
	item := domain.RetrievedItem{
		ID:         strings.TrimPrefix(entry.Key, r.keyPrefix),
		Similarity: domain.SimilarityFromDistance(entry.Distance),
		Metadata:   make(map[string]string),
	}

	for k, v := range entry.Fields {
		switch k {
		case "title":
			item.Title = v
		case "url":
			item.URL = v
		case "duration":
			if d, err := strconv.ParseFloat(v, 64); err == nil {
				item.Duration = d
			}
		default:
			item.Metadata[k] = v
		}
	}

	if item.URL == "" {
		return domain.RetrievedItem{}, false
	}
	item.EmbedURL = domain.EmbedURLFor(item.URL)

	return item, true
}
