// Package retrieve runs candidate strings against the vector index
// concurrently and merges the hits into one deduplicated ranking.
package retrieve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/signlearner/signdex/internal/config"
	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
	"github.com/signlearner/signdex/internal/metrics"
)

// Service is the retrieval and ranking engine.
type Service struct {
	embed  Embedder
	repo   Repository
	cfg    config.SearchConfig
	logger *zap.Logger
}

// New creates a retrieval service.
func New(embed Embedder, repo Repository, cfg config.SearchConfig, logger *zap.Logger) *Service {
	return &Service{embed: embed, repo: repo, cfg: cfg, logger: logger}
}

// Retrieve embeds and searches every candidate, then merges per-candidate
// hits into a single ranking. One candidate failing costs only its own
// results; ErrRetrievalFailed is returned only when every candidate fails.
func (s *Service) Retrieve(
	ctx context.Context, candidates []candidate.Candidate, limit int,
) ([]domain.ScoredMatch, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	// Per-candidate K tracks the caller's limit, with TopKPerCandidate as
	// the floor: merge collapses duplicates across candidates, and the final
	// truncation needs enough hits to fill the requested page.
	topK := s.cfg.TopKPerCandidate
	if limit > topK {
		topK = limit
	}

	// Results keep candidate generation order so merge tie-breaking stays
	// deterministic regardless of goroutine scheduling.
	perCandidate := make([][]domain.ScoredMatch, len(candidates))
	errs := make([]error, len(candidates))

	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c candidate.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()

			matches, err := s.retrieveOne(ctx, c, topK)
			if err != nil {
				metrics.RetrievalCandidatesTotal.WithLabelValues("error").Inc()
				s.logger.Warn("Candidate retrieval failed",
					zap.String("candidate", c.Text()), zap.Error(err))
				errs[i] = err
				return
			}
			metrics.RetrievalCandidatesTotal.WithLabelValues("success").Inc()
			perCandidate[i] = matches
		}(i, c)
	}
	wg.Wait()

	var firstErr error
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed == len(candidates) {
		return nil, fmt.Errorf("%w: all %d candidates failed: %v",
			domain.ErrRetrievalFailed, len(candidates), firstErr)
	}

	return mergeMatches(perCandidate, limit), nil
}

// retrieveOne embeds one candidate and searches the index under the
// per-candidate timeout.
func (s *Service) retrieveOne(ctx context.Context, c candidate.Candidate, topK int) ([]domain.ScoredMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.QueryTimeoutSec)*time.Second)
	defer cancel()

	embResult, err := s.embed.Embed(ctx, c.Text())
	if err != nil {
		return nil, fmt.Errorf("embed candidate: %w", err)
	}

	items, err := s.repo.SearchNearest(ctx, embResult.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search candidate: %w", err)
	}

	matches := make([]domain.ScoredMatch, len(items))
	for i, item := range items {
		matches[i] = domain.ScoredMatch{
			Item:            item,
			MatchedText:     c.Text(),
			CandidateWeight: c.Weight(),
			EffectiveScore:  item.Similarity * c.Weight(),
			ResultKind:      string(c.Kind()),
		}
	}
	return matches, nil
}
