// Package translate decides whether a sentence is best shown as one phrase
// video or as a per-word sign sequence.
package translate

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/signlearner/signdex/internal/config"
	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
	"github.com/signlearner/signdex/internal/domain/grammar"
	"github.com/signlearner/signdex/internal/metrics"
)

const functionWordNotice = "This sentence is made of function words. ASL expresses " +
	"them through grammar, facial expressions, and spatial reference rather " +
	"than separate signs."

// Service is the phrase-vs-word-sequence strategy selector.
type Service struct {
	transformer Transformer
	retriever   Retriever
	cfg         config.TranslateConfig
	search      config.SearchConfig
	logger      *zap.Logger
}

// New creates a translation service.
func New(
	transformer Transformer, retriever Retriever,
	cfg config.TranslateConfig, search config.SearchConfig, logger *zap.Logger,
) *Service {
	return &Service{
		transformer: transformer,
		retriever:   retriever,
		cfg:         cfg,
		search:      search,
		logger:      logger,
	}
}

// TranslateSentence translates a sentence into either a single phrase match
// or an ordered per-word sequence with placeholders for missing signs.
func (s *Service) TranslateSentence(ctx context.Context, sentence string) (Translation, error) {
	original := strings.TrimSpace(sentence)
	if original == "" {
		return Translation{}, domain.ErrEmptyQuery
	}

	tokens := grammar.Tokens(original)
	if grammar.AllFunctionWords(tokens) {
		metrics.TranslateOutcomesTotal.WithLabelValues(string(KindNoEquivalent)).Inc()
		return Translation{
			Kind:     KindNoEquivalent,
			Original: original,
			Notice:   functionWordNotice,
		}, nil
	}

	res, err := s.transformer.Transform(ctx, original)
	if err != nil {
		return Translation{}, err
	}

	phraseMatch, phraseSim := s.bestPhraseMatch(ctx, res.Candidates)
	words := s.lookupWords(ctx, tokens)

	if s.usePhrase(res, phraseSim, wordAverage(words)) {
		metrics.TranslateOutcomesTotal.WithLabelValues(string(KindPhrase)).Inc()
		return Translation{
			Kind:       KindPhrase,
			Original:   original,
			Phrase:     phraseMatch,
			Rules:      res.RulesApplied,
			Confidence: res.Confidence,
		}, nil
	}

	metrics.TranslateOutcomesTotal.WithLabelValues(string(KindWordSequence)).Inc()
	return Translation{
		Kind:       KindWordSequence,
		Original:   original,
		Words:      words,
		Rules:      res.RulesApplied,
		Confidence: res.Confidence,
	}, nil
}

// usePhrase applies the selection rule: the phrase must clear the relevance
// floor, and then either a structural rewrite fired, the phrase similarity
// is high on its own, or it beats the per-word average by a clear margin.
func (s *Service) usePhrase(res candidate.TransformationResult, phraseSim, wordAvg float64) bool {
	if phraseSim <= s.cfg.MinPhraseSimilarity {
		return false
	}
	structural := res.HasAnyRule(
		candidate.RuleGrammar, candidate.RuleQuestion, candidate.RuleContentWords,
	)
	return structural ||
		phraseSim > s.cfg.HighConfidence ||
		phraseSim > wordAvg+s.cfg.PhraseAdvantage
}

// bestPhraseMatch retrieves the whole-sentence candidates and returns the
// top match with its raw similarity. Retrieval failure degrades to "no
// phrase found" so the word path can still answer.
func (s *Service) bestPhraseMatch(
	ctx context.Context, candidates []candidate.Candidate,
) (*domain.ScoredMatch, float64) {
	matches, err := s.retriever.Retrieve(ctx, candidates, 1)
	if err != nil {
		s.logger.Warn("Phrase retrieval failed, falling back to word sequence", zap.Error(err))
		return nil, 0
	}
	if len(matches) == 0 {
		return nil, 0
	}
	best := matches[0]
	return &best, best.Item.Similarity
}

// lookupWords searches each raw token as its own full-weight query,
// concurrently, preserving sentence order. Every token gets a lookup,
// function words included; failures and weak hits become placeholder slots.
func (s *Service) lookupWords(ctx context.Context, tokens []string) []WordResult {
	if len(tokens) > s.search.MaxSequenceTokens {
		tokens = tokens[:s.search.MaxSequenceTokens]
	}

	words := make([]WordResult, len(tokens))
	sem := make(chan struct{}, s.search.Concurrency)
	var wg sync.WaitGroup

	for i, tok := range tokens {
		words[i] = WordResult{Word: tok}

		clean := grammar.StripPunct(tok)
		if clean == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, word string) {
			defer wg.Done()
			defer func() { <-sem }()

			matches, err := s.retriever.Retrieve(ctx, []candidate.Candidate{candidate.Primary(word)}, 1)
			if err != nil || len(matches) == 0 {
				return
			}
			if matches[0].Item.Similarity <= s.cfg.MinPhraseSimilarity {
				return
			}
			m := matches[0]
			words[i].Match = &m
		}(i, clean)
	}
	wg.Wait()

	return words
}

// wordAverage is the mean best similarity across all word slots; slots
// without a sign contribute zero so missing vocabulary drags the word path
// down instead of hiding.
func wordAverage(words []WordResult) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		if w.Match != nil {
			sum += w.Match.Item.Similarity
		}
	}
	return sum / float64(len(words))
}
