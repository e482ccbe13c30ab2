package retrieve

import (
	"testing"

	"github.com/signlearner/signdex/internal/domain"
)

func match(id, text string, score float64) domain.ScoredMatch {
	return domain.ScoredMatch{
		Item:           domain.RetrievedItem{ID: id},
		MatchedText:    text,
		EffectiveScore: score,
	}
}

func TestMergeMatches_MaxScorePerItem(t *testing.T) {
	merged := mergeMatches([][]domain.ScoredMatch{
		{match("v1", "first", 0.4), match("v2", "first", 0.9)},
		{match("v1", "second", 0.8)},
	}, 10)

	if len(merged) != 2 {
		t.Fatalf("expected 2 items, got %d", len(merged))
	}
	if merged[0].Item.ID != "v2" {
		t.Errorf("top item = %s, want v2", merged[0].Item.ID)
	}
	if merged[1].Item.ID != "v1" || merged[1].MatchedText != "second" {
		t.Errorf("v1 should carry the higher-scoring candidate, got %+v", merged[1])
	}
}

func TestMergeMatches_TieKeepsEarliestCandidate(t *testing.T) {
	merged := mergeMatches([][]domain.ScoredMatch{
		{match("v1", "first", 0.8)},
		{match("v1", "second", 0.8)},
	}, 10)

	if len(merged) != 1 {
		t.Fatalf("expected 1 item, got %d", len(merged))
	}
	if merged[0].MatchedText != "first" {
		t.Errorf("tie must keep the earliest-generated candidate, got %q", merged[0].MatchedText)
	}
}

func TestMergeMatches_UniqueIDs(t *testing.T) {
	merged := mergeMatches([][]domain.ScoredMatch{
		{match("v1", "a", 0.5), match("v1", "a", 0.6)},
		{match("v1", "b", 0.55)},
	}, 10)

	if len(merged) != 1 {
		t.Fatalf("item ids must be unique in output, got %d entries", len(merged))
	}
	if merged[0].EffectiveScore != 0.6 {
		t.Errorf("score = %v, want max 0.6", merged[0].EffectiveScore)
	}
}

func TestMergeMatches_SortAndTruncate(t *testing.T) {
	merged := mergeMatches([][]domain.ScoredMatch{
		{match("a", "q", 0.2), match("b", "q", 0.9), match("c", "q", 0.5)},
	}, 2)

	if len(merged) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(merged))
	}
	if merged[0].Item.ID != "b" || merged[1].Item.ID != "c" {
		t.Errorf("order = %s, %s; want b, c", merged[0].Item.ID, merged[1].Item.ID)
	}
}
