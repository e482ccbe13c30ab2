package retrieve

import (
	"sort"

	"github.com/signlearner/signdex/internal/domain"
)

// mergeMatches deduplicates per-candidate hits by item id, keeping the
// highest effective score per item. On a score tie the earliest-generated
// candidate wins. Output is sorted by effective score descending and
// truncated to limit; every item id appears at most once.
func mergeMatches(perCandidate [][]domain.ScoredMatch, limit int) []domain.ScoredMatch {
	best := make(map[string]int)
	var merged []domain.ScoredMatch

	for _, matches := range perCandidate {
		for _, m := range matches {
			idx, seen := best[m.Item.ID]
			if !seen {
				best[m.Item.ID] = len(merged)
				merged = append(merged, m)
				continue
			}
			// Strictly greater: ties keep the earlier candidate's match.
			if m.EffectiveScore > merged[idx].EffectiveScore {
				merged[idx] = m
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EffectiveScore > merged[j].EffectiveScore
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
