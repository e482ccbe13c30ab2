package transform

import (
	"strings"

	"github.com/signlearner/signdex/internal/domain/grammar"
)

const (
	minCandidateTokens = 1
	maxCandidateTokens = 5
)

// isAcceptable is the candidate filter, applied to every transformation
// product and model variant before admission. Rejects candidates that
// invent a time marker absent from the original query, fall outside the
// token budget, or consist entirely of function words.
func isAcceptable(text string, originalTokens []string) bool {
	tokens := strings.Fields(text)
	if len(tokens) < minCandidateTokens || len(tokens) > maxCandidateTokens {
		return false
	}

	if grammar.AllFunctionWords(tokens) {
		return false
	}

	origTime := make(map[string]struct{})
	for _, tok := range originalTokens {
		clean := grammar.StripPunct(tok)
		if grammar.IsTimeMarker(clean) {
			origTime[clean] = struct{}{}
		}
	}
	for _, tok := range tokens {
		clean := grammar.StripPunct(tok)
		if grammar.IsTimeMarker(clean) {
			if _, ok := origTime[clean]; !ok {
				return false
			}
		}
	}

	return true
}
