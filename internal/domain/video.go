package domain

import "strings"

// RetrievedItem is one nearest-neighbor hit from the video index.
// Similarity is 1 - distance, clamped to [0, 1].
type RetrievedItem struct {
	ID         string
	Title      string
	URL        string
	EmbedURL   string
	Duration   float64
	Metadata   map[string]string
	Similarity float64
}

// ScoredMatch is a RetrievedItem annotated with the candidate that produced it.
// EffectiveScore = Similarity x CandidateWeight and is the ranking key.
type ScoredMatch struct {
	Item            RetrievedItem
	MatchedText     string
	CandidateWeight float64
	EffectiveScore  float64
	ResultKind      string // "primary" or "context"
}

// SimilarityFromDistance converts an index distance into a similarity score.
// Distances run [0, ~2] for cosine; anything past 1 clamps to zero relevance.
func SimilarityFromDistance(distance float64) float64 {
	s := 1 - distance
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// EmbedURLFor derives a player-embeddable URL from a watch URL.
func EmbedURLFor(url string) string {
	return strings.Replace(url, "watch?v=", "embed/", 1)
}
