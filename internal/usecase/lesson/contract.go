package lesson

import (
	"context"
	"time"

	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
)

// Generator produces free-form text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever looks vocabulary words up in the video index.
type Retriever interface {
	Retrieve(ctx context.Context, candidates []candidate.Candidate, limit int) ([]domain.ScoredMatch, error)
}

// Request describes the lesson to generate. Age 0 and an empty Experience
// mean unspecified.
type Request struct {
	Topic      string
	Age        int
	Experience string
}

// VocabularyVideo pairs a vocabulary word with its best sign video, or a
// placeholder when none exists.
type VocabularyVideo struct {
	Word  string
	Match *domain.ScoredMatch
}

// Plan is a structured ASL lesson.
type Plan struct {
	Topic              string
	TargetAge          int
	ExperienceLevel    string
	Vocabulary         []string
	Objectives         []string
	GrammarFocus       []string
	PracticeActivities []string
	CulturalNotes      []string
	Difficulty         string
	Duration           string
	Videos             []VocabularyVideo
	VideosFound        int
	GeneratedAt        time.Time
}
