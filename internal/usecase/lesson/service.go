// Package lesson generates structured ASL lesson plans: model-written
// vocabulary and lesson structure with rule-based fallbacks, plus a sign
// video for each vocabulary word.
package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/signlearner/signdex/internal/config"
	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
)

const vocabularyPromptTemplate = `You are an expert ASL instructor creating vocabulary lists for lessons.

TOPIC: %s
TARGET AGE: %s
EXPERIENCE LEVEL: %s

Generate exactly 6-8 essential ASL vocabulary words for this topic.
Return ONLY a comma-separated list of vocabulary words, nothing else.
Example format: hello, thank you, please, more, help, family

Vocabulary words:`

const structurePromptTemplate = `You are an expert ASL instructor and curriculum designer.

Create a lesson plan for ASL learning.

TOPIC: %s
TARGET AGE: %s
EXPERIENCE LEVEL: %s
VOCABULARY WORDS: %s

Generate a JSON response with this structure:
{
    "lesson_objectives": ["2-3 measurable learning goals"],
    "grammar_focus": ["2-3 ASL grammar concepts"],
    "practice_activities": ["3-4 interactive activities"],
    "cultural_notes": ["2-3 cultural context notes"],
    "difficulty_level": "beginner/intermediate/advanced",
    "estimated_duration": "X minutes"
}

Return ONLY the JSON response, no additional text.`

const maxVocabularyWords = 8

// Service generates lesson plans. Model failure at any step degrades to
// the rule-based fallback for that step; the lesson always comes back.
type Service struct {
	gen       Generator
	retriever Retriever
	search    config.SearchConfig
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a lesson service. gen may be nil; the service then runs on
// fallback content only.
func New(
	gen Generator, retriever Retriever,
	search config.SearchConfig, timeout time.Duration, logger *zap.Logger,
) *Service {
	return &Service{
		gen:       gen,
		retriever: retriever,
		search:    search,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateLesson builds a lesson plan for the request topic.
func (s *Service) GenerateLesson(ctx context.Context, req Request) (Plan, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return Plan{}, domain.ErrEmptyQuery
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vocabulary := s.generateVocabulary(ctx, topic, req)
	structure := s.generateStructure(ctx, topic, req, vocabulary)
	videos := s.findVideos(ctx, vocabulary)

	found := 0
	for _, v := range videos {
		if v.Match != nil {
			found++
		}
	}

	return Plan{
		Topic:              topic,
		TargetAge:          req.Age,
		ExperienceLevel:    req.Experience,
		Vocabulary:         vocabulary,
		Objectives:         structure.Objectives,
		GrammarFocus:       structure.GrammarFocus,
		PracticeActivities: structure.PracticeActivities,
		CulturalNotes:      structure.CulturalNotes,
		Difficulty:         structure.Difficulty,
		Duration:           structure.Duration,
		Videos:             videos,
		VideosFound:        found,
		GeneratedAt:        s.now(),
	}, nil
}

func (s *Service) generateVocabulary(ctx context.Context, topic string, req Request) []string {
	if s.gen == nil {
		return fallbackVocabulary(topic)
	}

	prompt := fmt.Sprintf(vocabularyPromptTemplate, topic, ageString(req.Age), experienceString(req.Experience))
	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Vocabulary generation failed, using fallback",
			zap.String("topic", topic), zap.Error(err))
		return fallbackVocabulary(topic)
	}

	words := parseVocabulary(out)
	if len(words) == 0 {
		return fallbackVocabulary(topic)
	}
	return words
}

func (s *Service) generateStructure(ctx context.Context, topic string, req Request, vocabulary []string) lessonStructure {
	if s.gen == nil {
		return fallbackStructure(topic)
	}

	prompt := fmt.Sprintf(structurePromptTemplate,
		topic, ageString(req.Age), experienceString(req.Experience), strings.Join(vocabulary, ", "))
	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Lesson structure generation failed, using fallback",
			zap.String("topic", topic), zap.Error(err))
		return fallbackStructure(topic)
	}

	structure, err := parseStructure(out)
	if err != nil {
		s.logger.Warn("Lesson structure unparseable, using fallback", zap.Error(err))
		return fallbackStructure(topic)
	}
	return structure
}

// findVideos looks up each vocabulary word concurrently, preserving word
// order. Words without a usable video keep a placeholder slot.
func (s *Service) findVideos(ctx context.Context, vocabulary []string) []VocabularyVideo {
	words := vocabulary
	if len(words) > s.search.MaxLessonVideos {
		words = words[:s.search.MaxLessonVideos]
	}

	videos := make([]VocabularyVideo, len(words))
	sem := make(chan struct{}, s.search.Concurrency)
	var wg sync.WaitGroup

	for i, word := range words {
		videos[i] = VocabularyVideo{Word: word}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, word string) {
			defer wg.Done()
			defer func() { <-sem }()

			matches, err := s.retriever.Retrieve(ctx, []candidate.Candidate{candidate.Primary(word)}, 1)
			if err != nil {
				s.logger.Warn("Lesson video lookup failed",
					zap.String("word", word), zap.Error(err))
				return
			}
			if len(matches) == 0 {
				return
			}
			m := matches[0]
			videos[i].Match = &m
		}(i, word)
	}
	wg.Wait()

	return videos
}

type lessonStructure struct {
	Objectives         []string `json:"lesson_objectives"`
	GrammarFocus       []string `json:"grammar_focus"`
	PracticeActivities []string `json:"practice_activities"`
	CulturalNotes      []string `json:"cultural_notes"`
	Difficulty         string   `json:"difficulty_level"`
	Duration           string   `json:"estimated_duration"`
}

// parseVocabulary cleans a comma-separated model response: label prefixes,
// numbering, bullets, and quoting all stripped, capped at 8 words.
func parseVocabulary(out string) []string {
	cleaned := strings.ToLower(strings.TrimSpace(out))
	for _, prefix := range []string{"vocabulary words:", "vocabulary:", "words:", "signs:", "asl:"} {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}

	var words []string
	for _, raw := range strings.Split(cleaned, ",") {
		w := strings.TrimSpace(raw)
		w = strings.TrimLeft(w, "0123456789.)•-* \t")
		w = strings.Trim(w, `"'[](){}`)
		w = strings.TrimSpace(w)
		if len(w) > 1 {
			words = append(words, w)
		}
		if len(words) == maxVocabularyWords {
			break
		}
	}
	return words
}

// parseStructure extracts the first JSON object from the model output.
func parseStructure(out string) (lessonStructure, error) {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start == -1 || end <= start {
		return lessonStructure{}, fmt.Errorf("no JSON object in model output")
	}

	var structure lessonStructure
	if err := json.Unmarshal([]byte(out[start:end+1]), &structure); err != nil {
		return lessonStructure{}, fmt.Errorf("parse lesson structure: %w", err)
	}
	if structure.Difficulty == "" {
		structure.Difficulty = "beginner"
	}
	if structure.Duration == "" {
		structure.Duration = "30 minutes"
	}
	return structure, nil
}

// fallbackVocabulary picks a canned word list by topic keywords.
func fallbackVocabulary(topic string) []string {
	lower := strings.ToLower(topic)
	switch {
	case containsAny(lower, "family"):
		return []string{"mother", "father", "sister", "brother", "grandmother", "grandfather"}
	case containsAny(lower, "food", "eat", "hungry"):
		return []string{"eat", "food", "hungry", "thirsty", "water", "bread", "milk"}
	case containsAny(lower, "color"):
		return []string{"red", "blue", "green", "yellow", "black", "white", "pink"}
	case containsAny(lower, "number", "count"):
		return []string{"one", "two", "three", "four", "five", "six", "seven", "eight"}
	case containsAny(lower, "greeting", "hello"):
		return []string{"hello", "goodbye", "thank you", "please", "sorry", "excuse me"}
	default:
		return []string{"hello", "thank you", "please", "more", "help", "family"}
	}
}

func fallbackStructure(topic string) lessonStructure {
	return lessonStructure{
		Objectives: []string{
			fmt.Sprintf("Learn ASL vocabulary related to %s", topic),
			"Practice basic ASL grammar and structure",
			"Develop signing confidence through practice",
		},
		GrammarFocus: []string{
			"Basic ASL sentence structure",
			"Facial expressions in ASL",
			"Non-manual markers",
		},
		PracticeActivities: []string{
			"Watch and repeat vocabulary videos",
			"Practice signing with a partner",
			"Create simple sentences using new vocabulary",
		},
		CulturalNotes: []string{
			"ASL is a complete, natural language",
			"Deaf culture values visual communication",
			"Facial expressions are grammatical in ASL",
		},
		Difficulty: "beginner",
		Duration:   "30 minutes",
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func ageString(age int) string {
	if age <= 0 {
		return "general"
	}
	return fmt.Sprintf("%d", age)
}

func experienceString(exp string) string {
	if exp == "" {
		return "beginner"
	}
	return exp
}
