package chi

import (
	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
	"github.com/signlearner/signdex/internal/usecase/lesson"
	"github.com/signlearner/signdex/internal/usecase/translate"
)

type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeEmbeddingProviderError errorCode = "embedding_provider_error"
	codeModelProviderError     errorCode = "model_provider_error"
	codeRetrievalFailed        errorCode = "retrieval_failed"
	codeNotFound               errorCode = "not_found"
	codeInternalError          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type candidateDTO struct {
	Text   string   `json:"text"`
	Kind   string   `json:"kind"`
	Weight float64  `json:"weight"`
	Tags   []string `json:"tags,omitempty"`
}

type phraseDTO struct {
	Phrase      string `json:"phrase"`
	Description string `json:"description"`
}

type videoDTO struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	EmbedURL   string  `json:"embed_url"`
	Duration   float64 `json:"duration"`
	Similarity float64 `json:"similarity"`
}

type matchDTO struct {
	Video          videoDTO `json:"video"`
	MatchedText    string   `json:"matched_text"`
	Weight         float64  `json:"weight"`
	EffectiveScore float64  `json:"effective_score"`
	Kind           string   `json:"kind"`
}

type searchResponse struct {
	Query         string         `json:"query"`
	Candidates    []candidateDTO `json:"candidates"`
	RulesApplied  []string       `json:"rules_applied"`
	Phrases       []phraseDTO    `json:"phrases,omitempty"`
	Confidence    float64        `json:"confidence"`
	ModelDegraded bool           `json:"model_degraded,omitempty"`
	Results       []matchDTO     `json:"results"`
}

type translateRequest struct {
	Text string `json:"text"`
}

type wordDTO struct {
	Word  string    `json:"word"`
	Found bool      `json:"found"`
	Match *matchDTO `json:"match,omitempty"`
}

type translateResponse struct {
	Kind       string    `json:"kind"`
	Original   string    `json:"original"`
	Notice     string    `json:"notice,omitempty"`
	Phrase     *matchDTO `json:"phrase,omitempty"`
	Words      []wordDTO `json:"words,omitempty"`
	Rules      []string  `json:"rules_applied,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
}

type lessonRequest struct {
	Topic      string `json:"topic"`
	Age        int    `json:"age,omitempty"`
	Experience string `json:"experience,omitempty"`
}

type lessonVideoDTO struct {
	Word  string    `json:"word"`
	Found bool      `json:"found"`
	Match *matchDTO `json:"match,omitempty"`
}

type lessonResponse struct {
	Topic              string           `json:"topic"`
	TargetAge          int              `json:"target_age,omitempty"`
	ExperienceLevel    string           `json:"experience_level,omitempty"`
	Vocabulary         []string         `json:"vocabulary"`
	Objectives         []string         `json:"lesson_objectives"`
	GrammarFocus       []string         `json:"grammar_focus"`
	PracticeActivities []string         `json:"practice_activities"`
	CulturalNotes      []string         `json:"cultural_notes"`
	Difficulty         string           `json:"difficulty_level"`
	Duration           string           `json:"estimated_duration"`
	Videos             []lessonVideoDTO `json:"videos"`
	VideosFound        int              `json:"videos_found"`
	GeneratedAt        string           `json:"generated_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func matchToDTO(m domain.ScoredMatch) matchDTO {
	return matchDTO{
		Video: videoDTO{
			ID:         m.Item.ID,
			Title:      m.Item.Title,
			URL:        m.Item.URL,
			EmbedURL:   m.Item.EmbedURL,
			Duration:   m.Item.Duration,
			Similarity: m.Item.Similarity,
		},
		MatchedText:    m.MatchedText,
		Weight:         m.CandidateWeight,
		EffectiveScore: m.EffectiveScore,
		Kind:           m.ResultKind,
	}
}

func candidatesToDTO(cands []candidate.Candidate) []candidateDTO {
	out := make([]candidateDTO, len(cands))
	for i, c := range cands {
		out[i] = candidateDTO{
			Text:   c.Text(),
			Kind:   string(c.Kind()),
			Weight: c.Weight(),
			Tags:   c.Tags(),
		}
	}
	return out
}

func phrasesToDTO(phrases []candidate.PhraseMatch) []phraseDTO {
	if len(phrases) == 0 {
		return nil
	}
	out := make([]phraseDTO, len(phrases))
	for i, p := range phrases {
		out[i] = phraseDTO{Phrase: p.Phrase, Description: p.Description}
	}
	return out
}

func translationToDTO(tr translate.Translation) translateResponse {
	resp := translateResponse{
		Kind:       string(tr.Kind),
		Original:   tr.Original,
		Notice:     tr.Notice,
		Rules:      tr.Rules,
		Confidence: tr.Confidence,
	}
	if tr.Phrase != nil {
		m := matchToDTO(*tr.Phrase)
		resp.Phrase = &m
	}
	for _, w := range tr.Words {
		dto := wordDTO{Word: w.Word, Found: w.Match != nil}
		if w.Match != nil {
			m := matchToDTO(*w.Match)
			dto.Match = &m
		}
		resp.Words = append(resp.Words, dto)
	}
	return resp
}

func lessonToDTO(p lesson.Plan) lessonResponse {
	resp := lessonResponse{
		Topic:              p.Topic,
		TargetAge:          p.TargetAge,
		ExperienceLevel:    p.ExperienceLevel,
		Vocabulary:         p.Vocabulary,
		Objectives:         p.Objectives,
		GrammarFocus:       p.GrammarFocus,
		PracticeActivities: p.PracticeActivities,
		CulturalNotes:      p.CulturalNotes,
		Difficulty:         p.Difficulty,
		Duration:           p.Duration,
		VideosFound:        p.VideosFound,
		GeneratedAt:        p.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, v := range p.Videos {
		dto := lessonVideoDTO{Word: v.Word, Found: v.Match != nil}
		if v.Match != nil {
			m := matchToDTO(*v.Match)
			dto.Match = &m
		}
		resp.Videos = append(resp.Videos, dto)
	}
	return resp
}
