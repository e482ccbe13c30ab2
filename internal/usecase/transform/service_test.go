package transform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/signlearner/signdex/internal/config"
	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
	"github.com/signlearner/signdex/internal/domain/grammar"
)

type mockGenerator struct {
	out   string
	err   error
	block bool
}

func (m *mockGenerator) Generate(ctx context.Context, _ string) (string, error) {
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.out, m.err
}

func testConfig() config.TransformConfig {
	return config.TransformConfig{
		ConfidenceBase:    0.2,
		ConfidencePerRule: 0.3,
		ConfidenceCeiling: 0.95,
		ModelBonus:        0.1,
	}
}

func newTestService(gen Generator) *Service {
	return New(gen, testConfig(), 50*time.Millisecond, zap.NewNop())
}

func candidateTexts(res candidate.TransformationResult) []string {
	texts := make([]string, len(res.Candidates))
	for i, c := range res.Candidates {
		texts[i] = c.Text()
	}
	return texts
}

func hasCandidate(res candidate.TransformationResult, text string) bool {
	for _, c := range res.Candidates {
		if c.Text() == text {
			return true
		}
	}
	return false
}

func TestTransform_EmptyQuery(t *testing.T) {
	svc := newTestService(nil)

	if _, err := svc.Transform(context.Background(), "   "); !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestTransform_SingleWordCopulaPreserved(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "is")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Text() != "is" {
		t.Fatalf("single-word copula must survive verbatim, got %v", candidateTexts(res))
	}
	if len(res.RulesApplied) != 0 {
		t.Errorf("no rules should fire, got %v", res.RulesApplied)
	}
	if res.Confidence != 0.2 {
		t.Errorf("confidence = %v, want base 0.2", res.Confidence)
	}
}

func TestTransform_KnownPhrase(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "Hello there")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Phrases) != 1 || res.Phrases[0].Phrase != "hello there" {
		t.Fatalf("expected known phrase match, got %+v", res.Phrases)
	}
	if !res.Phrases[0].KeepTogether {
		t.Error("known phrase must be flagged keep-together")
	}
	if !res.HasRule(candidate.RuleKnownPhrase) {
		t.Errorf("rules = %v, want known_phrase", res.RulesApplied)
	}
	if !hasCandidate(res, "hello") {
		t.Errorf("content extraction should yield %q, got %v", "hello", candidateTexts(res))
	}

	// "there" is ambiguous and should surface as a reduced-weight context lookup.
	var ctxCand *candidate.Candidate
	for i, c := range res.Candidates {
		if c.Kind() == candidate.KindContext {
			ctxCand = &res.Candidates[i]
		}
	}
	if ctxCand == nil {
		t.Fatal("expected a context candidate for \"there\"")
	}
	if ctxCand.Text() != "there" || ctxCand.Weight() != candidate.ContextWeight {
		t.Errorf("context candidate = %q weight %v", ctxCand.Text(), ctxCand.Weight())
	}
}

func TestTransform_GrammarRewriteTimeFirst(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "I am going tomorrow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCandidate(res, "tomorrow i going") {
		t.Errorf("grammar rewrite should front the time marker, got %v", candidateTexts(res))
	}
	if !hasCandidate(res, "me going tomorrow") {
		t.Errorf("idiom substitution should rewrite \"i am\", got %v", candidateTexts(res))
	}
	if !res.HasRule(candidate.RuleGrammar) || !res.HasRule(candidate.RuleIdiom) {
		t.Errorf("rules = %v", res.RulesApplied)
	}
}

func TestTransform_QuestionIdiom(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "What is your name?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCandidate(res, "your name what") {
		t.Errorf("idiomatic question should restructure, got %v", candidateTexts(res))
	}
	if !res.HasRule(candidate.RuleQuestion) {
		t.Errorf("rules = %v, want question_restructure", res.RulesApplied)
	}
	if !res.HasRule(candidate.RuleKnownPhrase) {
		t.Errorf("rules = %v, want known_phrase", res.RulesApplied)
	}
}

func TestTransform_QuestionWHMovedToEnd(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "why dog run?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCandidate(res, "dog run why") {
		t.Errorf("WH-word should move clause-final, got %v", candidateTexts(res))
	}
}

func TestTransform_QuestionWithoutWHWord(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "coffee good?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HasRule(candidate.RuleQuestion) {
		t.Errorf("no WH-word means no restructure candidate, rules = %v", res.RulesApplied)
	}
}

func TestTransform_VocabularyMapping(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "mother")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCandidate(res, "mom") {
		t.Errorf("vocabulary mapping should yield %q, got %v", "mom", candidateTexts(res))
	}
	if !res.HasRule(candidate.RuleVocabulary) {
		t.Errorf("rules = %v", res.RulesApplied)
	}
}

func TestTransform_FallbackToOriginal(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Transform(context.Background(), "zebra")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Text() != "zebra" {
		t.Fatalf("expected fallback to original, got %v", candidateTexts(res))
	}
	if len(res.RulesApplied) != 0 {
		t.Errorf("fallback carries no rules, got %v", res.RulesApplied)
	}
}

func TestTransform_ModelVariantsFiltered(t *testing.T) {
	gen := &mockGenerator{out: "1. hello greeting\n2. tomorrow hello\nthe of and\nsign hello greeting wave hand extra"}
	svc := newTestService(gen)

	res, err := svc.Transform(context.Background(), "hello friend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCandidate(res, "hello greeting") {
		t.Errorf("valid model variant should be admitted, got %v", candidateTexts(res))
	}
	if hasCandidate(res, "tomorrow hello") {
		t.Error("variant introducing a time marker must be rejected")
	}
	if hasCandidate(res, "the of and") {
		t.Error("function-word-only variant must be rejected")
	}
	if hasCandidate(res, "sign hello greeting wave hand extra") {
		t.Error("over-long variant must be rejected")
	}
	if res.ModelDegraded {
		t.Error("successful model call must not be flagged degraded")
	}
	if !res.HasRule(candidate.RuleModelRewrite) {
		t.Errorf("rules = %v, want model_rewrite", res.RulesApplied)
	}
	// One rule at 0.3 over base 0.2, plus the model bonus.
	if diff := res.Confidence - 0.6; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("confidence = %v, want 0.6", res.Confidence)
	}
}

func TestTransform_ModelTimeoutDegrades(t *testing.T) {
	gen := &mockGenerator{block: true}
	svc := New(gen, testConfig(), 10*time.Millisecond, zap.NewNop())

	res, err := svc.Transform(context.Background(), "hello friend")
	if err != nil {
		t.Fatalf("model timeout must not fail the transformation: %v", err)
	}
	if !res.ModelDegraded {
		t.Error("expected ModelDegraded after timeout")
	}
	if len(res.Candidates) == 0 {
		t.Error("rule-based candidates must survive model failure")
	}
}

func TestTransform_ModelErrorDegrades(t *testing.T) {
	gen := &mockGenerator{err: errors.New("model down")}
	svc := newTestService(gen)

	res, err := svc.Transform(context.Background(), "good morning friend")
	if err != nil {
		t.Fatalf("model error must not fail the transformation: %v", err)
	}
	if !res.ModelDegraded {
		t.Error("expected ModelDegraded after model error")
	}
}

func TestTransform_ConfidenceCeiling(t *testing.T) {
	svc := newTestService(nil)

	// Fires known_phrase, grammar_rewrite, question_restructure,
	// content_extraction: 4 rules cap at the ceiling.
	res, err := svc.Transform(context.Background(), "What is your name?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence = %v, want ceiling 0.95", res.Confidence)
	}

	// The model bonus is bounded by the same ceiling.
	gen := &mockGenerator{out: "name today what"}
	res, err = newTestService(gen).Transform(context.Background(), "What is your name today?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.HasRule(candidate.RuleModelRewrite) {
		t.Fatalf("model variant should be admitted, rules = %v", res.RulesApplied)
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence = %v, model bonus must not pierce the ceiling", res.Confidence)
	}
}

func TestApplyIdioms_TokenBoundaries(t *testing.T) {
	cases := map[string]string{
		"i am going tomorrow": "me going tomorrow",
		"going to school":     "will school",
		"thank you so much":   "thank so much",
		"maim are you ok":     "maim are you ok",
	}
	for in, want := range cases {
		if got := applyIdioms(in); got != want {
			t.Errorf("applyIdioms(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTransform_OverlongCandidatesFiltered(t *testing.T) {
	svc := newTestService(nil)

	// Every rule stage produces six-plus tokens here, so the candidate
	// filter rejects them all and the fallback is the only survivor.
	res, err := svc.Transform(context.Background(), "the doctor teacher student mother father sister brother")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Text() != "the doctor teacher student mother father sister brother" {
		t.Fatalf("expected fallback only, got %v", candidateTexts(res))
	}
	if len(res.RulesApplied) != 0 {
		t.Errorf("filtered stages must not count as applied, got %v", res.RulesApplied)
	}
}

func TestTransform_RetransformationIsStable(t *testing.T) {
	svc := newTestService(nil)

	// Feeding an already-rewritten candidate back through must not grow it,
	// re-introduce dropped word classes, or invent time markers.
	res, err := svc.Transform(context.Background(), "tomorrow i going")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range res.Candidates {
		tokens := strings.Fields(c.Text())
		if len(tokens) > 3 {
			t.Errorf("candidate %q grew beyond the input", c.Text())
		}
		for _, tok := range tokens {
			clean := grammar.StripPunct(tok)
			if grammar.IsArticle(clean) || grammar.IsCopula(clean) {
				t.Errorf("candidate %q re-introduced %q", c.Text(), tok)
			}
			if grammar.IsTimeMarker(clean) && clean != "tomorrow" {
				t.Errorf("candidate %q invented time marker %q", c.Text(), tok)
			}
		}
	}
}

func TestTransform_DedupeFirstWins(t *testing.T) {
	gen := &mockGenerator{out: "tomorrow i going"}
	svc := newTestService(gen)

	// Grammar rewrite already produced this exact text; the model duplicate
	// must not appear twice or steal the earlier tags.
	res, err := svc.Transform(context.Background(), "I am going tomorrow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, c := range res.Candidates {
		if c.Text() == "tomorrow i going" {
			count++
			if c.Tags()[0] != candidate.RuleGrammar {
				t.Errorf("first occurrence should keep its tag, got %v", c.Tags())
			}
		}
	}
	if count != 1 {
		t.Errorf("duplicate candidate admitted %d times", count)
	}
	if res.HasRule(candidate.RuleModelRewrite) {
		t.Errorf("model contributed nothing new, rules = %v", res.RulesApplied)
	}
}
