// Package transform turns free-text English queries into ASL-grammar
// candidate strings for retrieval.
package transform

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/signlearner/signdex/internal/config"
	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
	"github.com/signlearner/signdex/internal/domain/grammar"
	"github.com/signlearner/signdex/internal/metrics"
)

const rewritePromptTemplate = `You are an ASL (American Sign Language) glossing assistant.
Rewrite the search query below into 3-5 short ASL-gloss variations suitable
for looking up sign videos. ASL grammar drops articles and to-be verbs,
puts time words first, and moves question words to the end.
Return one variation per line, nothing else.

Query: %s`

// Service is the grammar transformation engine. It applies the rule stages
// in a fixed order and optionally asks a generation model for extra
// variations; model failure never fails the transformation.
type Service struct {
	gen            Generator
	cfg            config.TransformConfig
	rewriteTimeout time.Duration
	logger         *zap.Logger
}

// New creates a transformation service. gen may be nil.
func New(gen Generator, cfg config.TransformConfig, rewriteTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{gen: gen, cfg: cfg, rewriteTimeout: rewriteTimeout, logger: logger}
}

// Transform runs the query through every stage and returns the candidate
// set. The original query is never mutated; every stage works on its own
// lowercased copy.
func (s *Service) Transform(ctx context.Context, query string) (candidate.TransformationResult, error) {
	original := strings.TrimSpace(query)
	if original == "" {
		return candidate.TransformationResult{}, domain.ErrEmptyQuery
	}
	// Trailing sentence punctuation is stripped once up front; idiom and
	// question rewrites match on clean token tails.
	lower := strings.TrimSpace(strings.TrimRight(strings.ToLower(original), "?!."))
	origTokens := strings.Fields(lower)

	set := candidate.NewSet()
	rules := newRuleList()

	phrases := matchKnownPhrases(lower)
	if len(phrases) > 0 {
		rules.add(candidate.RuleKnownPhrase)
	}

	if text := applyGrammarRules(lower); admit(set, text, lower, origTokens, candidate.RuleGrammar) {
		rules.add(candidate.RuleGrammar)
	}

	if isQuestion(original, lower) {
		if text := restructureQuestion(lower); admit(set, text, lower, origTokens, candidate.RuleQuestion) {
			rules.add(candidate.RuleQuestion)
		}
	}

	if text := applyIdioms(lower); admit(set, text, lower, origTokens, candidate.RuleIdiom) {
		rules.add(candidate.RuleIdiom)
	}

	if text := extractContentWords(lower); admit(set, text, lower, origTokens, candidate.RuleContentWords) {
		rules.add(candidate.RuleContentWords)
	}

	if text := applyVocabulary(lower); admit(set, text, lower, origTokens, candidate.RuleVocabulary) {
		rules.add(candidate.RuleVocabulary)
	}

	if s.addContextCandidates(set, lower) {
		rules.add(candidate.RuleContext)
	}

	modelDegraded := false
	if s.gen != nil {
		contributed, degraded := s.modelRewrite(ctx, lower, set)
		modelDegraded = degraded
		if contributed {
			rules.add(candidate.RuleModelRewrite)
		}
	}

	// Nothing survived: fall back to the query itself so retrieval always
	// has something to run.
	if set.Len() == 0 {
		set.Add(candidate.Primary(lower))
	}

	applied := rules.items()
	for _, r := range applied {
		metrics.TransformRulesTotal.WithLabelValues(r).Inc()
	}

	return candidate.TransformationResult{
		Original:      original,
		Candidates:    set.Items(),
		RulesApplied:  applied,
		Phrases:       phrases,
		Confidence:    s.confidence(len(applied), rules.has(candidate.RuleModelRewrite)),
		ModelDegraded: modelDegraded,
	}, nil
}

// admit adds a primary candidate when it is non-empty, differs from the
// lowercased original, and clears the candidate filter.
func admit(set *candidate.Set, text, lower string, origTokens []string, tag string) bool {
	text = strings.TrimSpace(text)
	if text == "" || text == lower {
		return false
	}
	if !isAcceptable(text, origTokens) {
		return false
	}
	return set.Add(candidate.Primary(text, tag))
}

// matchKnownPhrases scans for whole phrases that must not be split into
// per-word lookups. Deterministic order for stable output.
func matchKnownPhrases(lower string) []candidate.PhraseMatch {
	keys := make([]string, 0, len(grammar.Phrases))
	for p := range grammar.Phrases {
		keys = append(keys, p)
	}
	sort.Strings(keys)

	var matches []candidate.PhraseMatch
	for _, p := range keys {
		if strings.Contains(lower, p) {
			matches = append(matches, candidate.PhraseMatch{
				Phrase:       p,
				Description:  grammar.Phrases[p],
				KeepTogether: true,
			})
		}
	}
	return matches
}

// applyGrammarRules drops articles and copulas and moves time markers to
// the front. A single-token query is a valid lookup target for the copula
// and article signs themselves, so it passes through untouched.
func applyGrammarRules(lower string) string {
	tokens := strings.Fields(lower)
	if len(tokens) <= 1 {
		return lower
	}

	var timeFirst, rest []string
	for _, tok := range tokens {
		clean := grammar.StripPunct(tok)
		switch {
		case grammar.IsArticle(clean) || grammar.IsCopula(clean):
			// dropped
		case grammar.IsTimeMarker(clean):
			timeFirst = append(timeFirst, tok)
		default:
			rest = append(rest, tok)
		}
	}

	return strings.Join(append(timeFirst, rest...), " ")
}

// isQuestion detects questions by trailing "?", a leading WH-word, or an
// idiomatic question pattern.
func isQuestion(original, lower string) bool {
	if strings.HasSuffix(strings.TrimSpace(original), "?") {
		return true
	}
	tokens := strings.Fields(lower)
	if len(tokens) > 0 && grammar.IsWHWord(grammar.StripPunct(tokens[0])) {
		return true
	}
	for _, p := range grammar.QuestionPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// restructureQuestion rewrites a question into ASL order: an idiom table
// hit wins outright, otherwise the leading WH-word moves to the end of the
// grammar-rewritten remainder. No WH-word, no candidate.
func restructureQuestion(lower string) string {
	for _, idiom := range grammar.Idioms {
		if out := replaceWholePhrase(lower, idiom.English, idiom.ASL); out != lower {
			return out
		}
	}

	tokens := strings.Fields(lower)
	if len(tokens) < 2 {
		return ""
	}
	wh := grammar.StripPunct(tokens[0])
	if !grammar.IsWHWord(wh) {
		return ""
	}

	remainder := strings.TrimSpace(applyGrammarRules(strings.Join(tokens[1:], " ")))
	if remainder == "" {
		return ""
	}
	return remainder + " " + wh
}

// applyIdioms substitutes idiom table entries over the lowercased string.
// Table order matters: longer phrases precede their prefixes. Matches must
// sit on token boundaries, so "going to" never bites into "going tomorrow".
func applyIdioms(lower string) string {
	out := lower
	for _, idiom := range grammar.Idioms {
		out = replaceWholePhrase(out, idiom.English, idiom.ASL)
	}
	return out
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '\''
}

// replaceWholePhrase replaces every occurrence of phrase in s that is
// bounded by non-word bytes on both sides.
func replaceWholePhrase(s, phrase, repl string) string {
	var b strings.Builder
	i := 0
	for {
		j := strings.Index(s[i:], phrase)
		if j < 0 {
			b.WriteString(s[i:])
			return b.String()
		}
		start := i + j
		end := start + len(phrase)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			b.WriteString(s[i:start])
			b.WriteString(repl)
			i = end
		} else {
			b.WriteString(s[i : start+1])
			i = start + 1
		}
	}
}

// extractContentWords keeps only sign-bearing tokens.
func extractContentWords(lower string) string {
	var kept []string
	for _, tok := range strings.Fields(lower) {
		clean := grammar.StripPunct(tok)
		if len(clean) <= 1 || grammar.IsFunctionWord(clean) {
			continue
		}
		kept = append(kept, clean)
	}
	return strings.Join(kept, " ")
}

// applyVocabulary maps tokens to the form the video index documents signs
// under; unknown tokens map to themselves.
func applyVocabulary(lower string) string {
	tokens := strings.Fields(lower)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		clean := grammar.StripPunct(tok)
		if mapped, ok := grammar.Vocabulary[clean]; ok {
			out[i] = mapped
		} else {
			out[i] = tok
		}
	}
	return strings.Join(out, " ")
}

// addContextCandidates emits reduced-weight lookups for tokens whose signs
// are easily confused without context.
func (s *Service) addContextCandidates(set *candidate.Set, lower string) bool {
	added := false
	for _, tok := range strings.Fields(lower) {
		clean := grammar.StripPunct(tok)
		if _, ok := grammar.Disambiguation[clean]; !ok {
			continue
		}
		if set.Add(candidate.Context(clean, candidate.RuleContext)) {
			added = true
		}
	}
	return added
}

// modelRewrite asks the generation model for extra variations under a hard
// timeout. Returns (contributed, degraded); failure is logged and flagged,
// never propagated.
func (s *Service) modelRewrite(ctx context.Context, lower string, set *candidate.Set) (bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.rewriteTimeout)
	defer cancel()

	out, err := s.gen.Generate(ctx, fmt.Sprintf(rewritePromptTemplate, lower))
	if err != nil {
		metrics.TransformModelDegradedTotal.Inc()
		s.logger.Warn("Model rewrite failed, continuing rule-based", zap.Error(err))
		return false, true
	}

	origTokens := strings.Fields(lower)
	contributed := false
	for _, variant := range parseVariants(out) {
		if variant == lower || !isAcceptable(variant, origTokens) {
			continue
		}
		if set.Add(candidate.Primary(variant, candidate.RuleModelRewrite)) {
			contributed = true
		}
	}
	return contributed, false
}

const maxModelVariants = 5

// parseVariants splits model output into clean lowercase variation lines,
// stripping numbering, bullets, and quotes.
func parseVariants(out string) []string {
	var variants []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)- *\t")
		line = strings.Trim(line, `"'`)
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		variants = append(variants, line)
		if len(variants) == maxModelVariants {
			break
		}
	}
	return variants
}

// confidence scores how aggressively the query was transformed. The ceiling
// bounds the final value, model bonus included.
func (s *Service) confidence(ruleCount int, modelContributed bool) float64 {
	conf := s.cfg.ConfidenceBase + s.cfg.ConfidencePerRule*float64(ruleCount)
	if modelContributed {
		conf += s.cfg.ModelBonus
	}
	if conf > s.cfg.ConfidenceCeiling {
		conf = s.cfg.ConfidenceCeiling
	}
	return conf
}

// ruleList is an ordered set of rule tags.
type ruleList struct {
	order []string
	seen  map[string]struct{}
}

func newRuleList() *ruleList {
	return &ruleList{seen: make(map[string]struct{})}
}

func (r *ruleList) add(tag string) {
	if _, ok := r.seen[tag]; ok {
		return
	}
	r.seen[tag] = struct{}{}
	r.order = append(r.order, tag)
}

func (r *ruleList) has(tag string) bool {
	_, ok := r.seen[tag]
	return ok
}

func (r *ruleList) items() []string { return r.order }
