// Package candidate holds the query rewrite value objects shared between the
// transformation, retrieval, and translation layers.
package candidate

import "strings"

// Kind distinguishes direct lookups from disambiguation support queries.
type Kind string

const (
	// KindPrimary marks a candidate that targets a key concept directly.
	KindPrimary Kind = "primary"
	// KindContext marks a candidate generated only to disambiguate an
	// ambiguous contextual word. Its matches are supporting evidence.
	KindContext Kind = "context"
)

// Default retrieval weights per kind.
const (
	PrimaryWeight = 1.0
	ContextWeight = 0.7
)

// Rule tags recorded by the transformation engine.
const (
	RuleKnownPhrase     = "known_phrase"
	RuleGrammar         = "grammar_rewrite"
	RuleQuestion        = "question_restructure"
	RuleIdiom           = "idiom_substitution"
	RuleContentWords    = "content_extraction"
	RuleVocabulary      = "vocabulary_mapping"
	RuleContext         = "context_disambiguation"
	RuleModelRewrite    = "model_rewrite"
)

// Candidate is one rewritten form of a query considered for retrieval.
// Immutable once created.
type Candidate struct {
	text   string
	tags   []string
	kind   Kind
	weight float64
}

// New creates a candidate. Weight must be in (0, 1].
func New(text string, kind Kind, weight float64, tags ...string) Candidate {
	return Candidate{text: text, tags: tags, kind: kind, weight: weight}
}

// Primary creates a full-weight candidate.
func Primary(text string, tags ...string) Candidate {
	return New(text, KindPrimary, PrimaryWeight, tags...)
}

// Context creates a reduced-weight disambiguation candidate.
func Context(text string, tags ...string) Candidate {
	return New(text, KindContext, ContextWeight, tags...)
}

// Text returns the candidate query string.
func (c Candidate) Text() string { return c.text }

// Kind returns the candidate kind.
func (c Candidate) Kind() Kind { return c.kind }

// Weight returns the retrieval weight.
func (c Candidate) Weight() float64 { return c.weight }

// Tags returns a copy of the rule tags that produced this candidate.
func (c Candidate) Tags() []string {
	out := make([]string, len(c.tags))
	copy(out, c.tags)
	return out
}

// Tokens splits the candidate text on whitespace.
func (c Candidate) Tokens() []string { return strings.Fields(c.text) }

// Set is an ordered, case-insensitively deduplicated candidate collection.
// Insertion order records generation priority; the first occurrence of a
// text wins and keeps its tags.
type Set struct {
	items []Candidate
	seen  map[string]struct{}
}

// NewSet creates an empty candidate set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add appends the candidate unless its text (case-insensitive) is already present.
// Returns true when the candidate was admitted.
func (s *Set) Add(c Candidate) bool {
	key := strings.ToLower(strings.TrimSpace(c.text))
	if key == "" {
		return false
	}
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, c)
	return true
}

// Items returns the candidates in insertion order.
func (s *Set) Items() []Candidate { return s.items }

// Len returns the number of admitted candidates.
func (s *Set) Len() int { return len(s.items) }
