// Package grammar holds the fixed ASL lexicon tables used by query
// transformation: closed word classes, idiom substitutions, known phrases,
// and the English-to-ASL vocabulary map.
package grammar

import "strings"

// Articles removed by the grammar rewrite.
var Articles = wordSet("a", "an", "the")

// Copulas are the to-be verbs dropped from multi-word input. A single-word
// copula query is a valid lookup target and is kept.
var Copulas = wordSet("is", "am", "are", "was", "were", "be", "being", "been")

// WHWords are question words relocated clause-finally in ASL.
var WHWords = []string{"who", "what", "where", "when", "why", "how"}

// TimeMarkers are tokens moved to the front of a rewritten query
// (time-first ordering).
var TimeMarkers = wordSet(
	"yesterday", "today", "tomorrow", "now", "later", "before", "after",
	"morning", "afternoon", "evening", "night",
)

// QuestionPatterns are idiomatic fragments that mark a query as a question
// even without a leading WH-word or trailing question mark.
var QuestionPatterns = []string{"how are", "what is", "where is"}

// functionWords is the extended closed set removed by content-word
// extraction: articles, copulas, auxiliaries, prepositions, conjunctions,
// degree adverbs, and assorted grammar-only tokens.
var functionWords = wordSet(
	// articles
	"a", "an", "the",
	// copulas
	"is", "are", "am", "was", "were", "be", "being", "been",
	// auxiliaries
	"do", "does", "did", "have", "has", "had", "will", "would", "could", "should",
	"can", "may", "might", "must",
	// prepositions
	"to", "of", "in", "on", "at", "by", "for", "with", "from", "up", "down",
	"out", "off", "over", "under",
	// degree adverbs
	"very", "really", "quite", "rather", "too", "so", "just", "only",
	// conjunctions
	"and", "or", "but", "because", "if", "when", "while",
	// other grammar-only tokens
	"then", "once", "here", "there", "where", "why", "how", "all", "any",
	"both", "each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "own", "same", "than", "again", "further",
)

// Idiom is one English-phrase to ASL-form substitution. Ordered: earlier
// entries are replaced first, so longer phrases must precede their prefixes.
type Idiom struct {
	English string
	ASL     string
}

// Idioms are literal lowercase substring replacements applied to queries.
var Idioms = []Idiom{
	{"what is your name", "your name what"},
	{"where are you from", "you from where"},
	{"how old are you", "you age how-much"},
	{"how much does it cost", "cost how-much"},
	{"what time is it", "time what"},
	{"where is the bathroom", "bathroom where"},
	{"how are you", "you how"},
	{"you're welcome", "welcome"},
	{"thank you", "thank"},
	{"excuse me", "excuse"},
	{"i'm sorry", "sorry"},
	{"going to", "will"},
	{"want to", "want"},
	{"need to", "need"},
	{"have to", "must"},
	{"would like", "want"},
	{"i am", "me"},
	{"you are", "you"},
	{"he is", "he"},
	{"she is", "she"},
	{"we are", "we"},
	{"they are", "they"},
}

// Phrases maps known ASL phrases to a short description. A query containing
// one of these should be looked up whole rather than split into words.
var Phrases = map[string]string{
	"hello there":      "greeting with emphasis",
	"thank you":        "gratitude expression",
	"how are you":      "greeting question",
	"nice to meet you": "introduction phrase",
	"see you later":    "goodbye phrase",
	"what is your name": "introduction question",
	"i love you":       "affection expression",
	"good morning":     "morning greeting",
	"good night":       "evening farewell",
}

// Disambiguation maps ambiguous tokens to the ASL context that separates
// them from near-identical signs.
var Disambiguation = map[string]string{
	"i":     "first person pronoun - distinct from 'it'",
	"you":   "second person pronoun - distinct from 'your'",
	"it":    "third person pronoun - distinct from 'i'",
	"there": "location indicator - context dependent",
	"here":  "location indicator - context dependent",
	"this":  "demonstrative - requires visual context",
	"that":  "demonstrative - requires visual context",
}

// Vocabulary maps English tokens to the form signs are documented under.
// Absent tokens map to themselves.
var Vocabulary = map[string]string{
	"mother":      "mom",
	"father":      "dad",
	"grandmother": "grandma",
	"grandfather": "grandpa",
}

// IsArticle reports whether the token is an article.
func IsArticle(token string) bool { return inSet(Articles, token) }

// IsCopula reports whether the token is a to-be verb.
func IsCopula(token string) bool { return inSet(Copulas, token) }

// IsTimeMarker reports whether the token is a time marker.
func IsTimeMarker(token string) bool { return inSet(TimeMarkers, token) }

// IsFunctionWord reports whether the token carries no standalone sign content.
func IsFunctionWord(token string) bool { return inSet(functionWords, token) }

// IsWHWord reports whether the token is a question word.
func IsWHWord(token string) bool {
	for _, w := range WHWords {
		if token == w {
			return true
		}
	}
	return false
}

// StripPunct removes non-alphanumeric runes from a token, keeping hyphens
// (compound glosses like "how-much") and apostrophes inside contractions.
func StripPunct(token string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '\'':
			return r
		default:
			return -1
		}
	}, token)
}

// Tokens lowercases the input and splits it on whitespace.
func Tokens(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// AllFunctionWords reports whether every token of the input belongs to the
// function-word set. Empty input counts as function-words-only.
func AllFunctionWords(tokens []string) bool {
	for _, t := range tokens {
		if clean := StripPunct(t); clean != "" && !IsFunctionWord(clean) {
			return false
		}
	}
	return true
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func inSet(set map[string]struct{}, token string) bool {
	_, ok := set[token]
	return ok
}
