package candidate

// PhraseMatch records a known phrase found in the query. KeepTogether tells
// downstream logic not to split the phrase into per-word lookups.
type PhraseMatch struct {
	Phrase       string
	Description  string
	KeepTogether bool
}

// TransformationResult is the outcome of running a query through the
// grammar transformation engine. The original query is never mutated.
type TransformationResult struct {
	Original      string
	Candidates    []Candidate
	RulesApplied  []string
	Phrases       []PhraseMatch
	Confidence    float64
	ModelDegraded bool
}

// HasRule reports whether the given rule tag contributed a candidate.
func (r TransformationResult) HasRule(tag string) bool {
	for _, t := range r.RulesApplied {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyRule reports whether any of the given rule tags fired.
func (r TransformationResult) HasAnyRule(tags ...string) bool {
	for _, t := range tags {
		if r.HasRule(t) {
			return true
		}
	}
	return false
}
