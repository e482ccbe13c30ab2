package grammar

import "testing"

func TestWordClasses(t *testing.T) {
	if !IsArticle("the") || IsArticle("dog") {
		t.Error("article classification wrong")
	}
	if !IsCopula("were") || IsCopula("run") {
		t.Error("copula classification wrong")
	}
	if !IsTimeMarker("tomorrow") || IsTimeMarker("store") {
		t.Error("time marker classification wrong")
	}
	if !IsWHWord("why") || IsWHWord("hotel") {
		t.Error("WH-word classification wrong")
	}
	if !IsFunctionWord("because") || IsFunctionWord("breakfast") {
		t.Error("function word classification wrong")
	}
}

func TestStripPunct(t *testing.T) {
	cases := map[string]string{
		"bathroom?": "bathroom",
		"how-much":  "how-much",
		"i'm":       "i'm",
		"(hello)":   "hello",
		"!!!":       "",
	}
	for in, want := range cases {
		if got := StripPunct(in); got != want {
			t.Errorf("StripPunct(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("  What IS  your name ")
	want := []string{"what", "is", "your", "name"}
	if len(got) != len(want) {
		t.Fatalf("Tokens: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAllFunctionWords(t *testing.T) {
	if !AllFunctionWords([]string{"is", "the"}) {
		t.Error(`"is the" should be function-words-only`)
	}
	if AllFunctionWords([]string{"is", "the", "hotel"}) {
		t.Error(`"is the hotel" carries sign content`)
	}
	if !AllFunctionWords(nil) {
		t.Error("empty input should count as function-words-only")
	}
}

func TestIdiomOrdering(t *testing.T) {
	// Longer phrases must come before their prefixes, otherwise "i am going
	// to the store" would rewrite "what is your name" piecewise.
	pos := map[string]int{}
	for i, id := range Idioms {
		pos[id.English] = i
	}
	if pos["what is your name"] > pos["i am"] {
		t.Error(`"what is your name" must be substituted before "i am"`)
	}
	if pos["how are you"] > pos["you are"] {
		t.Error(`"how are you" must be substituted before "you are"`)
	}
}
