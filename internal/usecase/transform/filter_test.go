package transform

import (
	"strings"
	"testing"
)

func TestIsAcceptable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		original string
		want     bool
	}{
		{"plain content", "hello greeting", "hello friend", true},
		{"single token", "hello", "hello friend", true},
		{"five tokens", "one two three four five", "counting lesson", true},
		{"six tokens", "one two three four five six", "counting lesson", false},
		{"empty", "", "hello", false},
		{"function words only", "the of and", "hello friend", false},
		{"introduces time marker", "tomorrow hello", "hello friend", false},
		{"keeps original time marker", "tomorrow meeting", "meeting tomorrow", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAcceptable(tt.text, strings.Fields(tt.original))
			if got != tt.want {
				t.Errorf("isAcceptable(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
