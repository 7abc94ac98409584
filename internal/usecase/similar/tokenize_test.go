package similar

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"lowercases and splits", "Attention Is All You Need", []string{"attention", "you", "need"}},
		{"punctuation splits", "graph-based GNNs, (revisited)!", []string{"graph", "gnns", "revisited"}},
		{"drops short tokens", "an ml ai llm", []string{"llm"}},
		{"keeps digits", "GPT4 and 2024 results", []string{"gpt4", "2024"}},
		{"keeps duplicates", "model transformer transformer", []string{"transformer", "transformer"}},
		{"unicode letters", "Über Schrödinger", []string{"über", "schrödinger"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize_NoStopWordsOrShortTokens(t *testing.T) {
	for _, tok := range Tokenize("The proposed method is based on a novel model of the world, and it works.") {
		if IsStopWord(tok) {
			t.Errorf("stop word %q leaked", tok)
		}
		if len([]rune(tok)) < MinTokenLength {
			t.Errorf("short token %q leaked", tok)
		}
	}
}
