package search

import (
	"strings"
	"testing"
)

func TestScoreSubstringTier(t *testing.T) {
	tests := []struct {
		query  string
		target string
		want   int
	}{
		{"hello", "hello", 105},
		{"lo wo", "hello world", 105},
		{"a", "banana", 101},
		{strings.Repeat("a", 60), strings.Repeat("a", 80), 150},
	}
	for _, tt := range tests {
		if got := Score(tt.query, tt.target); got != tt.want {
			t.Errorf("Score(%q, %q) = %d, want %d", tt.query, tt.target, got, tt.want)
		}
	}
}

func TestScoreDiacriticInsensitive(t *testing.T) {
	got := Score(Normalize("héllo"), Normalize("Hello there"))
	if got < 100 {
		t.Fatalf("expected accented query to hit the substring tier, got %d", got)
	}
}

func TestScoreFuzzyTier(t *testing.T) {
	// "world" token hit (10) plus distance 1 over the window (29).
	if got := Score("helo world", "hello world"); got != 39 {
		t.Fatalf("Score = %d, want 39", got)
	}

	many := "a b c d e f g h i j k"
	if got := Score(many, "k j i h g f e d c b a"); got != 99 {
		t.Fatalf("fuzzy score should be capped at 99, got %d", got)
	}
}

func TestScoreNoMatch(t *testing.T) {
	tests := []struct {
		query  string
		target string
	}{
		{"", "anything"},
		{"anything", ""},
		{strings.Repeat("z", 30), strings.Repeat("a", 40)},
	}
	for _, tt := range tests {
		if got := Score(tt.query, tt.target); got != 0 {
			t.Errorf("Score(%q, %q) = %d, want 0", tt.query, tt.target, got)
		}
	}
}

func TestScoreExactTierIffSubstring(t *testing.T) {
	targets := []string{"hello world", "the quick brown fox", "zażółć gęślą jaźń", "a b c d e f g h i j k l"}
	queries := []string{"hello", "helo", "quick fox", "brown", "gesla", "gęślą", "k j i h g f e d c b a", "xyz", "l"}
	for _, target := range targets {
		nt := Normalize(target)
		for _, query := range queries {
			nq := Normalize(query)
			score := Score(nq, nt)
			if (score >= 100) != strings.Contains(nt, nq) {
				t.Errorf("Score(%q, %q) = %d disagrees with substring containment", nq, nt, score)
			}
			if again := Score(nq, nt); again != score {
				t.Errorf("Score(%q, %q) not deterministic: %d then %d", nq, nt, score, again)
			}
		}
	}
}
