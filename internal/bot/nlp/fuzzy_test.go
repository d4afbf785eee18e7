package nlp

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical strings",
			a:    "buy a house",
			b:    "buy a house",
			want: 1,
		},
		{
			name: "identical after cleaning",
			a:    "Buy a House!",
			b:    "buy a house",
			want: 1,
		},
		{
			name: "one empty",
			a:    "",
			b:    "hello",
			want: 0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 0,
		},
		{
			name: "empty after cleaning",
			a:    "?!",
			b:    "hello",
			want: 0,
		},
		{
			name: "single substitution",
			a:    "house",
			b:    "mouse",
			want: 0.8, // 1 - 1/5
		},
		{
			name: "completely different",
			a:    "abc",
			b:    "xyz",
			want: 0, // 1 - 3/3
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"mortgage", "morgage"},
		{"buy a house", "sell a house"},
		{"defi", "blockchain"},
	}

	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q, %q) = %v but Similarity(%q, %q) = %v",
				p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestSimilarity_Bounded(t *testing.T) {
	pairs := [][2]string{
		{"a", "completely unrelated long sentence about nothing"},
		{"tokenized real estate", "tokenize property"},
		{"x", "y"},
	}

	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %v, want within [0, 1]", p[0], p[1], got)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"morgage", "mortgage", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
