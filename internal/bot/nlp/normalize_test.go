package nlp

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "Hello World",
			want:  "hello world",
		},
		{
			name:  "strips punctuation",
			input: "what's up?!",
			want:  "whats up",
		},
		{
			name:  "keeps digits and spaces",
			input: "price is 450000 USD",
			want:  "price is 450000 usd",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "?!#$%",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "corrects known typo",
			input: "morgage rates",
			want:  "mortgage rates",
		},
		{
			name:  "whole word only",
			input: "morgages", // no word boundary match for "morgage"
			want:  "morgages",
		},
		{
			name:  "multiple typos in one message",
			input: "helo, can I get a morgage on realestate?",
			want:  "hello can i get a mortgage on real estate",
		},
		{
			name:  "clean input passes through",
			input: "buy a house in miami",
			want:  "buy a house in miami",
		},
		{
			name:  "case and punctuation removed before correction",
			input: "BLOKCHAIN!!",
			want:  "blockchain",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"morgage on a hous in florda",
		"helo there",
		"tell me about defie and daao governance",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalize_NoCyclicRewrites(t *testing.T) {
	// No corrected form may itself be a typo key, otherwise corrections
	// would depend on application order.
	for _, correct := range typoCorrections {
		if _, ok := typoCorrections[correct]; ok {
			t.Errorf("corrected form %q is itself a typo key", correct)
		}
	}
}
