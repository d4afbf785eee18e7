package nlp

// Similarity returns a bounded string-similarity score in [0,1] between a
// and b: 1 minus the Levenshtein edit distance (unit costs) divided by the
// longer cleaned length. Both inputs are cleaned (lowercase, alphanumeric
// and space only) but NOT typo-corrected — the score must reflect what the
// user actually typed.
//
// When either cleaned string is empty the score is 0. That includes the
// both-empty case: two empty strings are deliberately treated as similarity
// 0, not 1, so empty input can never produce a spurious perfect match.
func Similarity(a, b string) float64 {
	a = Clean(a)
	b = Clean(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1 - float64(dist)/float64(maxLen)
}

// levenshtein computes the edit distance between a and b with unit costs for
// insertion, deletion, and substitution. Uses two rolling rows so space is
// O(min(len(a), len(b))) rather than the full matrix.
func levenshtein(a, b string) int {
	// Keep b as the shorter string so the rows stay small.
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
