package nlp

import (
	"github.com/web3realty/bot/internal/bot/intent"
)

// Acceptance thresholds for keyword matches. Sensitive (legal/compliance)
// intents require a much closer match before their canned reply may surface.
const (
	SensitiveThreshold = 0.75
	DefaultThreshold   = 0.50
)

// Match is the transient result of an intent resolution pass.
type Match struct {
	// IntentID identifies the matched intent table record.
	IntentID string
	// Score is the similarity score in [0,1] that produced the match.
	Score float64
}

// ResolveKeyword scans the intent table for the keyword closest to rawInput
// and returns the best match, if any candidate clears its own intent's
// threshold.
//
// The input is normalised once (typo-corrected), then scored against every
// keyword of every record. A candidate replaces the current best only on a
// strictly greater score, so ties resolve to the first-seen record and the
// result is deterministic given table order. A candidate below its intent's
// threshold never becomes the result, even when it is the highest score seen.
func ResolveKeyword(rawInput string, table intent.Table) (Match, bool) {
	normalized := Normalize(rawInput)

	var best Match
	found := false

	for _, record := range table {
		threshold := DefaultThreshold
		if record.Sensitive() {
			threshold = SensitiveThreshold
		}

		for _, keyword := range record.Keywords {
			score := Similarity(normalized, keyword)
			if score <= threshold {
				continue
			}
			if score > best.Score {
				best = Match{IntentID: record.ID, Score: score}
				found = true
			}
		}
	}

	return best, found
}
