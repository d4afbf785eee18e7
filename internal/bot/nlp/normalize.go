// Package nlp implements the lexical layer of the reply pipeline: input
// normalisation, typo correction, edit-distance similarity, and keyword
// intent resolution against the static intent table.
//
// Everything in this package is pure string computation — deterministic,
// synchronous, and free of I/O — so the orchestrator can call it on every
// turn without a context or error path.
package nlp

import (
	"regexp"
	"sort"
	"strings"
)

// typoCorrections maps known misspellings to their corrected form. Matches
// are whole-word only, applied to already-cleaned (lowercase alphanumeric)
// input. The table must stay free of cyclic rewrites: no corrected form may
// itself appear as a key.
var typoCorrections = map[string]string{
	"blokchain":  "blockchain",
	"morgage":    "mortgage",
	"proppy":     "propy",
	"nft ded":    "nft deed",
	"bitcon":     "bitcoin",
	"ethreum":    "ethereum",
	"realestate": "real estate",
	"closng":     "closing",
	"financng":   "financing",
	"hous":       "house",
	"buyin":      "buying",
	"seling":     "selling",
	"miammi":     "miami",
	"florda":     "florida",
	"contarct":   "contract",
	"appraisl":   "appraisal",
	"taxs":       "taxes",
	"stabelcoin": "stablecoin",
	"defie":      "defi",
	"daao":       "dao",
	"tooken":     "token",
	"helo":       "hello",
	"hii":        "hi",
	"hlp":        "help",
}

// nonAlphanumeric matches every character that survives neither as a
// lowercase letter, digit, nor whitespace after lowering.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)

// typoPatterns holds one word-boundary-anchored regexp per typo table entry,
// in sorted key order so corrections apply in a deterministic sequence.
var typoPatterns = buildTypoPatterns()

type typoPattern struct {
	re      *regexp.Regexp
	correct string
}

func buildTypoPatterns() []typoPattern {
	keys := make([]string, 0, len(typoCorrections))
	for k := range typoCorrections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patterns := make([]typoPattern, 0, len(keys))
	for _, k := range keys {
		patterns = append(patterns, typoPattern{
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`),
			correct: typoCorrections[k],
		})
	}
	return patterns
}

// Clean lowercases s and strips every character that is not a lowercase
// letter, digit, or whitespace. It performs no typo correction; both
// Normalize and Similarity build on this shared cleaning step.
func Clean(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
}

// Normalize cleans s (see Clean) and then rewrites known misspellings via
// whole-word substitution. Corrections apply in sorted table order, so a
// later pattern may act on text already rewritten by an earlier one.
// Normalize is idempotent and maps empty input to empty output.
func Normalize(s string) string {
	out := Clean(s)
	for _, p := range typoPatterns {
		out = p.re.ReplaceAllString(out, p.correct)
	}
	return out
}
