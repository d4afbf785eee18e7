package embedding

import (
	"context"

	"github.com/web3realty/bot/internal/bot/intent"
	"github.com/web3realty/bot/internal/bot/nlp"
)

// SemanticThreshold is the minimum cosine similarity a cached keyword vector
// must exceed before a semantic match is accepted. Lower than the keyword
// thresholds: embeddings already capture meaning, so a loose lexical match
// is not required.
const SemanticThreshold = 0.35

// ResolveSemantic embeds contextText and compares it, via cosine similarity,
// against every cached keyword vector in table order, returning the
// best-scoring intent whose score exceeds SemanticThreshold.
//
// Returns false immediately — without blocking — when the embedding
// capability is not ready. Uncached keywords are silently skipped: a sparse
// cache reduces coverage but never fails the call. An embed failure on the
// input likewise yields no match rather than an error; the orchestrator
// falls through to the next tier.
func ResolveSemantic(ctx context.Context, contextText string, table intent.Table, cache *Cache) (nlp.Match, bool) {
	if cache == nil || !cache.Ready() {
		return nlp.Match{}, false
	}

	inputVec, err := cache.embedder.Embed(ctx, contextText)
	if err != nil {
		cache.logger.Warn("embedding: failed to embed input for semantic match", "err", err)
		return nlp.Match{}, false
	}
	if inputVec == nil {
		return nlp.Match{}, false
	}
	inputVec = L2Normalize(inputVec)

	var best nlp.Match
	found := false

	for _, record := range table {
		for _, keyword := range record.Keywords {
			cached, ok := cache.Get(keyword)
			if !ok {
				continue
			}

			score := Cosine(inputVec, cached)
			if score > SemanticThreshold && score > best.Score {
				best = nlp.Match{IntentID: record.ID, Score: score}
				found = true
			}
		}
	}

	return best, found
}
