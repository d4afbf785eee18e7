// Package embedding provides the semantic-matching tier of the reply
// pipeline: text embedders, the keyword embedding cache, cosine similarity,
// and the semantic fallback resolver.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations range from
// a no-op stub (capability unavailable) to the OpenAI embeddings API and
// Google's Gemini embedding models.
type Embedder interface {
	// Embed produces a vector embedding for the given text.
	// Returns nil with no error when embedding is not available (noop).
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NoopEmbedder is the Embedder used when no embedding backend is configured
// or the capability is degraded. It always returns a nil vector.
type NoopEmbedder struct{}

// Embed returns nil, nil unconditionally.
func (NoopEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

var _ Embedder = NoopEmbedder{}
