// Package llm defines the text-generation capability consumed by the reply
// pipeline, with OpenAI-compatible and Gemini backends.
//
// The orchestrator treats generation as a capability: given a prompt,
// produce a continuation, or fail. Failures are never retried per turn —
// the pipeline falls through to keyword and semantic matching instead.
package llm

import "context"

// Options are the sampling parameters for a single generation call.
type Options struct {
	// MaxTokens bounds the length of the continuation.
	MaxTokens int
	// Temperature controls sampling randomness.
	Temperature float64
	// TopP controls nucleus sampling.
	TopP float64
}

// DefaultOptions are the sampling parameters used for chat replies.
var DefaultOptions = Options{
	MaxTokens:   150,
	Temperature: 0.9,
	TopP:        0.9,
}

// Generator is the interface every text-generation backend implements.
// Implementations must be safe for concurrent use. When a backend is
// unavailable it returns a descriptive error; callers degrade to
// keyword-based resolution.
type Generator interface {
	// Generate sends prompt to the underlying model and returns the raw
	// generated continuation.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
