package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGenAIEmbeddingModel = "gemini-embedding-001"

// GenAIEmbedder implements Embedder using Google's Gemini embedding API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

// NewGenAIEmbedder creates an Embedder backed by the Gemini API. The model
// defaults to gemini-embedding-001 when empty.
func NewGenAIEmbedder(ctx context.Context, apiKey, model string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedder genai: API key is required")
	}
	if model == "" {
		model = defaultGenAIEmbeddingModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder genai: create client: %w", err)
	}

	return &GenAIEmbedder{client: client, model: model}, nil
}

// Embed produces a vector embedding for the given text. Empty text yields a
// nil vector with no error.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents,
		&genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embedder genai: embed content: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embedder genai: no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}

var _ Embedder = (*GenAIEmbedder)(nil)
