package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGenAIModel = "gemini-2.0-flash"

// genAIGenerator implements Generator using Google's Gemini API.
type genAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAI returns a Generator backed by the Gemini API. The model defaults
// to gemini-2.0-flash when empty.
func NewGenAI(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm genai: API key is required")
	}
	if model == "" {
		model = defaultGenAIModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("llm genai: create client: %w", err)
	}

	return &genAIGenerator{client: client, model: model}, nil
}

// Generate sends prompt to the Gemini model and concatenates the text parts
// of the first candidate.
func (g *genAIGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)

	temp := float32(opts.Temperature)
	topP := float32(opts.TopP)
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(opts.MaxTokens),
		Temperature:     &temp,
		TopP:            &topP,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, cfg)
	if err != nil {
		return "", fmt.Errorf("llm genai: generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("llm genai: no response candidates")
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			result.WriteString(part.Text)
		}
	}
	return result.String(), nil
}

var _ Generator = (*genAIGenerator)(nil)
