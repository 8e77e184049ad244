package llmclient

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiBackend adapts google.golang.org/genai to the Backend interface.
// Grounded in the genai client construction pattern used elsewhere in this
// codebase for Gemini-family calls (client per call, API-key backend).
type GeminiBackend struct {
	apiKey string
	model  string
}

// NewGeminiBackend constructs a Backend backed by the Gemini API. model
// defaults to "gemini-2.0-flash" when empty.
func NewGeminiBackend(apiKey, model string) *GeminiBackend {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiBackend{apiKey: apiKey, model: model}
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) Call(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int, forceJSON bool) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  b.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(temperature)),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if forceJSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := client.Models.GenerateContent(ctx, b.model, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}
