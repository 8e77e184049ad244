package llmclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend adapts github.com/sashabaranov/go-openai to the Backend
// interface, grounded in the chat-completion JSON-mode call pattern the
// teacher codebase uses for its own plan generation.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend constructs a Backend backed by the OpenAI chat
// completions API. model defaults to "gpt-4o-mini" when empty.
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIBackend{client: openai.NewClient(apiKey), model: model}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Call(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int, forceJSON bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: float32(temperature),
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}
	if forceJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
