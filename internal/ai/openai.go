package ai

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGateway talks to any OpenAI-compatible chat completions endpoint.
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAIGateway {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGateway{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (g *OpenAIGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrap("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", emptyReply("openai")
	}
	text := clean(resp.Choices[0].Message.Content)
	if text == "" {
		return "", emptyReply("openai")
	}
	return text, nil
}
