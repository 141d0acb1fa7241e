package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGateway calls the Gemini API through the genai SDK.
type GeminiGateway struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. baseURL is empty outside tests.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGateway{client: client, model: model}, nil
}

func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", wrap("gemini", err)
	}
	text := clean(resp.Text())
	if text == "" {
		return "", emptyReply("gemini")
	}
	return text, nil
}
