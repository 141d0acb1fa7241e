package ai

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"
)

const generateAction = "generateContent"

// ModelInfo describes one model offered to the configured key.
type ModelInfo struct {
	Name        string
	DisplayName string
	Generative  bool // supports generateContent
}

// ListModels enumerates the Gemini models visible to apiKey. Unless all is
// set only models supporting generateContent are returned.
func ListModels(ctx context.Context, apiKey, baseURL string, all bool) ([]ModelInfo, error) {
	gem, err := NewGemini(ctx, apiKey, "", baseURL)
	if err != nil {
		return nil, err
	}
	var out []ModelInfo
	for m, err := range gem.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if info := modelInfo(m); all || info.Generative {
			out = append(out, info)
		}
	}
	return out, nil
}

// modelInfo reduces an SDK model to what the listing shows.
func modelInfo(m *genai.Model) ModelInfo {
	return ModelInfo{
		Name:        strings.TrimPrefix(m.Name, "models/"),
		DisplayName: m.DisplayName,
		Generative:  slices.Contains(m.SupportedActions, generateAction),
	}
}
