package ai

import (
	"context"
	"fmt"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/config"
)

// New builds the configured gateway wrapped with the AI timeout. It returns
// apperr.ErrGatewayUnconfigured when the selected provider has no key; the
// caller then runs with AI endpoints disabled.
func New(ctx context.Context, cfg config.Config) (Gateway, error) {
	var g Gateway
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", apperr.ErrGatewayUnconfigured)
		}
		g = NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	case config.ProviderGemini, "":
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("%w: GOOGLE_API_KEY not set", apperr.ErrGatewayUnconfigured)
		}
		gem, err := NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel, "")
		if err != nil {
			return nil, err
		}
		g = gem
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.AIProvider)
	}
	return WithTimeout(g, cfg.AITimeout), nil
}
