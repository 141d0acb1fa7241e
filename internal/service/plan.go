package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/startera/internal/ai"
	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/prompts"
)

const defaultPlanLanguage = "tr"

// markup the model tends to emit although the prompt asks for plain text
var stripMarkup = strings.NewReplacer("*", "", "#", "")

// PlanService turns a business idea into a plain-text plan.
type PlanService struct {
	gateway ai.Gateway
	prompts *prompts.Catalogue
}

func NewPlanService(gateway ai.Gateway, catalogue *prompts.Catalogue) *PlanService {
	return &PlanService{gateway: gateway, prompts: catalogue}
}

// Generate fails with apperr.ErrGatewayUnconfigured when there is no
// gateway, and passes gateway errors through.
func (s *PlanService) Generate(ctx context.Context, in prompts.PlanInput) (string, error) {
	if s.gateway == nil {
		return "", apperr.ErrGatewayUnconfigured
	}
	if strings.TrimSpace(in.Language) == "" {
		in.Language = defaultPlanLanguage
	}
	prompt, err := s.prompts.PlanPrompt(in)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrInternal, err)
	}
	text, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stripMarkup.Replace(text)), nil
}
