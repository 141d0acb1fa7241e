package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/startera/internal/ai"
	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/model"
	"github.com/iliyamo/startera/internal/prompts"
)

// ChatService answers chat messages. It never fails visibly: gateway errors
// become a fixed placeholder reply and persistence errors are only logged.
type ChatService struct {
	gateway   ai.Gateway // nil when no AI credential is configured
	prompts   *prompts.Catalogue
	log       *ConversationLog
	logger    *zap.Logger
	onHistory func(ctx context.Context) // called after turns are appended
}

func NewChatService(gateway ai.Gateway, catalogue *prompts.Catalogue, log *ConversationLog, logger *zap.Logger) *ChatService {
	return &ChatService{gateway: gateway, prompts: catalogue, log: log, logger: logger}
}

// OnHistoryChange registers fn to run whenever the stored history grows.
func (s *ChatService) OnHistoryChange(fn func(ctx context.Context)) {
	s.onHistory = fn
}

// Reply stores the user turn, asks the gateway and stores the answer.
func (s *ChatService) Reply(ctx context.Context, message, systemPrompt string) string {
	s.record(ctx, model.RoleUser, message)

	reply := s.generate(ctx, message, systemPrompt)

	s.record(ctx, model.RoleAssistant, reply)
	if s.onHistory != nil {
		s.onHistory(ctx)
	}
	return reply
}

func (s *ChatService) generate(ctx context.Context, message, systemPrompt string) string {
	if s.gateway == nil {
		return s.prompts.ReplyMissingKey
	}
	prompt, err := s.prompts.ChatPrompt(systemPrompt, message)
	if err != nil {
		s.logger.Error("chat prompt render failed", zap.Error(err))
		return s.prompts.ReplyUnavailable
	}
	reply, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("chat generation failed, sending placeholder",
			zap.Bool("timeout", errors.Is(err, apperr.ErrGatewayTimeout)),
			zap.Error(err))
		return s.prompts.ReplyUnavailable
	}
	return reply
}

func (s *ChatService) record(ctx context.Context, role model.Role, message string) {
	if err := s.log.Append(ctx, role, message); err != nil {
		s.logger.Warn("chat turn not stored", zap.String("role", string(role)), zap.Error(err))
	}
}
