package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/startera/internal/service"
)

// ChatHandler serves the chat endpoint and the stored conversation.
type ChatHandler struct {
	Replies *service.ChatService
	History *service.ConversationLog
}

func NewChatHandler(chat *service.ChatService, history *service.ConversationLog) *ChatHandler {
	return &ChatHandler{Replies: chat, History: history}
}

type chatReq struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"system_prompt"`
}

type historyItem struct {
	Text  string `json:"text"`
	IsBot bool   `json:"isBot"`
}

// Chat always answers 200; gateway failures become a placeholder reply.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required"})
	}

	reply := h.Replies.Reply(c.Request().Context(), req.Message, req.SystemPrompt)
	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}

// ListHistory returns every stored turn, oldest first.
func (h *ChatHandler) ListHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	turns, err := h.History.History(ctx)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]historyItem, 0, len(turns))
	for _, t := range turns {
		items = append(items, historyItem{Text: t.Message, IsBot: t.IsAssistant()})
	}
	return c.JSON(http.StatusOK, items)
}
