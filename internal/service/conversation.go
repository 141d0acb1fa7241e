package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/model"
	"github.com/iliyamo/startera/internal/repository"
)

// ConversationLog is the append-only record of chat turns.
type ConversationLog struct {
	db      ConnSource
	history *repository.HistoryRepo
}

func NewConversationLog(db ConnSource, history *repository.HistoryRepo) *ConversationLog {
	return &ConversationLog{db: db, history: history}
}

// Append stores one turn.
func (l *ConversationLog) Append(ctx context.Context, role model.Role, message string) error {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %w", apperr.ErrInternal, err)
	}
	defer conn.Close()
	return l.history.Append(ctx, conn, role, message)
}

// History returns every turn in insertion order.
// TODO: paginate once clients send a cursor; the result is unbounded today.
func (l *ConversationLog) History(ctx context.Context) ([]model.Turn, error) {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %w", apperr.ErrInternal, err)
	}
	defer conn.Close()
	return l.history.List(ctx, conn)
}
