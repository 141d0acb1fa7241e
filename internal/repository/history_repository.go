package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/database"
	"github.com/iliyamo/startera/internal/model"
)

// HistoryRepo reads and appends rows of 'chat_history'.
type HistoryRepo struct{}

func NewHistoryRepo() *HistoryRepo { return &HistoryRepo{} }

// Append inserts one turn.
func (r *HistoryRepo) Append(ctx context.Context, q database.Querier, role model.Role, message string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", apperr.ErrBadRequest, role)
	}
	_, err := q.Exec(ctx,
		"INSERT INTO chat_history (role, message) VALUES (?, ?)", string(role), message)
	return classify(q.Dialect(), err)
}

// List returns every turn in insertion order.
func (r *HistoryRepo) List(ctx context.Context, q database.Querier) ([]model.Turn, error) {
	rows, err := q.Query(ctx, "SELECT id, role, message, created_at FROM chat_history ORDER BY id ASC")
	if err != nil {
		return nil, classify(q.Dialect(), err)
	}
	turns := make([]model.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, model.Turn{
			ID:        row.Int64("id"),
			Role:      model.Role(row.String("role")),
			Message:   row.String("message"),
			CreatedAt: row.Time("created_at"),
		})
	}
	return turns, nil
}
