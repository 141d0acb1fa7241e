// Package repository holds the SQL for accounts and chat history. Every
// statement is written once with '?' markers and runs on whatever
// database.Querier the caller acquired, so the same code serves the
// managed and the embedded backend.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/database"
)

// classify maps driver errors onto the apperr taxonomy. A missing row
// becomes ErrNotFound, a unique-key violation ErrConflict, and anything else
// ErrInternal. The driver error stays wrapped for logging.
func classify(d database.Dialect, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	case d.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", apperr.ErrInternal, err)
	}
}
