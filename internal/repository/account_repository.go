package repository

import (
	"context"

	"github.com/iliyamo/startera/internal/database"
	"github.com/iliyamo/startera/internal/model"
)

// AccountRepo persists accounts in the 'users' table.
type AccountRepo struct{}

func NewAccountRepo() *AccountRepo { return &AccountRepo{} }

const accountColumns = "id, email, password_hash, verification_code, is_verified, created_at"

// Create inserts a new account. The email must already be normalized.
// A duplicate email yields apperr.ErrConflict and leaves the table untouched.
func (r *AccountRepo) Create(ctx context.Context, q database.Querier, a model.Account) error {
	_, err := q.Exec(ctx,
		"INSERT INTO users (email, password_hash, verification_code, is_verified) VALUES (?, ?, ?, ?)",
		a.Email, a.PasswordHash, a.VerificationCode, a.Verified)
	return classify(q.Dialect(), err)
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, q database.Querier, email string) (model.Account, error) {
	row, err := q.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM users WHERE email = ?", email)
	if err != nil {
		return model.Account{}, classify(q.Dialect(), err)
	}
	return accountFromRow(row), nil
}

// MarkVerified sets the verified flag when it is still false. It reports
// whether a row changed; a second call for the same account is a no-op.
func (r *AccountRepo) MarkVerified(ctx context.Context, q database.Querier, email string) (bool, error) {
	res, err := q.Exec(ctx,
		"UPDATE users SET is_verified = ? WHERE email = ? AND is_verified = ?",
		true, email, false)
	if err != nil {
		return false, classify(q.Dialect(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(q.Dialect(), err)
	}
	return n > 0, nil
}

func accountFromRow(row database.Row) model.Account {
	return model.Account{
		ID:               row.Int64("id"),
		Email:            row.String("email"),
		PasswordHash:     row.String("password_hash"),
		VerificationCode: row.String("verification_code"),
		Verified:         row.Bool("is_verified"),
		CreatedAt:        row.Time("created_at"),
	}
}
