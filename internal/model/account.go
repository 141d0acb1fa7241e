package model

import "time"

// Account represents a row of the `users` table.
//
// Fields:
//
//	ID               – primary key identifier.
//	Email            – trimmed, lower-cased address; unique.
//	PasswordHash     – bcrypt hash of the password.
//	VerificationCode – six-digit code issued at registration.
//	Verified         – whether the code has been confirmed (or the
//	                   account was auto-verified at creation).
//	CreatedAt        – server-assigned creation time.
type Account struct {
	ID               int64     // users.id
	Email            string    // users.email
	PasswordHash     string    // users.password_hash
	VerificationCode string    // users.verification_code
	Verified         bool      // users.is_verified
	CreatedAt        time.Time // users.created_at
}
