package database

import (
	"context"
	"fmt"
)

var schemas = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			verification_code TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			id SERIAL PRIMARY KEY,
			role TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(320) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			verification_code VARCHAR(16),
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			role VARCHAR(16) NOT NULL,
			message LONGTEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) CHARACTER SET utf8mb4`,
	},
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			verification_code TEXT,
			is_verified INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			role TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// EnsureSchema creates the users and chat_history tables when absent. It is
// idempotent and safe to run on every start.
func EnsureSchema(ctx context.Context, q Querier) error {
	d := q.Dialect()
	stmts, ok := schemas[d.Name]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", d.Name)
	}
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema (%s): %w", d.Name, err)
		}
	}
	return nil
}
