package database

import (
	"context"
	"database/sql"
	"errors"
)

// Querier is the statement surface shared by Conn and Tx. Repositories are
// written against it with '?' placeholders.
type Querier interface {
	Dialect() Dialect
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	QueryRow(ctx context.Context, query string, args ...any) (Row, error)
}

// execer is the subset of database/sql implemented by *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type statements struct {
	ex      execer
	dialect Dialect
}

func (s statements) Dialect() Dialect { return s.dialect }

func (s statements) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.ex.ExecContext(ctx, s.dialect.Rebind(query), s.dialect.encodeArgs(args)...)
}

func (s statements) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.ex.QueryContext(ctx, s.dialect.Rebind(query), s.dialect.encodeArgs(args)...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows, s.dialect)
}

// QueryRow returns the first row, or sql.ErrNoRows when there is none.
func (s statements) QueryRow(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return Row{}, err
	}
	if len(rows) == 0 {
		return Row{}, sql.ErrNoRows
	}
	return rows[0], nil
}

// Conn is one acquired connection plus the dialect of the backend it came
// from. It must be released with Close on every path.
type Conn struct {
	statements
	raw *sql.Conn
}

// NewConn wraps a connection taken from a pool of the given dialect.
func NewConn(raw *sql.Conn, d Dialect) *Conn {
	return &Conn{statements: statements{ex: raw, dialect: d}, raw: raw}
}

// Kind reports which backend served the connection.
func (c *Conn) Kind() Kind { return c.dialect.Kind }

// Close returns the connection to its pool. It is safe to call twice.
func (c *Conn) Close() error {
	if c.raw == nil {
		return nil
	}
	err := c.raw.Close()
	c.raw = nil
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

// Tx is a transaction on an acquired connection.
type Tx struct {
	statements
}

// WithTx begins a transaction, runs fn with it, and then commits on success
// or rolls back on error/panic. Panics are rethrown.
func (c *Conn) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) (err error) {
	sqlTx, err := c.raw.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		err = sqlTx.Commit()
	}()

	err = fn(ctx, &Tx{statements: statements{ex: sqlTx, dialect: c.dialect}})
	return err
}
