package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "UPDATE users SET is_verified = ? WHERE email = ? AND role <> '?'"

	assert.Equal(t, "UPDATE users SET is_verified = $1 WHERE email = $2 AND role <> '?'", Postgres.Rebind(q))
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", MySQL.Placeholder(3))
	assert.Equal(t, "?", SQLite.Placeholder(1))
}

func TestBoolEncoding(t *testing.T) {
	assert.Equal(t, true, Postgres.EncodeBool(true))
	assert.Equal(t, false, MySQL.EncodeBool(false))
	assert.Equal(t, int64(1), SQLite.EncodeBool(true))
	assert.Equal(t, int64(0), SQLite.EncodeBool(false))

	args := SQLite.encodeArgs([]any{"a@b.c", true, 7})
	assert.Equal(t, []any{"a@b.c", int64(1), 7}, args)
}

func TestDecodeBool(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{true, true},
		{int64(1), true},
		{int64(0), false},
		{[]byte("1"), true},
		{[]byte("0"), false},
		{"t", true},
		{"false", false},
		{3.0, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%T/%v", tc.in, tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, SQLite.DecodeBool(tc.in))
			assert.Equal(t, tc.want, Postgres.DecodeBool(tc.in))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgDup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	myDup := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	assert.True(t, Postgres.IsUniqueViolation(pgDup))
	assert.False(t, Postgres.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, MySQL.IsUniqueViolation(myDup))
	assert.False(t, MySQL.IsUniqueViolation(errors.New("boom")))
	assert.True(t, SQLite.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
	assert.False(t, SQLite.IsUniqueViolation(nil))
}

func TestParseDescriptor(t *testing.T) {
	d, dsn, err := ParseDescriptor("postgres://u:p@db:5432/app?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name)
	assert.Equal(t, KindRelational, d.Kind)
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable", dsn)

	d, dsn, err = ParseDescriptor("mysql://root:pw@db/app?timeout=3s")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name)
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "app", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	_, _, err = ParseDescriptor("redis://localhost")
	assert.Error(t, err)
}

func TestRowAccessors(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := Row{dialect: SQLite, cols: map[string]any{
		"email":    []byte("a@b.c"),
		"id":       int64(4),
		"verified": int64(1),
		"at":       "2025-03-01 10:00:00",
		"at2":      ts,
		"missing":  nil,
	}}
	assert.Equal(t, "a@b.c", r.String("email"))
	assert.Equal(t, int64(4), r.Int64("id"))
	assert.True(t, r.Bool("verified"))
	assert.Equal(t, ts, r.Time("at"))
	assert.Equal(t, ts, r.Time("at2"))
	assert.Equal(t, "", r.String("missing"))
	assert.True(t, r.Time("nope").IsZero())
}
