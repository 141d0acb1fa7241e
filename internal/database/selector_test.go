package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func openTestEmbedded(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenEmbedded(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSelectorEmbeddedOnly(t *testing.T) {
	sel := NewSelector(nil, Dialect{}, openTestEmbedded(t), Options{}, nil)
	ctx := context.Background()

	c, err := sel.Acquire(ctx)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, KindEmbedded, c.Kind())
	assert.Equal(t, "sqlite", c.Dialect().Name)

	st := sel.Status()
	assert.Equal(t, KindEmbedded, st.Backend)
	assert.False(t, st.Configured)
	assert.True(t, st.DegradedSince.IsZero())

	// schema is in place on first acquisition
	_, err = c.Exec(ctx, "INSERT INTO users (email, password_hash, is_verified) VALUES (?, ?, ?)", "a@b.c", "h", true)
	require.NoError(t, err)

	row, err := c.QueryRow(ctx, "SELECT id, email, is_verified, created_at FROM users WHERE email = ?", "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Int64("id"))
	assert.Equal(t, "a@b.c", row.String("email"))
	assert.True(t, row.Bool("is_verified"))
	assert.False(t, row.Time("created_at").IsZero())

	_, err = c.QueryRow(ctx, "SELECT id FROM users WHERE email = ?", "missing@b.c")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	sel := NewSelector(nil, Dialect{}, openTestEmbedded(t), Options{}, nil)
	ctx := context.Background()

	c, err := sel.Acquire(ctx)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, EnsureSchema(ctx, c))
	require.NoError(t, EnsureSchema(ctx, c))
}

func TestSelectorUniqueViolationEmbedded(t *testing.T) {
	sel := NewSelector(nil, Dialect{}, openTestEmbedded(t), Options{}, nil)
	ctx := context.Background()

	c, err := sel.Acquire(ctx)
	require.NoError(t, err)
	defer c.Close()

	q := "INSERT INTO users (email, password_hash) VALUES (?, ?)"
	_, err = c.Exec(ctx, q, "dup@b.c", "h")
	require.NoError(t, err)
	_, err = c.Exec(ctx, q, "dup@b.c", "h")
	require.Error(t, err)
	assert.True(t, c.Dialect().IsUniqueViolation(err))
}

func TestSelectorFallsBackWhenManagedUnreachable(t *testing.T) {
	managed, d, err := OpenManaged("postgres://u:p@127.0.0.1:1/app?sslmode=disable&connect_timeout=1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = managed.Close() })

	core, logs := observer.New(zap.InfoLevel)
	sel := NewSelector(managed, d, openTestEmbedded(t), Options{
		ProbeTimeout:  time.Second,
		RetryInterval: time.Minute,
	}, zap.New(core))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c, err := sel.Acquire(ctx)
		require.NoError(t, err)
		assert.Equal(t, KindEmbedded, c.Kind())
		require.NoError(t, c.Close())
	}

	st := sel.Status()
	assert.True(t, st.Configured)
	assert.Equal(t, KindEmbedded, st.Backend)
	assert.False(t, st.DegradedSince.IsZero())
	assert.Equal(t, 1, st.DegradedWindows)

	// one event per degraded window
	assert.Equal(t, 1, logs.FilterMessage("storage.degraded").Len())
}

func TestSelectorRecovers(t *testing.T) {
	managed, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer managed.Close()

	core, logs := observer.New(zap.InfoLevel)
	sel := NewSelector(managed, Postgres, openTestEmbedded(t), Options{
		ProbeTimeout:  time.Second,
		RetryInterval: 10 * time.Second,
	}, zap.New(core))
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sel.now = func() time.Time { return now }

	ctx := context.Background()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	c, err := sel.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindEmbedded, c.Kind())
	require.NoError(t, c.Close())

	// inside the retry interval the managed backend is not probed
	now = now.Add(5 * time.Second)
	c, err = sel.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindEmbedded, c.Kind())
	require.NoError(t, c.Close())

	now = now.Add(6 * time.Second)
	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS chat_history").WillReturnResult(sqlmock.NewResult(0, 0))
	c, err = sel.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindRelational, c.Kind())
	require.NoError(t, c.Close())

	require.NoError(t, mock.ExpectationsWereMet())

	st := sel.Status()
	assert.Equal(t, KindRelational, st.Backend)
	assert.True(t, st.DegradedSince.IsZero())
	assert.Equal(t, 1, st.DegradedWindows)

	assert.Equal(t, 1, logs.FilterMessage("storage.degraded").Len())
	recovered := logs.FilterMessage("storage.recovered").All()
	require.Len(t, recovered, 1)
	assert.Equal(t, 11*time.Second, recovered[0].ContextMap()["degraded_for"])
}

func TestWithTx(t *testing.T) {
	sel := NewSelector(nil, Dialect{}, openTestEmbedded(t), Options{}, nil)
	ctx := context.Background()

	c, err := sel.Acquire(ctx)
	require.NoError(t, err)
	defer c.Close()

	insert := "INSERT INTO chat_history (role, message) VALUES (?, ?)"
	boom := errors.New("boom")

	err = c.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		if _, err := tx.Exec(ctx, insert, "user", "rolled back"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = c.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		_, err := tx.Exec(ctx, insert, "user", "kept")
		return err
	})
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = c.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
			_, _ = tx.Exec(ctx, insert, "user", "panicked")
			panic("boom")
		})
	})

	rows, err := c.Query(ctx, "SELECT message FROM chat_history ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kept", rows[0].String("message"))
}

func TestConnCloseTwice(t *testing.T) {
	sel := NewSelector(nil, Dialect{}, openTestEmbedded(t), Options{}, nil)
	c, err := sel.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
