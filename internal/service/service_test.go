package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/startera/internal/config"
	"github.com/iliyamo/startera/internal/database"
	"github.com/iliyamo/startera/internal/prompts"
	"github.com/iliyamo/startera/internal/repository"
)

const testSecret = "test-secret"

func newSelector(t *testing.T, managed *sql.DB, d database.Dialect) *database.Selector {
	t.Helper()
	db, err := database.OpenEmbedded(filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	sel := database.NewSelector(managed, d, db, database.Options{}, zap.NewNop())
	t.Cleanup(func() { _ = sel.Close() })
	return sel
}

func newAccounts(t *testing.T, db ConnSource, policy config.VerificationPolicy, n VerificationNotifier) *AccountService {
	t.Helper()
	return NewAccountService(db, repository.NewAccountRepo(), n, AccountOptions{
		JWTSecret:    testSecret,
		AccessTTLMin: 60,
		BcryptCost:   bcrypt.MinCost,
		Policy:       policy,
		ExposeCode:   true,
	}, zap.NewNop())
}

func catalogue(t *testing.T) *prompts.Catalogue {
	t.Helper()
	c, err := prompts.Load("")
	require.NoError(t, err)
	return c
}

type notifierFunc func(ctx context.Context, email, code string) error

func (f notifierFunc) NotifyVerification(ctx context.Context, email, code string) error {
	return f(ctx, email, code)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string]string
}

func (r *recordingNotifier) NotifyVerification(_ context.Context, email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]string{}
	}
	r.calls[email] = code
	return nil
}

type fakeGateway struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGateway) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

var errBoom = errors.New("boom")
