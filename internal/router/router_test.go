package router

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/startera/internal/config"
	"github.com/iliyamo/startera/internal/database"
	"github.com/iliyamo/startera/internal/handler"
	"github.com/iliyamo/startera/internal/middleware"
	"github.com/iliyamo/startera/internal/pdf"
	"github.com/iliyamo/startera/internal/prompts"
	"github.com/iliyamo/startera/internal/repository"
	"github.com/iliyamo/startera/internal/service"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.OpenEmbedded(filepath.Join(t.TempDir(), "r.db"))
	require.NoError(t, err)
	sel := database.NewSelector(nil, database.Dialect{}, db, database.Options{}, zap.NewNop())
	t.Cleanup(func() { _ = sel.Close() })
	cat, err := prompts.Load("")
	require.NoError(t, err)

	accounts := service.NewAccountService(sel, repository.NewAccountRepo(), nil, service.AccountOptions{JWTSecret: "s", AccessTTLMin: 5, BcryptCost: 4}, zap.NewNop())
	convo := service.NewConversationLog(sel, repository.NewHistoryRepo())

	e := echo.New()
	Use(e, middleware.RequestLog(zap.NewNop()), []string{"https://app.example"})
	Register(e, Deps{
		Auth:      handler.NewAuthHandler(accounts),
		Chat:      handler.NewChatHandler(service.NewChatService(nil, cat, convo, zap.NewNop()), convo),
		Plan:      handler.NewPlanHandler(service.NewPlanService(nil, cat), service.NewExportService(pdf.NewExporter(), nil, cat, zap.NewNop())),
		Storage:   sel,
		JWTSecret: "s",
		Cache:     middleware.NewResponseCache(config.CacheConfig{Enabled: true}, nil, nil),
	})
	return e
}

func TestRoutesMountedTwice(t *testing.T) {
	e := newServer(t)
	for _, path := range []string{"/health", "/api/health", "/chat/history", "/api/chat/history"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID), path)
	}
}

func TestMeRequiresToken(t *testing.T) {
	e := newServer(t)
	for _, path := range []string{"/me", "/api/me"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegisterThroughAPIPrefix(t *testing.T) {
	e := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"email":"a@b.c","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	e := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestHistoryRoutes(t *testing.T) {
	assert.Equal(t, []string{"/chat/history", "/api/chat/history"}, HistoryRoutes())
}
