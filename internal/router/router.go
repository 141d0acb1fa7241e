// Package router registers the HTTP surface on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/startera/internal/handler"
	"github.com/iliyamo/startera/internal/middleware"
)

// APIPrefix is the second mount point of every route.
const APIPrefix = "/api"

// HistoryPath is the cached conversation route.
const HistoryPath = "/chat/history"

// Deps bundles the handlers and per-route middleware.
type Deps struct {
	Auth    *handler.AuthHandler
	Chat    *handler.ChatHandler
	Plan    *handler.PlanHandler
	Storage handler.StatusReporter

	JWTSecret string
	RateLimit echo.MiddlewareFunc // nil: no limit
	Cache     *middleware.ResponseCache
}

// routes is implemented by both *echo.Echo and *echo.Group.
type routes interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// HistoryRoutes lists every path the history route is served on; cache
// invalidation must cover all of them.
func HistoryRoutes() []string {
	return []string{HistoryPath, APIPrefix + HistoryPath}
}

// Register mounts the routes at the root and under APIPrefix.
func Register(e *echo.Echo, d Deps) {
	register(e, d)
	register(e.Group(APIPrefix), d)
}

func register(r routes, d Deps) {
	limit := d.RateLimit
	if limit == nil {
		limit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	cache := echo.MiddlewareFunc(func(next echo.HandlerFunc) echo.HandlerFunc { return next })
	if d.Cache != nil {
		cache = d.Cache.Middleware()
	}

	r.GET("/health", handler.Health(d.Storage))

	r.POST("/register", d.Auth.Register)
	r.POST("/login", d.Auth.Login)
	r.POST("/verify", d.Auth.Verify)
	r.GET("/me", d.Auth.Me, middleware.JWTAuth(d.JWTSecret))

	r.POST("/chat", d.Chat.Chat, limit)
	r.GET(HistoryPath, d.Chat.ListHistory, cache)

	r.POST("/generate_plan", d.Plan.GeneratePlan, limit)
	r.POST("/create_pdf", d.Plan.CreatePDF, limit)
}

// Use installs the global middleware chain.
func Use(e *echo.Echo, requestLog echo.MiddlewareFunc, corsOrigins []string) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: newRequestID}))
	if requestLog != nil {
		e.Use(requestLog)
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
}
