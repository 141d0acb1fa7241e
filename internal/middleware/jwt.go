package middleware // reusable HTTP middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/startera/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ContextEmail    = "email"
	ContextVerified = "verified"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the account email and verified claim into the request context.
// Handlers read them with Email(c).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextEmail, claims.Subject)
			c.Set(ContextVerified, claims.Verified)
			return next(c)
		}
	}
}
