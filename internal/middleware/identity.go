package middleware

// identity.go holds helpers that read the authenticated identity placed in
// the Echo context by JWTAuth.

import "github.com/labstack/echo/v4"

// Email returns the authenticated account email, or "" for anonymous
// requests.
func Email(c echo.Context) string {
	if s, ok := c.Get(ContextEmail).(string); ok {
		return s
	}
	return ""
}

// identity is the caller identity used in rate-limit keys. It returns
// "anon" when no user is authenticated.
func identity(c echo.Context) string {
	if s := Email(c); s != "" {
		return s
	}
	return "anon"
}
