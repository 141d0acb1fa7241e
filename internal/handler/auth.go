package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/middleware"
	"github.com/iliyamo/startera/internal/service"
)

// AuthHandler serves registration, login, verification and /me.
type AuthHandler struct {
	Accounts *service.AccountService
}

func NewAuthHandler(a *service.AccountService) *AuthHandler {
	return &AuthHandler{Accounts: a}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type registerResp struct {
	Message          string `json:"message"`
	Email            string `json:"email"`
	Verified         bool   `json:"verified"`
	VerificationCode string `json:"verification_code,omitempty"`
}

type loginResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	Email   string    `json:"email"`
}

type verifyResp struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Email   string `json:"email"`
}

type meResp struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// Register creates an account; a duplicate email is a 400.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reg, err := h.Accounts.Register(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err,
			statusRule{apperr.ErrBadRequest, http.StatusBadRequest, "email/password required"},
			statusRule{apperr.ErrConflict, http.StatusBadRequest, "email already registered"},
		)
	}
	return c.JSON(http.StatusOK, registerResp{
		Message:          "success",
		Email:            reg.Email,
		Verified:         reg.Verified,
		VerificationCode: reg.VerificationCode,
	})
}

// Login checks credentials and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err,
			statusRule{apperr.ErrBadRequest, http.StatusBadRequest, "email/password required"},
			statusRule{apperr.ErrNotFound, http.StatusUnauthorized, "invalid credentials"},
			statusRule{apperr.ErrUnauthorized, http.StatusUnauthorized, "invalid credentials"},
		)
	}
	return c.JSON(http.StatusOK, loginResp{Token: sess.Token, Expires: sess.Expires, Email: sess.Email})
}

// Verify confirms the emailed code and returns a token for the account.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Accounts.Verify(ctx, req.Email, req.Code)
	if err != nil {
		return respondError(c, err,
			statusRule{apperr.ErrNotFound, http.StatusNotFound, "account not found"},
			statusRule{apperr.ErrBadRequest, http.StatusBadRequest, "invalid verification code"},
		)
	}
	return c.JSON(http.StatusOK, verifyResp{Message: "success", Token: sess.Token, Email: sess.Email})
}

// Me returns the account behind the bearer token (JWTAuth runs first).
func (h *AuthHandler) Me(c echo.Context) error {
	email := middleware.Email(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Accounts.Me(ctx, email)
	if err != nil {
		return respondError(c, err,
			statusRule{apperr.ErrNotFound, http.StatusNotFound, "account not found"},
		)
	}
	return c.JSON(http.StatusOK, meResp{Email: acc.Email, Verified: acc.Verified})
}
