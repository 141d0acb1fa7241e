// Package service holds the business operations behind the HTTP surface.
// Each operation acquires its own storage connection and releases it on
// every exit path.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/config"
	"github.com/iliyamo/startera/internal/database"
	"github.com/iliyamo/startera/internal/model"
	"github.com/iliyamo/startera/internal/repository"
	"github.com/iliyamo/startera/internal/utils"
)

// ConnSource hands out one connection per operation. *database.Selector
// implements it.
type ConnSource interface {
	Acquire(ctx context.Context) (*database.Conn, error)
}

// VerificationNotifier delivers a verification code out of band. Failures
// never fail the registration.
type VerificationNotifier interface {
	NotifyVerification(ctx context.Context, email, code string) error
}

// AccountOptions carry the account policy of one deployment.
type AccountOptions struct {
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	Policy       config.VerificationPolicy
	ExposeCode   bool // return the verification code in responses (DEBUG)
}

// AccountService implements registration, login and e-mail verification.
type AccountService struct {
	db       ConnSource
	accounts *repository.AccountRepo
	notifier VerificationNotifier // nil: no mail dispatch
	opts     AccountOptions
	log      *zap.Logger

	newCode func() (string, error)
}

func NewAccountService(db ConnSource, accounts *repository.AccountRepo, notifier VerificationNotifier, opts AccountOptions, log *zap.Logger) *AccountService {
	if opts.Policy == "" {
		opts.Policy = config.PolicyAuto
	}
	return &AccountService{
		db:       db,
		accounts: accounts,
		notifier: notifier,
		opts:     opts,
		log:      log,
		newCode:  utils.NewVerificationCode,
	}
}

// Registration is the outcome of Register. VerificationCode is empty unless
// the deployment exposes codes.
type Registration struct {
	Email            string
	Verified         bool
	VerificationCode string
}

// Session is an issued bearer token for one account.
type Session struct {
	Token    string
	Expires  time.Time
	Email    string
	Verified bool
}

// Register creates an account. A second registration of the same
// normalized email fails with apperr.ErrConflict and changes nothing.
func (s *AccountService) Register(ctx context.Context, email, password string) (Registration, error) {
	email = utils.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return Registration{}, err
	}

	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return Registration{}, fmt.Errorf("%w: hash password: %w", apperr.ErrInternal, err)
	}
	code, err := s.newCode()
	if err != nil {
		return Registration{}, fmt.Errorf("%w: verification code: %w", apperr.ErrInternal, err)
	}
	acc := model.Account{
		Email:            email,
		PasswordHash:     hash,
		VerificationCode: code,
		Verified:         s.opts.Policy == config.PolicyAuto,
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return Registration{}, err
	}
	defer conn.Close()

	err = conn.WithTx(ctx, func(ctx context.Context, tx *database.Tx) error {
		return s.accounts.Create(ctx, tx, acc)
	})
	if err != nil {
		return Registration{}, s.storageErr("register", err)
	}
	s.log.Info("account registered",
		zap.String("email", email),
		zap.Bool("verified", acc.Verified),
		zap.String("backend", string(conn.Kind())))

	s.notify(ctx, email, code)

	out := Registration{Email: email, Verified: acc.Verified}
	if s.opts.ExposeCode {
		out.VerificationCode = code
	}
	return out, nil
}

// Login checks the password and issues a token. Unknown emails fail with
// apperr.ErrNotFound, wrong passwords with apperr.ErrUnauthorized.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	email = utils.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return Session{}, err
	}

	acc, err := s.lookup(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(acc.PasswordHash, password) {
		return Session{}, fmt.Errorf("%w: password mismatch", apperr.ErrUnauthorized)
	}
	return s.issue(acc.Email, acc.Verified)
}

// Verify confirms the code sent at registration. The flag flips at most once;
// repeating a correct verification succeeds without writing. A wrong code
// fails with apperr.ErrBadRequest and writes nothing.
func (s *AccountService) Verify(ctx context.Context, email, code string) (Session, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return Session{}, fmt.Errorf("%w: email required", apperr.ErrBadRequest)
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return Session{}, err
	}
	defer conn.Close()

	acc, err := s.accounts.GetByEmail(ctx, conn, email)
	if err != nil {
		return Session{}, s.storageErr("verify", err)
	}
	if !utils.CodesMatch(acc.VerificationCode, code) {
		return Session{}, fmt.Errorf("%w: verification code mismatch", apperr.ErrBadRequest)
	}

	if !acc.Verified {
		var changed bool
		err = conn.WithTx(ctx, func(ctx context.Context, tx *database.Tx) error {
			var err error
			changed, err = s.accounts.MarkVerified(ctx, tx, email)
			return err
		})
		if err != nil {
			return Session{}, s.storageErr("verify", err)
		}
		if changed {
			s.log.Info("account verified", zap.String("email", email))
		}
	}
	return s.issue(email, true)
}

// Me re-reads the account a token was issued for.
func (s *AccountService) Me(ctx context.Context, email string) (model.Account, error) {
	return s.lookup(ctx, utils.NormalizeEmail(email))
}

// Authenticate maps a bearer token back to its account email.
func (s *AccountService) Authenticate(token string) (*utils.Claims, error) {
	claims, err := utils.ParseAccessToken(s.opts.JWTSecret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *AccountService) lookup(ctx context.Context, email string) (model.Account, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return model.Account{}, err
	}
	defer conn.Close()

	acc, err := s.accounts.GetByEmail(ctx, conn, email)
	if err != nil {
		return model.Account{}, s.storageErr("lookup", err)
	}
	return acc, nil
}

func (s *AccountService) issue(email string, verified bool) (Session, error) {
	tok, err := utils.NewAccessToken(s.opts.JWTSecret, email, verified, s.opts.AccessTTLMin)
	if err != nil {
		return Session{}, fmt.Errorf("%w: issue token: %w", apperr.ErrInternal, err)
	}
	return Session{Token: tok.Token, Expires: tok.Exp, Email: email, Verified: verified}, nil
}

func (s *AccountService) notify(ctx context.Context, email, code string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyVerification(ctx, email, code); err != nil {
		s.log.Warn("verification dispatch failed", zap.String("email", email), zap.Error(err))
	}
}

func (s *AccountService) acquire(ctx context.Context) (*database.Conn, error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		s.log.Error("storage unavailable", zap.Error(err))
		return nil, fmt.Errorf("%w: acquire connection: %w", apperr.ErrInternal, err)
	}
	return conn, nil
}

// storageErr passes domain errors through and logs everything else.
func (s *AccountService) storageErr(op string, err error) error {
	if errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	s.log.Error("account storage error", zap.String("op", op), zap.Error(err))
	if errors.Is(err, apperr.ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", apperr.ErrInternal, op, err)
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email/password required", apperr.ErrBadRequest)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", apperr.ErrBadRequest)
	}
	return nil
}
