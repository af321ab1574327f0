// Package services contains the server's business logic: the login state
// machine, account management, two-factor lifecycle, the encrypted vault,
// the activity log and vault backups. Transports call into these services and
// translate the common.* sentinel errors they return.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultx/internal/server/twofactor"
	"github.com/google/uuid"
)

// PasswordHasher is the credential store used by the services.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
	CompareDummy(password string)
}

// TokenIssuer mints and checks session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type LoginStep int

const (
	// StepAuthenticated means a session token was issued.
	StepAuthenticated LoginStep = iota + 1
	// StepSecondFactorRequired means the password was accepted but a TOTP
	// code must follow. No token is issued at this step.
	StepSecondFactorRequired
)

func (s LoginStep) String() string {
	switch s {
	case StepAuthenticated:
		return "authenticated"
	case StepSecondFactorRequired:
		return "second_factor_required"
	default:
		return "unknown"
	}
}

type LoginResult struct {
	Step   LoginStep
	Token  string
	User   *models.PublicUser
	UserID string
}

// AuthService drives login:
//
//	awaiting credentials -> authenticated
//	awaiting credentials -> awaiting second factor -> authenticated
//
// Nothing is kept between the two steps except the user id handed back to
// the caller.
type AuthService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	passwords   PasswordHasher
	tokens      TokenIssuer
	twoFactor   *twofactor.Engine
	activity    ActivityRecorder
	logger      logging.Logger
}

func NewAuthService(runner dbx.Runner, rm repomanager.RepositoryManager, passwords PasswordHasher,
	tokens TokenIssuer, engine *twofactor.Engine, activity ActivityRecorder, logger logging.Logger) *AuthService {
	return &AuthService{
		runner:      runner,
		repomanager: rm,
		passwords:   passwords,
		tokens:      tokens,
		twoFactor:   engine,
		activity:    activity,
		logger:      logger,
	}
}

// Login checks email and password. Unknown email and wrong password fail the
// same way, with common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.Validationf("email and password are required")
	}

	u, err := s.repomanager.Users(s.runner.DB()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.passwords.CompareDummy(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, publicError(ctx, s.logger, "login lookup", err)
	}

	ok, err := s.passwords.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, publicError(ctx, s.logger, "login verify", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	if s.twoFactor.State(u) == twofactor.StateActive {
		return &LoginResult{Step: StepSecondFactorRequired, UserID: u.ID}, nil
	}

	return s.authenticated(ctx, u)
}

// CompleteSecondFactor finishes a login that stopped at
// StepSecondFactorRequired. Every failure is reported as common.ErrInvalidCode.
func (s *AuthService) CompleteSecondFactor(ctx context.Context, userID, code string) (*LoginResult, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrInvalidCode
	}

	u, err := s.repomanager.Users(s.runner.DB()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCode
		}
		return nil, publicError(ctx, s.logger, "second factor lookup", err)
	}

	if !s.twoFactor.VerifyLoginCode(u, code) {
		return nil, common.ErrInvalidCode
	}

	return s.authenticated(ctx, u)
}

// Authenticate resolves a bearer token to a user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) authenticated(ctx context.Context, u *models.User) (*LoginResult, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, publicError(ctx, s.logger, "issue token", err)
	}

	s.activity.Record(ctx, u.ID, "Logged in")

	return &LoginResult{Step: StepAuthenticated, Token: token, User: u.Public(), UserID: u.ID}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
