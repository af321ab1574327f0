package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type UserService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	passwords   PasswordHasher
	activity    ActivityRecorder
	logger      logging.Logger
}

func NewUserService(runner dbx.Runner, rm repomanager.RepositoryManager, passwords PasswordHasher,
	activity ActivityRecorder, logger logging.Logger) *UserService {
	return &UserService{
		runner:      runner,
		repomanager: rm,
		passwords:   passwords,
		activity:    activity,
		logger:      logger,
	}
}

// Signup creates an account. Username and email must both be unused.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (*models.PublicUser, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if username == "" || email == "" || password == "" {
		return nil, common.Validationf("username, email and password are required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, common.Validationf("invalid email address")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, publicError(ctx, s.logger, "hash password", err, common.ErrorValidation)
	}

	u, err := s.repomanager.Users(s.runner.DB()).Create(ctx, &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: username or email is already registered", common.ErrorAlreadyExists)
		}
		return nil, publicError(ctx, s.logger, "create user", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", u.ID)
	s.activity.Record(ctx, u.ID, "Signed up")

	return u.Public(), nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.PublicUser, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrorNotFound
	}

	u, err := s.repomanager.Users(s.runner.DB()).GetByID(ctx, userID)
	if err != nil {
		return nil, publicError(ctx, s.logger, "load profile", err, common.ErrorNotFound)
	}
	return u.Public(), nil
}

// ChangePassword replaces the password after re-checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return common.Validationf("current and new password are required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return common.ErrorNotFound
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return publicError(ctx, s.logger, "hash password", err, common.ErrorValidation)
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		ok, err := s.passwords.Verify(current, u.PasswordHash)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrAuthorization
		}

		u.PasswordHash = hash
		return repo.Update(ctx, u)
	})
	if err != nil {
		return publicError(ctx, s.logger, "change password", err, common.ErrAuthorization, common.ErrorNotFound)
	}

	s.activity.Record(ctx, userID, "Changed password")
	return nil
}
