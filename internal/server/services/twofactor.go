package services

import (
	"context"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultx/internal/server/twofactor"
	"github.com/google/uuid"
)

// TwoFactorService applies twofactor.Engine transitions to stored users. Each
// call locks the user row, mutates it and saves it in one transaction.
type TwoFactorService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	engine      *twofactor.Engine
	activity    ActivityRecorder
	logger      logging.Logger
}

func NewTwoFactorService(runner dbx.Runner, rm repomanager.RepositoryManager, engine *twofactor.Engine,
	activity ActivityRecorder, logger logging.Logger) *TwoFactorService {
	return &TwoFactorService{
		runner:      runner,
		repomanager: rm,
		engine:      engine,
		activity:    activity,
		logger:      logger,
	}
}

var twoFactorKnownErrors = []error{
	common.ErrorNotFound,
	common.ErrInvalidCode,
	common.ErrAuthorization,
	common.ErrTwoFactorNotPending,
	common.ErrTwoFactorAlreadyEnabled,
}

func (s *TwoFactorService) Generate(ctx context.Context, userID string) (*twofactor.Enrollment, error) {
	var enrollment *twofactor.Enrollment
	err := s.mutate(ctx, userID, func(u *models.User) error {
		e, err := s.engine.GenerateSecret(u)
		if err != nil {
			return err
		}
		enrollment = e
		return nil
	})
	if err != nil {
		return nil, publicError(ctx, s.logger, "generate two-factor secret", err, twoFactorKnownErrors...)
	}
	return enrollment, nil
}

func (s *TwoFactorService) Verify(ctx context.Context, userID, code string) error {
	err := s.mutate(ctx, userID, func(u *models.User) error {
		return s.engine.VerifyEnrollment(u, code)
	})
	if err != nil {
		return publicError(ctx, s.logger, "verify two-factor enrollment", err, twoFactorKnownErrors...)
	}

	s.activity.Record(ctx, userID, "Enabled two-factor authentication")
	return nil
}

func (s *TwoFactorService) Disable(ctx context.Context, userID, password string) error {
	err := s.mutate(ctx, userID, func(u *models.User) error {
		return s.engine.Disable(u, password)
	})
	if err != nil {
		return publicError(ctx, s.logger, "disable two-factor", err, twoFactorKnownErrors...)
	}

	s.activity.Record(ctx, userID, "Disabled two-factor authentication")
	return nil
}

func (s *TwoFactorService) mutate(ctx context.Context, userID string, fn func(u *models.User) error) error {
	if _, err := uuid.Parse(userID); err != nil {
		return common.ErrorNotFound
	}

	return s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		return repo.Update(ctx, u)
	})
}
