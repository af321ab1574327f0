package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	// ActivityListLimit is how many entries List returns.
	ActivityListLimit = 50

	activityRecordTimeout = 5 * time.Second
)

// ActivityRecorder accepts fire-and-forget activity entries.
type ActivityRecorder interface {
	Record(ctx context.Context, userID, action string)
}

// ActivityService keeps the per-user activity log. Record never blocks the
// caller and never fails it; write errors are only logged.
type ActivityService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	wg sync.WaitGroup
}

func NewActivityService(runner dbx.Runner, rm repomanager.RepositoryManager, logger logging.Logger) *ActivityService {
	return &ActivityService{runner: runner, repomanager: rm, logger: logger}
}

// Record appends action to userID's log in the background. The write is
// detached from ctx cancellation and bounded by its own timeout.
func (s *ActivityService) Record(ctx context.Context, userID, action string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityRecordTimeout)
		defer cancel()

		a := &models.Activity{ID: uuid.NewString(), UserID: userID, Action: action}
		if err := s.repomanager.Activities(s.runner.DB()).Create(ctx, a); err != nil {
			s.logger.Warn(ctx, "activity not recorded", "user_id", userID, "error", err)
		}
	}()
}

// Wait blocks until every pending Record has finished.
func (s *ActivityService) Wait() {
	s.wg.Wait()
}

// List returns the latest entries for userID, newest first.
func (s *ActivityService) List(ctx context.Context, userID string) ([]*models.Activity, error) {
	list, err := s.repomanager.Activities(s.runner.DB()).ListRecent(ctx, userID, ActivityListLimit)
	if err != nil {
		return nil, publicError(ctx, s.logger, "list activity", err)
	}
	return list, nil
}
