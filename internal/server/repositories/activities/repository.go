package activities

import (
	"context"

	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

// Repository is the append-only activity log.
type Repository interface {
	Create(ctx context.Context, a *models.Activity) error
	// ListRecent returns at most limit entries for userID, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
}
