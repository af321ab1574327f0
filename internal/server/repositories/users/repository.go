package users

import (
	"context"

	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

// Repository stores user accounts. Lookups of missing rows return
// common.ErrorNotFound; a taken username or email on Create returns
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
