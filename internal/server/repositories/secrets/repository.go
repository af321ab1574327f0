package secrets

import (
	"context"

	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

// Repository stores vault items. Every lookup is scoped by owner: a secret
// belonging to someone else is reported exactly like a missing one, with
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, s *models.Secret) (*models.Secret, error)
	GetByID(ctx context.Context, userID, id string) (*models.Secret, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, userID, id string) (*models.Secret, error)
	// List returns the owner's secrets newest first. An empty secretType
	// means all types.
	List(ctx context.Context, userID string, secretType models.SecretType) ([]*models.Secret, error)
	Update(ctx context.Context, s *models.Secret) error
	// Delete removes the secret and returns it as it was.
	Delete(ctx context.Context, userID, id string) (*models.Secret, error)
}
