package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

const columns = `id, user_id, title, encrypted_data, iv, type, description, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanSecret(row scanner) (*models.Secret, error) {
	s := &models.Secret{}
	var typ string
	if err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.EncryptedData, &s.IV,
		&typ, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Type = models.SecretType(typ)
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Secret) (*models.Secret, error) {
	query :=
		`INSERT INTO secrets (id, user_id, title, encrypted_data, iv, type, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.Title, s.EncryptedData, s.IV, string(s.Type), s.Description).
		Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Secret, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM secrets WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, userID, id string) (*models.Secret, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM secrets WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, id, userID string) (*models.Secret, error) {
	s, err := scanSecret(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, secretType models.SecretType) ([]*models.Secret, error) {
	query :=
		`SELECT ` + columns + ` FROM secrets
		 WHERE user_id = $1 AND ($2::text = '' OR type = $2)
		 ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID, string(secretType))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Secret, 0)
	for rows.Next() {
		s, err := scanSecret(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update overwrites the mutable columns. Ciphertext and IV are always written
// together.
func (r *PostgresRepository) Update(ctx context.Context, s *models.Secret) error {
	query :=
		`UPDATE secrets SET title = $3, encrypted_data = $4, iv = $5, type = $6,
		   description = $7, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.Title, s.EncryptedData, s.IV, string(s.Type), s.Description).
		Scan(&s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) (*models.Secret, error) {
	query := `DELETE FROM secrets WHERE id = $1 AND user_id = $2 RETURNING ` + columns
	return r.getOne(ctx, query, id, userID)
}
