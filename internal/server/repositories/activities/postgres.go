package activities

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Activity) error {
	query :=
		`INSERT INTO activities (id, user_id, action)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, a.ID, a.UserID, a.Action).Scan(&a.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	query :=
		`SELECT id, user_id, action, created_at FROM activities
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Activity, 0)
	for rows.Next() {
		a := &models.Activity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
