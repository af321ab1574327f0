// Package repomanager provides the PostgreSQL RepositoryManager, its goose
// migrations and the connection setup.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/server/migrations"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/activities"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Secrets(db dbx.DBTX) secrets.Repository {
	return secrets.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Activities(db dbx.DBTX) activities.Repository {
	return activities.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
