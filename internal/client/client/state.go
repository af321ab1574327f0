package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vaultx/internal/client/migrations"
	"github.com/dmitrijs2005/vaultx/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// State is the opened vaultctl state file.
type State struct {
	db       *sql.DB
	Metadata metadata.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// InitState opens (creating if needed) the SQLite state file at dsn.
func InitState(ctx context.Context, dsn string) (*State, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate state: %w", err)
	}

	return &State{db: db, Metadata: metadata.NewSQLiteRepository(db)}, nil
}

func (s *State) Close() error {
	return s.db.Close()
}
