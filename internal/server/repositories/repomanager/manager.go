package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/activities"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code path
// works on the plain connection and inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Secrets(db dbx.DBTX) secrets.Repository
	Activities(db dbx.DBTX) activities.Repository
}
