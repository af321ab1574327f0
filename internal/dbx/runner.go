// Package dbx holds the store handle shared by repositories and the runner
// services use to group repository calls in one transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the part of database/sql the repositories need. *sql.DB, *sql.Tx
// and the in-memory store all satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Runner gives services a store handle and a way to run several repository
// calls atomically. Repositories obtained for the tx handle passed to fn see
// the same transaction.
type Runner interface {
	DB() DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLRunner is the Runner over a *sql.DB.
type SQLRunner struct {
	db   *sql.DB
	opts *sql.TxOptions
}

func NewSQLRunner(db *sql.DB, opts *sql.TxOptions) *SQLRunner {
	return &SQLRunner{db: db, opts: opts}
}

func (r *SQLRunner) DB() DBTX {
	return r.db
}

// WithTx commits when fn succeeds. An error from fn or from a panic inside it
// rolls the transaction back; the panic is rethrown.
func (r *SQLRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := r.db.BeginTx(ctx, r.opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
