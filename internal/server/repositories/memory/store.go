// Package memory is an in-process implementation of the server repositories
// and of dbx.Runner. It backs development runs (DSN "memory") and service tests.
//
// Writes inside WithTx are recorded in an undo log and reverted if the
// transaction function fails. Transactions and writes made outside of one
// are serialized; reads never block on a transaction.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/activities"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/users"
)

var errNoSQL = errors.New("memory store does not execute SQL")

// handle is the DBTX vended by the store. It only marks whether repository
// calls happen inside a transaction.
type handle struct {
	undo []func()
}

func (h *handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (h *handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (h *handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

type secretRow struct {
	seq uint64
	s   models.Secret
}

type activityRow struct {
	seq uint64
	a   models.Activity
}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	seq        uint64
	users      map[string]models.User
	secrets    map[string]secretRow
	activities []activityRow

	root *handle
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]models.User),
		secrets: make(map[string]secretRow),
		root:    &handle{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) DB() dbx.DBTX {
	return s.root
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &handle{}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx)
			panic(p)
		}
		if err != nil {
			s.rollback(tx)
		}
	}()

	return fn(ctx, tx)
}

func (s *Store) rollback(tx *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

// RunMigrations is a no-op; the store has no schema.
func (s *Store) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (s *Store) Users(db dbx.DBTX) users.Repository {
	return &userRepo{s: s, tx: s.txOf(db)}
}

func (s *Store) Secrets(db dbx.DBTX) secrets.Repository {
	return &secretRepo{s: s, tx: s.txOf(db)}
}

func (s *Store) Activities(db dbx.DBTX) activities.Repository {
	return &activityRepo{s: s, tx: s.txOf(db)}
}

func (s *Store) txOf(db dbx.DBTX) *handle {
	h, ok := db.(*handle)
	if !ok || h == s.root {
		return nil
	}
	return h
}

// write applies mutate under the data lock. Outside a transaction it also
// takes the transaction lock; inside one it records the returned undo func.
func (s *Store) write(tx *handle, mutate func() (undo func(), err error)) error {
	if tx == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	undo, err := mutate()
	if err != nil {
		return err
	}
	if tx != nil && undo != nil {
		tx.undo = append(tx.undo, undo)
	}
	return nil
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func sortNewestFirst[T any](rows []T, created func(T) time.Time, seq func(T) uint64) {
	sort.Slice(rows, func(i, j int) bool {
		ci, cj := created(rows[i]), created(rows[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return seq(rows[i]) > seq(rows[j])
	})
}
