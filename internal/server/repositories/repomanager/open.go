package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// PoolSettings tunes the pgx pool behind the *sql.DB.
type PoolSettings struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

var DefaultPoolSettings = PoolSettings{
	MaxConns:        20,
	MinConns:        2,
	MaxConnLifetime: 30 * time.Minute,
	MaxConnIdleTime: 10 * time.Minute,
}

// OpenPostgres builds a pgx pool for dsn, pings it and wraps it as *sql.DB.
// The returned close func releases both.
func OpenPostgres(ctx context.Context, dsn string, ps PoolSettings) (*sql.DB, func(), error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = ps.MaxConns
	cfg.MinConns = ps.MinConns
	cfg.MaxConnLifetime = ps.MaxConnLifetime
	cfg.MaxConnIdleTime = ps.MaxConnIdleTime

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(pingCtx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	closeFn := func() {
		_ = db.Close()
		pool.Close()
	}

	return db, closeFn, nil
}
