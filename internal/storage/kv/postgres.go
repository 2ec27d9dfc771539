package kv

import (
	"context"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/cartd/db"
)

const (
	loadSQL = `SELECT value FROM kv_state WHERE key = $1`

	saveSQL = `INSERT INTO kv_state (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

var _ Store = (*Postgres)(nil)

// Postgres is a Store backed by a single PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database config")
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}

	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// NewPostgres returns a Postgres store that uses the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Load implements Store. Absent keys map to ErrNotFound.
func (p *Postgres) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := p.pool.QueryRow(ctx, loadSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "load key %q", key)
	}
	return value, nil
}

// Save implements Store with upsert semantics.
func (p *Postgres) Save(ctx context.Context, key string, value []byte) error {
	if _, err := p.pool.Exec(ctx, saveSQL, key, value); err != nil {
		return errors.Wrapf(err, "save key %q", key)
	}
	return nil
}
