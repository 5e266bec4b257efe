package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/linkgate/internal/kv"
)

// Schema is the DDL for the table backing PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore is a PostgreSQL implementation of kv.Store.
// Expired rows are treated as absent and overwritten on the next write.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed key-value store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the backing table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, Schema)

	return err
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value
		FROM kv_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())
	`

	var value string

	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", kv.ErrNotFound
		}

		return "", err
	}

	return value, nil
}

func (p *PostgresStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	query := `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, created_at = now()
	`

	_, err := p.pool.Exec(ctx, query, key, value, expiresAt(ttl))

	return err
}

func (p *PostgresStore) PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) error {
	query := `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, created_at = now()
		WHERE kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= now()
	`

	tag, err := p.pool.Exec(ctx, query, key, value, expiresAt(ttl))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return kv.ErrExists
	}

	return nil
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func expiresAt(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}

	t := time.Now().Add(ttl)

	return &t
}

var _ kv.Store = (*PostgresStore)(nil)
