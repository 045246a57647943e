package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists snapshot blobs in a single-row-per-key table:
//
//	CREATE TABLE snapshots (
//	    key        TEXT PRIMARY KEY,
//	    data       BYTEA NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres verifies connectivity and returns the gateway.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store: postgres ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Save upserts the blob under key.
func (p *Postgres) Save(ctx context.Context, key string, data []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO snapshots (key, data, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		key, data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("store: postgres save %s (%s): %w", key, pgErr.Code, err)
		}
		return fmt.Errorf("store: postgres save %s: %w", key, err)
	}
	return nil
}

// Load fetches the blob under key.
func (p *Postgres) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM snapshots WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: postgres load %s: %w", key, err)
	}
	return data, true, nil
}

// Copy duplicates the blob under src to dst within one statement.
func (p *Postgres) Copy(ctx context.Context, src, dst string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO snapshots (key, data, updated_at)
		 SELECT $2, data, NOW() FROM snapshots WHERE key = $1
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		src, dst)
	if err != nil {
		return fmt.Errorf("store: postgres copy %s -> %s: %w", src, dst, err)
	}
	return nil
}
