package sigcache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Pool is the subset of pgxpool.Pool the cache needs. pgxmock
// implements it for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCache shares cached signals across operators through a
// central Postgres instance.
type PostgresCache struct {
	pool    Pool
	closeFn func()
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS signal_cache (
	key        TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signal_cache_expires_at ON signal_cache(expires_at)`

// NewPostgres connects to connString and ensures the schema exists.
func NewPostgres(ctx context.Context, connString string) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "sigcache: connect postgres")
	}
	c := &PostgresCache{pool: pool, closeFn: pool.Close}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "sigcache: migrate")
	}
	return c, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool Pool) *PostgresCache {
	return &PostgresCache{pool: pool}
}

func (p *PostgresCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM signal_cache WHERE key = $1 AND expires_at > now()`,
		key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sigcache: get")
	}
	keyPrefix := key
	if len(keyPrefix) > 12 {
		keyPrefix = keyPrefix[:12]
	}
	zap.L().Debug("sigcache hit", zap.String("key", keyPrefix))
	return payload, true, nil
}

func (p *PostgresCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO signal_cache (key, payload, cached_at, expires_at)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			cached_at = now(),
			expires_at = EXCLUDED.expires_at`,
		key, data, time.Now().UTC().Add(ttl),
	)
	return eris.Wrap(err, "sigcache: set")
}

// DeleteExpired removes stale rows, returning the count deleted.
func (p *PostgresCache) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM signal_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "sigcache: delete expired")
	}
	return int(tag.RowsAffected()), nil
}

func (p *PostgresCache) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}
