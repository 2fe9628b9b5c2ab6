package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/domain"
	"github.com/hamed0406/statusnotifier/internal/repo"
)

var _ repo.UptimeStore = (*Store)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS uptime (
  target     TEXT PRIMARY KEY,
  up         BIGINT NOT NULL DEFAULT 0,
  total      BIGINT NOT NULL DEFAULT 0,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK (up <= total)
);`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (map[string]domain.UptimeCounter, error) {
	rows, err := s.pool.Query(ctx, `SELECT target, up, total FROM uptime`)
	if err != nil {
		return nil, fmt.Errorf("load uptime: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.UptimeCounter{}
	for rows.Next() {
		var (
			target    string
			up, total int64
		)
		if err := rows.Scan(&target, &up, &total); err != nil {
			return nil, fmt.Errorf("scan uptime: %w", err)
		}
		out[target] = domain.UptimeCounter{Up: up, Total: total}
	}
	return out, rows.Err()
}

// Save upserts every counter in one transaction.
func (s *Store) Save(ctx context.Context, counters map[string]domain.UptimeCounter) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for target, c := range counters {
		_, err := tx.Exec(ctx, `
			INSERT INTO uptime (target, up, total, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (target)
			DO UPDATE SET up=EXCLUDED.up, total=EXCLUDED.total, updated_at=EXCLUDED.updated_at`,
			target, c.Up, c.Total)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", target, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("uptime_saved", zap.Int("targets", len(counters)))
	return nil
}
