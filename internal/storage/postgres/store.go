package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nennneko5787/novelist-ai/internal/config"
	"github.com/nennneko5787/novelist-ai/internal/model/novel"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// Store persists novels in the novels table, one row per novel with the
// full pages kept as a text array.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an established connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect builds a pgx pool from configuration and verifies connectivity,
// retrying a bounded number of times so a database that is still starting
// up does not kill the service.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			return pool, nil
		}
		if attempt >= attempts {
			break
		}

		log.Printf("[postgres] ping failed (attempt %d/%d): %v", attempt, attempts, err)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.ConnectInterval):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to reach database after %d attempts: %w", attempts, err)
}

// Get returns the record for id, or novel.ErrNovelNotFound.
func (s *Store) Get(ctx context.Context, id string) (novel.Novel, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, owner, premise, pages, finished, created_at FROM novels WHERE id = $1`, id)

	var n novel.Novel
	err := row.Scan(&n.ID, &n.Owner, &n.Premise, &n.Pages, &n.Finished, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return novel.Novel{}, novel.ErrNovelNotFound
	}
	if err != nil {
		return novel.Novel{}, fmt.Errorf("failed to load novel %s: %w", id, err)
	}
	return n, nil
}

// Create inserts a new record, or novel.ErrNovelExists on an id collision.
func (s *Store) Create(ctx context.Context, n novel.Novel) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO novels (id, owner, premise, pages, finished, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.Owner, n.Premise, n.Pages, n.Finished, n.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return novel.ErrNovelExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert novel %s: %w", n.ID, err)
	}
	return nil
}

// Update overwrites the pages and finished flag of an existing record.
func (s *Store) Update(ctx context.Context, id string, pages []string, finished bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE novels SET pages = $1, finished = $2 WHERE id = $3`,
		pages, finished, id)
	if err != nil {
		return fmt.Errorf("failed to update novel %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return novel.ErrNovelNotFound
	}
	return nil
}

// ListByOwner returns every novel created by the given user, oldest first.
func (s *Store) ListByOwner(ctx context.Context, owner int64) ([]novel.Novel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner, premise, pages, finished, created_at FROM novels WHERE owner = $1 ORDER BY created_at`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list novels for owner %d: %w", owner, err)
	}
	defer rows.Close()

	var novels []novel.Novel
	for rows.Next() {
		var n novel.Novel
		if err := rows.Scan(&n.ID, &n.Owner, &n.Premise, &n.Pages, &n.Finished, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan novel row: %w", err)
		}
		novels = append(novels, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate novel rows: %w", err)
	}
	return novels, nil
}
