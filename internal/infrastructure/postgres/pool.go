package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rentpal/rentpal-api/internal/config"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// the same interface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewPool builds a bounded connection pool (1 to 10 connections) with an
// idle-in-transaction timeout so a stuck transaction cannot hold a
// connection forever. The initial ping is retried with exponential backoff
// so the API can come up before the database does.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	pc.MinConns = 1
	pc.MaxConns = 10
	pc.MaxConnLifetime = time.Hour
	pc.ConnConfig.RuntimeParams["idle_in_transaction_session_timeout"] = "600000"

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	const maxRetries = 5
	delay := 2 * time.Second
	for attempt := 1; ; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return pool, nil
		}
		if attempt == maxRetries {
			pool.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, err)
		}
		log.Printf("database ping failed (attempt %d/%d), retrying in %s", attempt, maxRetries, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		}
		delay *= 2
	}
}
