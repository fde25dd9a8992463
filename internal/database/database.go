// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. Nil when Postgres is disabled; callers
// must check before persisting.
var DB *pgxpool.Pool

// Connect opens the pool and verifies it with a ping. The matches table is
// created if missing so a fresh database works out of the box.
func Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS matches (
			id            UUID PRIMARY KEY,
			initial_state JSONB,
			final_state   JSONB,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			finished_at   TIMESTAMPTZ
		)`); err != nil {
		pool.Close()
		return fmt.Errorf("ensure matches table: %w", err)
	}
	DB = pool
	logrus.Info("database: connected to Postgres")
	return nil
}

// UpsertInitialMatchState stores the deal snapshot for replay and audit.
func UpsertInitialMatchState(ctx context.Context, matchID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal initial state: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO matches (id, initial_state) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET initial_state = EXCLUDED.initial_state`,
		matchID, data)
	if err != nil {
		return fmt.Errorf("upsert initial state for match %s: %w", matchID, err)
	}
	return nil
}

// StoreFinalMatchState records the terminal snapshot and finish time.
func StoreFinalMatchState(ctx context.Context, matchID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal final state: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO matches (id, final_state, finished_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET final_state = EXCLUDED.final_state, finished_at = now()`,
		matchID, data)
	if err != nil {
		return fmt.Errorf("store final state for match %s: %w", matchID, err)
	}
	return nil
}

// Close releases the pool. Safe to call when Postgres is disabled.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}
