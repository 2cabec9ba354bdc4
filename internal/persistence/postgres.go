package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/grifflux/pennywatch/internal/rank"
)

// PostgresStore keeps one row per run with the leaderboard as JSONB.
type PostgresStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresStore wraps an open connection.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: 5 * time.Second}
}

// OpenPostgres connects and ensures the schema.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := NewPostgresStore(db)
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scan_runs (
			run_id       TEXT PRIMARY KEY,
			generated_at TIMESTAMPTZ NOT NULL,
			leaderboard  JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure scan_runs schema: %w", err)
	}
	return nil
}

// SaveLeaderboard writes the run wholesale; re-saving the same run ID
// replaces the previous payload.
func (s *PostgresStore) SaveLeaderboard(ctx context.Context, lb rank.Leaderboard) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scan_runs (run_id, generated_at, leaderboard)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			leaderboard  = EXCLUDED.leaderboard`,
		lb.RunID, lb.GeneratedAt, payload)
	if err != nil {
		return fmt.Errorf("save leaderboard: %w", err)
	}
	return nil
}

// LatestLeaderboard returns the newest run, or nil when none exist.
func (s *PostgresStore) LatestLeaderboard(ctx context.Context) (*rank.Leaderboard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var payload []byte
	err := s.db.QueryRowxContext(ctx, `
		SELECT leaderboard FROM scan_runs
		ORDER BY generated_at DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest leaderboard: %w", err)
	}
	var lb rank.Leaderboard
	if err := json.Unmarshal(payload, &lb); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return &lb, nil
}
