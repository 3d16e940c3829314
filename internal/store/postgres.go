package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stockcamp/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps saves in a shared Postgres database, for
// facilitators who project the classroom view from another machine.
type PostgresStore struct {
	pool *pgxpool.Pool
	eng  *game.Engine
	log  *slog.Logger
}

func OpenPostgres(ctx context.Context, databaseURL string, eng *game.Engine, logger *slog.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS saves (
		key        TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &PostgresStore{pool: pool, eng: eng, log: logger}, nil
}

func (s *PostgresStore) SaveGame(ctx context.Context, st game.GameState) error {
	payload, err := encodeSave(st)
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO saves (key, version, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE SET
			version = EXCLUDED.version,
			payload = EXCLUDED.payload,
			updated_at = now()`,
		StorageKey, st.Version, payload,
	)
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadGame(ctx context.Context) (game.GameState, error) {
	var version int
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT version, payload FROM saves WHERE key = $1`, StorageKey,
	).Scan(&version, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.GameState{}, ErrNoSavedGame
	}
	if err != nil {
		return game.GameState{}, fmt.Errorf("read save: %w", err)
	}
	if version != game.SchemaVersion {
		s.log.Warn("saved game version mismatch", "have", version, "want", game.SchemaVersion)
		return game.GameState{}, ErrNoSavedGame
	}
	return decodeSave(payload, s.eng, s.log)
}

func (s *PostgresStore) HasSavedGame(ctx context.Context) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM saves WHERE key = $1`, StorageKey,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check save: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) ClearSavedGame(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM saves WHERE key = $1`, StorageKey); err != nil {
		return fmt.Errorf("clear save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
