package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"stockcamp/internal/game"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps saves in a local SQLite file, the default for a
// single facilitator session.
type SQLiteStore struct {
	db  *sql.DB
	eng *game.Engine
	log *slog.Logger
}

// OpenSQLite opens or creates the database at path. An empty path
// defaults to ~/.stockcamp/game.db.
func OpenSQLite(path string, eng *game.Engine, logger *slog.Logger) (*SQLiteStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".stockcamp", "game.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; the session owns the file
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS saves (
		key        TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		payload    TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &SQLiteStore{db: db, eng: eng, log: logger}, nil
}

func (s *SQLiteStore) SaveGame(ctx context.Context, st game.GameState) error {
	payload, err := encodeSave(st)
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (key, version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		StorageKey, st.Version, string(payload), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadGame(ctx context.Context) (game.GameState, error) {
	var version int
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT version, payload FROM saves WHERE key = ?`, StorageKey,
	).Scan(&version, &payload)
	if err == sql.ErrNoRows {
		return game.GameState{}, ErrNoSavedGame
	}
	if err != nil {
		return game.GameState{}, fmt.Errorf("read save: %w", err)
	}
	if version != game.SchemaVersion {
		s.log.Warn("saved game version mismatch", "have", version, "want", game.SchemaVersion)
		return game.GameState{}, ErrNoSavedGame
	}
	return decodeSave([]byte(payload), s.eng, s.log)
}

func (s *SQLiteStore) HasSavedGame(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM saves WHERE key = ?`, StorageKey,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check save: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ClearSavedGame(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE key = ?`, StorageKey); err != nil {
		return fmt.Errorf("clear save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
