// Package store persists the game as a single versioned document in an
// external store: a local SQLite file by default, or Postgres when the
// facilitator runs a shared database. Older save shapes are migrated
// forward on load.
package store

import (
	"context"
	"errors"
	"log/slog"

	"stockcamp/internal/game"
)

// StorageKey is the fixed key the one active game is saved under.
const StorageKey = "stock-camp-sim:v1"

// ErrNoSavedGame covers the missing-save, version-mismatch, and
// parse-failure cases alike; callers treat them all as "start fresh".
var ErrNoSavedGame = errors.New("no saved game")

// Store is the persistence contract consumed by the facilitator surfaces.
type Store interface {
	SaveGame(ctx context.Context, st game.GameState) error
	LoadGame(ctx context.Context) (game.GameState, error)
	HasSavedGame(ctx context.Context) (bool, error)
	ClearSavedGame(ctx context.Context) error
	Close() error
}

// Open picks the backend: Postgres when databaseURL is set, otherwise the
// SQLite file at dataPath. The engine is needed to reschedule news for
// saves that predate the scheduler.
func Open(ctx context.Context, databaseURL, dataPath string, eng *game.Engine, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if databaseURL != "" {
		return OpenPostgres(ctx, databaseURL, eng, logger)
	}
	return OpenSQLite(dataPath, eng, logger)
}
