package config

import (
	"os"
	"strconv"
	"strings"
)

// Config drives the facilitator CLI and the classroom view server.
// Everything is optional; defaults suit a single laptop session.
type Config struct {
	// DataPath is the SQLite save file. Ignored when DatabaseURL is set.
	DataPath string
	// DatabaseURL selects the Postgres backend when non-empty.
	DatabaseURL string
	// ContentPackPath overrides the embedded event deck.
	ContentPackPath string
	// StartingCash is the per-player opening balance for new games.
	StartingCash int64
	// Addr is the classroom view server listen address.
	Addr string
	// LogLevel is debug, info, warn, or error.
	LogLevel string
}

func LoadFromEnv() Config {
	return Config{
		DataPath:        strings.TrimSpace(os.Getenv("STOCKCAMP_DATA_PATH")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("STOCKCAMP_DATABASE_URL")),
		ContentPackPath: strings.TrimSpace(os.Getenv("STOCKCAMP_CONTENT_PACK")),
		StartingCash:    envInt64Default("STOCKCAMP_STARTING_CASH", 1000),
		Addr:            envAddrDefault("STOCKCAMP_ADDR", ":8090"),
		LogLevel:        envDefault("STOCKCAMP_LOG_LEVEL", "info"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envAddrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if !strings.HasPrefix(v, ":") && !strings.Contains(v, ":") {
		v = ":" + v
	}
	return v
}
