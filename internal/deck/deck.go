package deck

import (
	_ "embed"
	"fmt"
	"os"

	"stockcamp/internal/game"
)

//go:embed content_pack.md
var defaultPack string

// Default parses the embedded content pack shipped with the binary.
func Default() []game.MarketEvent {
	return Parse(defaultPack)
}

// LoadFile parses a facilitator-supplied deck document. An empty path
// falls back to the embedded default.
func LoadFile(path string) ([]game.MarketEvent, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content pack: %w", err)
	}
	return Parse(string(raw)), nil
}
