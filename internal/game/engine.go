// Package game implements the round resolution and trading engine: the
// state model, order execution, news scheduling, and per-round price
// movement for a facilitator-run stock-market simulation.
package game

import (
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"
)

// Engine binds the static event catalog to a logger and a random source.
// All engine methods are pure transformations of the GameState they are
// handed: on error the input state is returned unchanged. Randomness is
// the only non-determinism; pass a seeded rand for reproducible runs.
type Engine struct {
	catalog []MarketEvent
	log     *slog.Logger
	mu      sync.Mutex
	rand    *mathrand.Rand
}

// NewEngine creates an engine over a parsed event catalog. A nil rng gets
// a time-seeded source; a nil logger falls back to slog.Default.
func NewEngine(catalog []MarketEvent, logger *slog.Logger, rng *mathrand.Rand) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		catalog: catalog,
		log:     logger,
		rand:    rng,
	}
}

// Events returns the static event catalog.
func (e *Engine) Events() []MarketEvent {
	return e.catalog
}

// EventByID looks up a catalog event.
func (e *Engine) EventByID(id string) (MarketEvent, bool) {
	for _, ev := range e.catalog {
		if ev.ID == id {
			return ev, true
		}
	}
	return MarketEvent{}, false
}

func (e *Engine) nextFloat() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rand.Float64()
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rand.Intn(n)
}
