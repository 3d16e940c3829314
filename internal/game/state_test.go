package game

import (
	"io"
	"log/slog"
	"math"
	mathrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(catalog []MarketEvent, seed int64) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(catalog, logger, mathrand.New(mathrand.NewSource(seed)))
}

func testCatalog() []MarketEvent {
	return []MarketEvent{
		{ID: "ev_market_up", Title: "Everything rallies", Scope: ScopeMarket, Target: TargetAll, ImpactPct: 0.04, Explanation: "broad optimism"},
		{ID: "ev_energy_up", Title: "Sunny week", Scope: ScopeSector, Target: string(SectorEnergy), ImpactPct: 0.06, Explanation: "solar output"},
		{ID: "ev_bbdy_down", Title: "App store bug", Scope: ScopeCompany, Target: "BBDY", ImpactPct: -0.05, Explanation: "refunds issued"},
	}
}

func TestNewGame(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)

	assert.Equal(t, SchemaVersion, st.Version)
	assert.Equal(t, 1, st.Round)
	assert.False(t, st.TradingOpen)
	assert.Equal(t, DefaultStartingCash, st.StartingCash)
	assert.Empty(t, st.Players)
	require.Len(t, st.Stocks, 12)

	for _, s := range st.Stocks {
		require.Len(t, st.PriceHistory[s.Ticker], 1)
		assert.Equal(t, s.Price, st.PriceHistory[s.Ticker][0])
	}
	assert.Len(t, st.UpcomingNews, len(Sectors))
	assert.NotEmpty(t, st.ActivityLog)
}

func TestNewGameCustomCash(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(2500)
	assert.Equal(t, int64(2500), st.StartingCash)
}

func TestAddPlayer(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)

	st, err := eng.AddPlayer(st, "  Alice  ")
	require.NoError(t, err)
	require.Len(t, st.Players, 1)
	assert.Equal(t, "Alice", st.Players[0].Name)
	assert.Equal(t, st.StartingCash, st.Players[0].Cash)
	assert.NotEmpty(t, st.Players[0].ID)
	assert.Empty(t, st.Players[0].Holdings)
}

func TestAddPlayerEmptyName(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)

	_, err := eng.AddPlayer(st, "   ")
	assert.ErrorIs(t, err, ErrInvalidPlayerName)
}

func TestRemovePlayer(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)
	st, err := eng.AddPlayer(st, "Alice")
	require.NoError(t, err)
	st, err = eng.AddPlayer(st, "Bob")
	require.NoError(t, err)

	st = eng.RemovePlayer(st, st.Players[0].ID)
	require.Len(t, st.Players, 1)
	assert.Equal(t, "Bob", st.Players[0].Name)

	// Unknown ids are a no-op.
	st = eng.RemovePlayer(st, "nope")
	assert.Len(t, st.Players, 1)
}

func TestFindPlayerByName(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)
	st, err := eng.AddPlayer(st, "Alice")
	require.NoError(t, err)

	p, ok := FindPlayerByName(st, "  aLiCe ")
	require.True(t, ok)
	assert.Equal(t, "Alice", p.Name)

	_, ok = FindPlayerByName(st, "Bob")
	assert.False(t, ok)
}

func TestPortfolioValue(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)

	bbdy, ok := StockByTicker(st, "BBDY")
	require.True(t, ok)

	p := Player{Cash: 400, Holdings: map[string]int64{"BBDY": 3, "GONE": 5}}
	// Delisted holdings value at zero rather than failing.
	assert.Equal(t, 400+3*bbdy.Price, PortfolioValue(st, p))
}

func TestPortfolioValueSaturates(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)

	p := Player{Cash: 1, Holdings: map[string]int64{"BBDY": math.MaxInt64 / 2, "CKCR": math.MaxInt64 / 2}}
	assert.Equal(t, int64(math.MaxInt64), PortfolioValue(st, p))
}

func TestLeaderboard(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)
	for _, name := range []string{"Cara", "Alice", "Bob"} {
		var err error
		st, err = eng.AddPlayer(st, name)
		require.NoError(t, err)
	}

	// Give Bob a position so he outranks the others.
	bob, ok := FindPlayerByName(st, "Bob")
	require.True(t, ok)
	st = eng.SetTradingOpen(st, true)
	st, err := eng.PlaceOrder(st, bob.ID, "BBDY", SideBuy, 2)
	require.NoError(t, err)

	rows := Leaderboard(st)
	require.Len(t, rows, 3)
	// Buying at the quote keeps value flat, so the tie on value is broken
	// alphabetically.
	assert.Equal(t, []string{"Alice", "Bob", "Cara"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, st.StartingCash, row.PortfolioValue)
	}
}

func TestSetTradingOpen(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)

	st = eng.SetTradingOpen(st, true)
	assert.True(t, st.TradingOpen)
	st = eng.SetTradingOpen(st, false)
	assert.False(t, st.TradingOpen)
}

func TestSetSelectedEvent(t *testing.T) {
	eng := testEngine(testCatalog(), 1)
	st := eng.NewGame(0)

	st = eng.SetSelectedEvent(st, "ev_market_up")
	assert.Equal(t, "ev_market_up", st.SelectedEventID)
	assert.False(t, st.SelectedEventAlt)

	st = eng.ToggleSelectedEventAlt(st)
	assert.True(t, st.SelectedEventAlt)

	// Picking another card resets the alt choice.
	st = eng.SetSelectedEvent(st, "ev_energy_up")
	assert.False(t, st.SelectedEventAlt)
}
