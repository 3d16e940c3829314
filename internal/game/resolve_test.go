package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveState(stocks []Stock) GameState {
	st := GameState{
		Version:        SchemaVersion,
		Round:          1,
		Stocks:         stocks,
		PriceHistory:   map[string][]int64{},
		RoundNetShares: map[string]int64{},
	}
	for _, s := range stocks {
		st.PriceHistory[s.Ticker] = []int64{s.Price}
	}
	return st
}

// assertPriceNear checks price against base*(1+impact) within the noise
// band for the stock's volatility, plus one for rounding.
func assertPriceNear(t *testing.T, price, base int64, impact float64, vol Volatility) {
	t.Helper()
	band := NoiseRange(vol)
	lo := int64(float64(base)*(1+impact-band)) - 1
	hi := int64(float64(base)*(1+impact+band)) + 1
	assert.GreaterOrEqual(t, price, lo)
	assert.LessOrEqual(t, price, hi)
}

func TestResolveEmptyCatalog(t *testing.T) {
	eng := testEngine(nil, 1)
	st := resolveState(DefaultStocks())

	for i := 0; i < 2; i++ {
		got, applied, err := eng.ResolveNextRound(st)
		assert.ErrorIs(t, err, ErrNoEvents)
		assert.Nil(t, applied)
		assert.Equal(t, st, got)
	}
}

func TestResolveAdvancesRound(t *testing.T) {
	eng := testEngine(testCatalog(), 9)
	st := eng.NewGame(0)
	st = eng.SetTradingOpen(st, true)
	st = eng.SetSelectedEvent(st, "ev_market_up")
	st = eng.ToggleSelectedEventAlt(st)
	st.RoundNetShares = map[string]int64{"BBDY": 12}
	scheduled := st.UpcomingNews
	require.NotEmpty(t, scheduled)

	next, applied, err := eng.ResolveNextRound(st)
	require.NoError(t, err)
	require.NotNil(t, applied)

	assert.Equal(t, st.Round+1, next.Round)
	assert.False(t, next.TradingOpen)
	assert.Empty(t, next.RoundNetShares)
	assert.Empty(t, next.SelectedEventID)
	assert.False(t, next.SelectedEventAlt)
	assert.Equal(t, scheduled, next.CurrentNews)
	assert.Len(t, next.UpcomingNews, len(Sectors))
	assert.Equal(t, applied.ID, next.LastEventID)
}

func TestResolveDeterministicForSeed(t *testing.T) {
	for i := 0; i < 3; i++ {
		a := testEngine(testCatalog(), 42)
		b := testEngine(testCatalog(), 42)
		stA := a.NewGame(0)
		stB := b.NewGame(0)

		nextA, _, err := a.ResolveNextRound(stA)
		require.NoError(t, err)
		nextB, _, err := b.ResolveNextRound(stB)
		require.NoError(t, err)

		assert.Equal(t, nextA.Stocks, nextB.Stocks)
		assert.Equal(t, nextA.CurrentNews, nextB.CurrentNews)
	}
}

func TestResolveSectorImpact(t *testing.T) {
	catalog := []MarketEvent{
		{ID: "ev_sun", Title: "Sunny week", Scope: ScopeSector, Target: string(SectorEnergy), ImpactPct: 0.10, Explanation: "solar"},
	}
	eng := testEngine(catalog, 5)
	st := resolveState([]Stock{
		{Ticker: "SUNE", Name: "Sun Energy", Sector: SectorEnergy, Price: 1000, Volatility: VolLow},
		{Ticker: "RAIL", Name: "Railways", Sector: SectorTransport, Price: 1000, Volatility: VolLow},
	})

	next, applied, err := eng.ResolveNextRound(st)
	require.NoError(t, err)
	require.NotNil(t, applied)
	assert.Equal(t, "ev_sun", applied.ID)

	sune, _ := StockByTicker(next, "SUNE")
	rail, _ := StockByTicker(next, "RAIL")
	assertPriceNear(t, sune.Price, 1000, 0.10, VolLow)
	assertPriceNear(t, rail.Price, 1000, 0, VolLow)
}

func TestResolveEventImpactClamped(t *testing.T) {
	catalog := []MarketEvent{
		{ID: "ev_moon", Title: "To the moon", Scope: ScopeMarket, Target: TargetAll, ImpactPct: 0.50, Explanation: "mania"},
	}
	eng := testEngine(catalog, 5)
	st := resolveState([]Stock{
		{Ticker: "ANYC", Name: "Any Co", Sector: SectorEnergy, Price: 1000, Volatility: VolLow},
	})

	next, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	s, _ := StockByTicker(next, "ANYC")
	assertPriceNear(t, s.Price, 1000, EventClamp, VolLow)
}

func TestResolveCrashSparesFood(t *testing.T) {
	catalog := []MarketEvent{
		{ID: "ev_crash", Title: "Market crash: panic!", Scope: ScopeMarket, Target: TargetAll, ImpactPct: -0.10, Explanation: "fear", Crash: true},
	}
	eng := testEngine(catalog, 5)
	st := resolveState([]Stock{
		{Ticker: "TECH", Name: "Tech Co", Sector: SectorTechMedia, Price: 1000, Volatility: VolLow},
		{Ticker: "FARM", Name: "Farm Co", Sector: SectorFood, Price: 1000, Volatility: VolLow},
	})

	next, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	tech, _ := StockByTicker(next, "TECH")
	farm, _ := StockByTicker(next, "FARM")
	assertPriceNear(t, tech.Price, 1000, -0.10, VolLow)
	assertPriceNear(t, farm.Price, 1000, CrashFoodImpact, VolLow)
	assert.Greater(t, farm.Price, tech.Price)
}

func TestResolvePriceFloor(t *testing.T) {
	catalog := []MarketEvent{
		{ID: "ev_crash", Title: "Market crash: panic!", Scope: ScopeMarket, Target: TargetAll, ImpactPct: -0.10, Explanation: "fear", Crash: true},
	}
	eng := testEngine(catalog, 5)
	st := resolveState([]Stock{
		{Ticker: "PENN", Name: "Penny Co", Sector: SectorTransport, Price: MinPrice, Volatility: VolHigh},
	})

	next, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	s, _ := StockByTicker(next, "PENN")
	assert.Equal(t, MinPrice, s.Price)
}

func TestResolveHistoryCapped(t *testing.T) {
	eng := testEngine(testCatalog(), 5)
	st := resolveState([]Stock{
		{Ticker: "BBDY", Name: "ByteBuddies", Sector: SectorTechMedia, Price: 120, Volatility: VolMed},
	})
	hist := make([]int64, HistoryCap)
	for i := range hist {
		hist[i] = 100 + int64(i)
	}
	st.PriceHistory["BBDY"] = hist

	next, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	got := next.PriceHistory["BBDY"]
	require.Len(t, got, HistoryCap)
	s, _ := StockByTicker(next, "BBDY")
	assert.Equal(t, s.Price, got[HistoryCap-1])
	// Oldest entry rolled off.
	assert.Equal(t, int64(101), got[0])
	// Input history untouched.
	assert.Len(t, st.PriceHistory["BBDY"], HistoryCap)
	assert.Equal(t, int64(100), st.PriceHistory["BBDY"][0])
}

func TestResolveImbalancePressure(t *testing.T) {
	// The only card targets an unlisted ticker, so event impact is zero
	// and the move is pure imbalance plus noise.
	catalog := []MarketEvent{
		{ID: "ev_ghost", Title: "Ghost", Scope: ScopeCompany, Target: "GONE", ImpactPct: 0.09, Explanation: "n/a"},
	}
	eng := testEngine(catalog, 5)
	st := resolveState([]Stock{
		{Ticker: "HYPE", Name: "Hype Co", Sector: SectorTechMedia, Price: 1000, Volatility: VolLow},
	})
	st.RoundNetShares = map[string]int64{"HYPE": 1000} // way past the clamp

	next, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	s, _ := StockByTicker(next, "HYPE")
	assertPriceNear(t, s.Price, 1000, ImbalanceClamp, VolLow)
}

func TestResolveAltImpact(t *testing.T) {
	alt := -0.06
	catalog := []MarketEvent{
		{ID: "ev_gm", Title: "GM's choice", Scope: ScopeMarket, Target: TargetAll, ImpactPct: 0.06, ImpactPctAlt: &alt, Explanation: "either way"},
	}
	eng := testEngine(catalog, 5)
	st := resolveState([]Stock{
		{Ticker: "FLIP", Name: "Flip Co", Sector: SectorEnergy, Price: 1000, Volatility: VolLow},
	})
	st.SelectedEventID = "ev_gm"
	st.SelectedEventAlt = true

	next, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	s, _ := StockByTicker(next, "FLIP")
	assertPriceNear(t, s.Price, 1000, alt, VolLow)
}

func TestResolveAppliesDuplicateHeadlineOnce(t *testing.T) {
	catalog := []MarketEvent{
		{ID: "ev_up", Title: "Up we go", Scope: ScopeMarket, Target: TargetAll, ImpactPct: 0.10, Explanation: "up"},
	}
	eng := testEngine(catalog, 5)
	st := resolveState([]Stock{
		{Ticker: "ONEX", Name: "Once Co", Sector: SectorEnergy, Price: 1000, Volatility: VolLow},
	})
	// The same card headlines two sectors; it must only move prices once.
	st.UpcomingNews = []NewsEntry{
		{SectorID: SectorEnergy, SectorName: "Energy", EventID: "ev_up"},
		{SectorID: SectorFood, SectorName: "Food & Farming", EventID: "ev_up"},
	}

	next, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	s, _ := StockByTicker(next, "ONEX")
	assertPriceNear(t, s.Price, 1000, 0.10, VolLow)
}

func TestResolveReschedulesStaleNews(t *testing.T) {
	eng := testEngine(testCatalog(), 9)
	st := eng.NewGame(0)
	// The deck was swapped mid-game: the schedule names cards the current
	// catalog does not have.
	st.UpcomingNews = []NewsEntry{
		{SectorID: SectorEnergy, SectorName: "Energy", EventID: "cp_99_removed_card"},
		{SectorID: SectorFood, SectorName: "Food & Farming", EventID: "cp_98_also_gone"},
	}

	next, applied, err := eng.ResolveNextRound(st)
	require.NoError(t, err)
	require.NotNil(t, applied)

	// The round resolved against a fresh schedule, not the dangling ids.
	require.Len(t, next.CurrentNews, len(Sectors))
	for _, n := range next.CurrentNews {
		_, ok := eng.EventByID(n.EventID)
		assert.True(t, ok, "current news kept unknown event %s", n.EventID)
	}
	assert.Equal(t, applied.ID, next.LastEventID)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	eng := testEngine(testCatalog(), 5)
	st := eng.NewGame(0)
	before := st.Stocks[0].Price

	_, _, err := eng.ResolveNextRound(st)
	require.NoError(t, err)

	assert.Equal(t, before, st.Stocks[0].Price)
	assert.Equal(t, 1, st.Round)
}
