package game

import (
	"fmt"
	"math"
)

// ResolveNextRound applies the scheduled news, the round's order
// imbalance, and bounded noise to every stock, then advances the round.
// The returned event is the last one applied, for narration. On error the
// input state comes back unchanged.
func (e *Engine) ResolveNextRound(st GameState) (GameState, *MarketEvent, error) {
	if len(e.catalog) == 0 {
		return st, nil, ErrNoEvents
	}

	entries := st.UpcomingNews
	if len(entries) == 0 {
		entries = e.PickSectorNews(st)
	}
	applied := e.resolveEntries(entries)
	if len(applied) == 0 {
		// The schedule names cards the catalog no longer has (the deck
		// was swapped mid-game). Reschedule from the current catalog.
		e.log.Warn("scheduled news ids missing from catalog, rescheduling", "entries", len(entries))
		entries = e.PickSectorNews(st)
		applied = e.resolveEntries(entries)
	}

	stocks := make([]Stock, len(st.Stocks))
	history := make(map[string][]int64, len(st.Stocks))
	for k, v := range st.PriceHistory {
		history[k] = append([]int64{}, v...)
	}

	for i, s := range st.Stocks {
		eventImpact := 0.0
		for _, ev := range applied {
			eventImpact += e.contribution(st, ev, s)
		}
		eventImpact = clamp(eventImpact, -EventClamp, EventClamp)

		imbalance := clamp(float64(st.RoundNetShares[s.Ticker])/ImbalanceScale, -ImbalanceClamp, ImbalanceClamp)

		rng := NoiseRange(s.Volatility)
		noise := (e.nextFloat()*2 - 1) * rng

		pct := clamp(eventImpact+imbalance+noise, -TotalClamp, TotalClamp)
		price := int64(math.Round(float64(s.Price) * (1 + pct)))
		if price < MinPrice {
			price = MinPrice
		}

		next := s
		next.Price = price
		stocks[i] = next

		h := append(history[s.Ticker], price)
		if len(h) > HistoryCap {
			h = h[len(h)-HistoryCap:]
		}
		history[s.Ticker] = h
	}

	next := st
	next.Round = st.Round + 1
	next.TradingOpen = false
	next.Stocks = stocks
	next.PriceHistory = history
	next.RoundNetShares = map[string]int64{}
	next.SelectedEventID = ""
	next.SelectedEventAlt = false
	next.CurrentNews = entries

	var last *MarketEvent
	if len(applied) > 0 {
		ev := applied[len(applied)-1]
		last = &ev
		next.LastEventID = ev.ID
	}

	next.UpcomingNews = e.PickSectorNews(next)
	next = appendActivity(next, "GM", fmt.Sprintf("Round %d resolved: %d headlines applied.", st.Round, len(applied)))

	e.log.Info("round resolved", "round", next.Round, "events", len(applied))
	return next, last, nil
}

// resolveEntries maps scheduled news entries to catalog events, dropping
// unknown ids and applying each event once even when it headlines several
// sectors.
func (e *Engine) resolveEntries(entries []NewsEntry) []MarketEvent {
	seen := make(map[string]bool, len(entries))
	var events []MarketEvent
	for _, entry := range entries {
		if seen[entry.EventID] {
			continue
		}
		if ev, ok := e.EventByID(entry.EventID); ok {
			seen[entry.EventID] = true
			events = append(events, ev)
		}
	}
	return events
}

// contribution is one event's signed impact on one stock. Crash cards hit
// defensive FOOD stocks with a fixed smaller drop instead of the market
// impact. The GM's manual alt-impact choice is honored when it names an
// applied card.
func (e *Engine) contribution(st GameState, ev MarketEvent, s Stock) float64 {
	impact := ev.ImpactPct
	if st.SelectedEventAlt && st.SelectedEventID == ev.ID && ev.ImpactPctAlt != nil {
		impact = *ev.ImpactPctAlt
	}

	switch ev.Scope {
	case ScopeMarket:
		if ev.Target != TargetAll {
			return 0
		}
		if ev.Crash && s.Sector == SectorFood {
			return CrashFoodImpact
		}
		return impact
	case ScopeSector:
		if ev.Target == string(s.Sector) {
			return impact
		}
	case ScopeCompany:
		if ev.Target == s.Ticker {
			return impact
		}
	}
	return 0
}
