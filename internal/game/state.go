package game

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewGame builds a fresh state with the default roster, no players, and
// trading closed. Price history is seeded with each stock's opening price
// and the first round's news is scheduled immediately.
func (e *Engine) NewGame(startingCash int64) GameState {
	if startingCash <= 0 {
		startingCash = DefaultStartingCash
	}
	st := GameState{
		Version:        SchemaVersion,
		Round:          1,
		TradingOpen:    false,
		StartingCash:   startingCash,
		Players:        []Player{},
		Stocks:         DefaultStocks(),
		PriceHistory:   map[string][]int64{},
		RoundNetShares: map[string]int64{},
		TradeHistory:   []TradeHistoryEntry{},
		ActivityLog:    []ActivityLogEntry{},
	}
	for _, s := range st.Stocks {
		st.PriceHistory[s.Ticker] = []int64{s.Price}
	}
	st.UpcomingNews = e.PickSectorNews(st)
	st = appendActivity(st, "GM", fmt.Sprintf("New game started with %d coins per player.", startingCash))
	return st
}

// AddPlayer registers a new player with the starting cash balance.
func (e *Engine) AddPlayer(st GameState, name string) (GameState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return st, ErrInvalidPlayerName
	}
	p := Player{
		ID:       uuid.NewString(),
		Name:     name,
		Cash:     st.StartingCash,
		Holdings: map[string]int64{},
	}
	next := st
	next.Players = append(append([]Player{}, st.Players...), p)
	next = appendActivity(next, "GM", fmt.Sprintf("%s joined the game.", name))
	e.log.Info("player added", "player_id", p.ID, "name", name)
	return next, nil
}

// RemovePlayer drops a player by id. Removing an unknown id is a no-op.
func (e *Engine) RemovePlayer(st GameState, playerID string) GameState {
	next := st
	players := make([]Player, 0, len(st.Players))
	for _, p := range st.Players {
		if p.ID != playerID {
			players = append(players, p)
		}
	}
	next.Players = players
	return next
}

// SetTradingOpen flips the trading gate.
func (e *Engine) SetTradingOpen(st GameState, open bool) GameState {
	next := st
	next.TradingOpen = open
	msg := "Trading closed."
	if open {
		msg = "Trading open."
	}
	return appendActivity(next, "GM", msg)
}

// SetSelectedEvent records a manual GM card choice. Kept for older decks
// and alt-impact cards; the scheduler normally drives event selection.
func (e *Engine) SetSelectedEvent(st GameState, eventID string) GameState {
	next := st
	next.SelectedEventID = eventID
	next.SelectedEventAlt = false
	return next
}

// ToggleSelectedEventAlt flips the "use alternate impact" flag for the
// manually selected card.
func (e *Engine) ToggleSelectedEventAlt(st GameState) GameState {
	next := st
	next.SelectedEventAlt = !st.SelectedEventAlt
	return next
}

// GetPlayer finds a player by id.
func GetPlayer(st GameState, playerID string) (Player, bool) {
	for _, p := range st.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// FindPlayerByName matches a player by case-insensitive name.
func FindPlayerByName(st GameState, name string) (Player, bool) {
	for _, p := range st.Players {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Player{}, false
}

// StockByTicker finds a stock by ticker.
func StockByTicker(st GameState, ticker string) (Stock, bool) {
	for _, s := range st.Stocks {
		if s.Ticker == ticker {
			return s, true
		}
	}
	return Stock{}, false
}

// PortfolioValue is cash plus the market value of all holdings at current
// quoted prices. Saturates at MaxInt64 instead of wrapping when a loaded
// save carries absurd positions.
func PortfolioValue(st GameState, p Player) int64 {
	value := big.NewInt(p.Cash)
	for ticker, shares := range p.Holdings {
		if s, ok := StockByTicker(st, ticker); ok {
			value.Add(value, new(big.Int).Mul(big.NewInt(s.Price), big.NewInt(shares)))
		}
	}
	if !value.IsInt64() {
		return math.MaxInt64
	}
	return value.Int64()
}

// Leaderboard ranks players by portfolio value, ties broken by name.
func Leaderboard(st GameState) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(st.Players))
	for _, p := range st.Players {
		rows = append(rows, LeaderboardRow{
			PlayerID:       p.ID,
			Name:           p.Name,
			Cash:           p.Cash,
			PortfolioValue: PortfolioValue(st, p),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PortfolioValue != rows[j].PortfolioValue {
			return rows[i].PortfolioValue > rows[j].PortfolioValue
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func appendActivity(st GameState, actor, message string) GameState {
	entry := ActivityLogEntry{
		ID:      uuid.NewString(),
		TS:      time.Now(),
		Round:   st.Round,
		Actor:   actor,
		Message: message,
	}
	next := st
	next.ActivityLog = append(append([]ActivityLogEntry{}, st.ActivityLog...), entry)
	return next
}
