package game

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// PlaceOrder validates and executes a single buy or sell at the stock's
// current quoted price. All-or-nothing: on any rejection the input state
// is returned untouched. Successful orders debit/credit cash and
// holdings, feed the round's net-imbalance ledger, and append one trade
// history entry.
func (e *Engine) PlaceOrder(st GameState, playerID, ticker string, side OrderSide, shares int64) (GameState, error) {
	if !st.TradingOpen {
		return st, ErrTradingClosed
	}
	if shares <= 0 {
		return st, ErrInvalidShares
	}
	stock, ok := StockByTicker(st, ticker)
	if !ok {
		return st, ErrUnknownStock
	}
	player, ok := GetPlayer(st, playerID)
	if !ok {
		return st, ErrUnknownPlayer
	}

	cost, err := orderCost(stock.Price, shares)
	if err != nil {
		return st, err
	}
	held := player.Holdings[ticker]

	next := st
	nextPlayer := player
	nextPlayer.Holdings = make(map[string]int64, len(player.Holdings)+1)
	for k, v := range player.Holdings {
		nextPlayer.Holdings[k] = v
	}

	var netDelta int64
	switch side {
	case SideBuy:
		if player.Cash < cost {
			return st, ErrInsufficientCash
		}
		nextPlayer.Cash = player.Cash - cost
		nextPlayer.Holdings[ticker] = held + shares
		netDelta = shares
	case SideSell:
		if held < shares {
			return st, ErrInsufficientShares
		}
		nextPlayer.Cash = player.Cash + cost
		if held == shares {
			delete(nextPlayer.Holdings, ticker)
		} else {
			nextPlayer.Holdings[ticker] = held - shares
		}
		netDelta = -shares
	default:
		return st, ErrInvalidShares
	}

	players := make([]Player, len(st.Players))
	for i, p := range st.Players {
		if p.ID == playerID {
			players[i] = nextPlayer
		} else {
			players[i] = p
		}
	}
	next.Players = players

	net := make(map[string]int64, len(st.RoundNetShares)+1)
	for k, v := range st.RoundNetShares {
		net[k] = v
	}
	net[ticker] += netDelta
	next.RoundNetShares = net

	entry := TradeHistoryEntry{
		ID:         uuid.NewString(),
		TS:         time.Now(),
		Round:      st.Round,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Ticker:     ticker,
		Side:       side,
		Shares:     shares,
		Price:      stock.Price,
	}
	next.TradeHistory = append(append([]TradeHistoryEntry{}, st.TradeHistory...), entry)

	e.log.Info("order executed",
		"player", player.Name,
		"ticker", ticker,
		"side", string(side),
		"shares", shares,
		"price", stock.Price,
	)
	return next, nil
}

// orderCost is price*shares guarded against int64 overflow; a cost that
// does not fit rejects the order rather than wrapping negative.
func orderCost(price, shares int64) (int64, error) {
	v := new(big.Int).Mul(big.NewInt(price), big.NewInt(shares))
	if !v.IsInt64() {
		return 0, ErrOrderTooLarge
	}
	return v.Int64(), nil
}
