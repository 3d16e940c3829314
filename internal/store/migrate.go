package store

import (
	"encoding/json"
	"log/slog"

	"stockcamp/internal/game"
)

// saveDoc is the persisted document shape. It carries the legacy
// lastRoundNews field older saves used before currentNews existed.
type saveDoc struct {
	game.GameState
	LastRoundNews []game.NewsEntry `json:"lastRoundNews,omitempty"`
}

// decodeSave unmarshals and migrates a stored payload. Any failure is
// reported as ErrNoSavedGame; persistence never surfaces a hard fault.
func decodeSave(payload []byte, eng *game.Engine, logger *slog.Logger) (game.GameState, error) {
	var doc saveDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		logger.Warn("saved game payload unreadable", "err", err)
		return game.GameState{}, ErrNoSavedGame
	}
	if doc.Version != game.SchemaVersion {
		logger.Warn("saved game version mismatch", "have", doc.Version, "want", game.SchemaVersion)
		return game.GameState{}, ErrNoSavedGame
	}

	st := migrate(doc)
	if len(st.UpcomingNews) == 0 && eng != nil {
		st.UpcomingNews = eng.PickSectorNews(st)
	}
	return st, nil
}

// migrate backfills fields that older same-version saves may lack, so a
// loaded game is always fully populated and playable.
func migrate(doc saveDoc) game.GameState {
	st := doc.GameState

	if st.Players == nil {
		st.Players = []game.Player{}
	}
	for i := range st.Players {
		if st.Players[i].Holdings == nil {
			st.Players[i].Holdings = map[string]int64{}
		}
	}
	if st.RoundNetShares == nil {
		st.RoundNetShares = map[string]int64{}
	}
	if st.TradeHistory == nil {
		st.TradeHistory = []game.TradeHistoryEntry{}
	}
	if st.ActivityLog == nil {
		st.ActivityLog = []game.ActivityLogEntry{}
	}
	if len(st.CurrentNews) == 0 && len(doc.LastRoundNews) > 0 {
		st.CurrentNews = doc.LastRoundNews
	}

	if st.PriceHistory == nil {
		st.PriceHistory = map[string][]int64{}
	}
	for _, s := range st.Stocks {
		if len(st.PriceHistory[s.Ticker]) == 0 {
			st.PriceHistory[s.Ticker] = []int64{s.Price}
		}
	}
	return st
}

func encodeSave(st game.GameState) ([]byte, error) {
	return json.Marshal(saveDoc{GameState: st})
}
