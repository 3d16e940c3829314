package game

import "time"

// SchemaVersion tags the persisted GameState document. Loads of any other
// version are treated as "no saved game".
const SchemaVersion = 1

type SectorID string

const (
	SectorTechMedia SectorID = "TECH_MEDIA"
	SectorEnergy    SectorID = "ENERGY"
	SectorTransport SectorID = "TRANSPORT"
	SectorHealth    SectorID = "HEALTH"
	SectorFood      SectorID = "FOOD"
)

type Volatility string

const (
	VolLow  Volatility = "LOW"
	VolMed  Volatility = "MED"
	VolHigh Volatility = "HIGH"
)

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

type EventScope string

const (
	ScopeCompany EventScope = "COMPANY"
	ScopeSector  EventScope = "SECTOR"
	ScopeMarket  EventScope = "MARKET"
)

// TargetAll is the target sentinel for MARKET-scoped events.
const TargetAll = "ALL"

type Stock struct {
	Ticker     string     `json:"ticker"`
	Name       string     `json:"name"`
	Sector     SectorID   `json:"sector"`
	Price      int64      `json:"price"`
	Volatility Volatility `json:"volatility"`
}

type Player struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Cash     int64            `json:"cash"`
	Holdings map[string]int64 `json:"holdings"`
}

// MarketEvent is one card of the static event catalog. Immutable once
// parsed. Crash is derived at parse time so resolution never has to
// string-match titles.
type MarketEvent struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Scope        EventScope `json:"scope"`
	Target       string     `json:"target"` // ticker, sector id, or "ALL"
	ImpactPct    float64    `json:"impactPct"`
	ImpactPctAlt *float64   `json:"impactPctAlt,omitempty"`
	Explanation  string     `json:"explanation"`
	Crash        bool       `json:"crash,omitempty"`
}

// NewsEntry is one scheduled or applied headline for a sector.
type NewsEntry struct {
	SectorID   SectorID `json:"sectorId"`
	SectorName string   `json:"sectorName"`
	EventID    string   `json:"eventId"`
}

type TradeHistoryEntry struct {
	ID         string    `json:"id"`
	TS         time.Time `json:"ts"`
	Round      int       `json:"round"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Ticker     string    `json:"ticker"`
	Side       OrderSide `json:"side"`
	Shares     int64     `json:"shares"`
	Price      int64     `json:"price"`
}

type ActivityLogEntry struct {
	ID      string    `json:"id"`
	TS      time.Time `json:"ts"`
	Round   int       `json:"round"`
	Actor   string    `json:"actor"` // player name or "GM"
	Message string    `json:"message"`
}

// GameState is the aggregate root. Engine functions take a GameState and
// return a new one; the live copy is owned by the facilitator session.
type GameState struct {
	Version      int   `json:"version"`
	Round        int   `json:"round"`
	TradingOpen  bool  `json:"tradingOpen"`
	StartingCash int64 `json:"startingCash"`

	Players []Player `json:"players"`
	Stocks  []Stock  `json:"stocks"`

	// PriceHistory holds past prices per ticker in resolve order, capped
	// at HistoryCap entries; the last entry equals the current price.
	PriceHistory map[string][]int64 `json:"priceHistory,omitempty"`

	// RoundNetShares tracks net shares bought minus sold per ticker since
	// the last resolution.
	RoundNetShares map[string]int64 `json:"roundNetShares"`

	// Manual event selection, superseded by the scheduler but kept for
	// older saves and GM-choice alt impacts.
	SelectedEventID  string `json:"selectedEventId,omitempty"`
	SelectedEventAlt bool   `json:"selectedEventAlt,omitempty"`
	LastEventID      string `json:"lastEventId,omitempty"`

	CurrentNews  []NewsEntry `json:"currentNews,omitempty"`
	UpcomingNews []NewsEntry `json:"upcomingNews,omitempty"`

	TradeHistory []TradeHistoryEntry `json:"tradeHistory"`
	ActivityLog  []ActivityLogEntry  `json:"activityLog,omitempty"`
}

// Sector pairs a sector id with its display name as it appears in event
// deck documents.
type Sector struct {
	ID   SectorID
	Name string
}

// LeaderboardRow is a presentation view of a player's standing.
type LeaderboardRow struct {
	Rank           int    `json:"rank"`
	PlayerID       string `json:"player_id"`
	Name           string `json:"name"`
	Cash           int64  `json:"cash"`
	PortfolioValue int64  `json:"portfolio_value"`
}
