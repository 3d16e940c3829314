package game

import (
	"errors"
	"math"
)

const (
	// DefaultStartingCash is each player's opening balance in coins.
	DefaultStartingCash = int64(1000)

	// MinPrice is the hard floor for any stock price after resolution.
	MinPrice = int64(10)

	// HistoryCap bounds the per-ticker price history.
	HistoryCap = 60

	// Net order imbalance converts to price pressure at 1/ImbalanceScale
	// per share, clamped to ±ImbalanceClamp.
	ImbalanceScale = 200.0
	ImbalanceClamp = 0.03

	// EventClamp bounds the summed event impact; TotalClamp bounds the
	// whole per-round move.
	EventClamp = 0.25
	TotalClamp = 0.30

	// CrashThreshold marks a MARKET event as a crash card; crash cards
	// move FOOD stocks by CrashFoodImpact instead of the market impact.
	CrashThreshold  = -0.08
	CrashFoodImpact = -0.06
)

var (
	ErrTradingClosed      = errors.New("trading is closed")
	ErrInvalidShares      = errors.New("shares must be a whole number > 0")
	ErrUnknownStock       = errors.New("unknown stock")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrInsufficientCash   = errors.New("not enough cash")
	ErrOrderTooLarge      = errors.New("order size overflows")
	ErrInsufficientShares = errors.New("not enough shares to sell")
	ErrNoEvents           = errors.New("event catalog is empty")
	ErrInvalidPlayerName  = errors.New("player name must not be empty")
)

// Sectors lists the five fixed sectors in board order. The display names
// are the ones event deck documents use as SECTOR targets.
var Sectors = []Sector{
	{ID: SectorTechMedia, Name: "Technology & Media"},
	{ID: SectorEnergy, Name: "Energy"},
	{ID: SectorTransport, Name: "Transport & Logistics"},
	{ID: SectorHealth, Name: "Health & Wellness"},
	{ID: SectorFood, Name: "Food & Farming"},
}

// SectorName returns the display name for id, or the raw id if unknown.
func SectorName(id SectorID) string {
	for _, s := range Sectors {
		if s.ID == id {
			return s.Name
		}
	}
	return string(id)
}

// DefaultStocks returns a fresh copy of the starting roster.
func DefaultStocks() []Stock {
	return []Stock{
		{Ticker: "BBDY", Name: "ByteBuddies", Sector: SectorTechMedia, Price: 120, Volatility: VolHigh},
		{Ticker: "SSRT", Name: "StreamSprout", Sector: SectorTechMedia, Price: 90, Volatility: VolHigh},
		{Ticker: "CKCR", Name: "CloudKit Crew", Sector: SectorTechMedia, Price: 110, Volatility: VolHigh},

		{Ticker: "SSPR", Name: "SolarSprout Energy", Sector: SectorEnergy, Price: 80, Volatility: VolHigh},
		{Ticker: "WWPW", Name: "WindWay Power", Sector: SectorEnergy, Price: 70, Volatility: VolMed},

		{Ticker: "RBRT", Name: "RoboRoute", Sector: SectorTransport, Price: 100, Volatility: VolMed},
		{Ticker: "TTLG", Name: "TrailTrack Logistics", Sector: SectorTransport, Price: 60, Volatility: VolMed},

		{Ticker: "MDMT", Name: "MediMints", Sector: SectorHealth, Price: 50, Volatility: VolMed},
		{Ticker: "PLPT", Name: "PulsePatch", Sector: SectorHealth, Price: 130, Volatility: VolHigh},

		{Ticker: "AQHV", Name: "AquaHarvest", Sector: SectorFood, Price: 60, Volatility: VolMed},
		{Ticker: "GGCP", Name: "GrainGuard Co-op", Sector: SectorFood, Price: 40, Volatility: VolLow},
		{Ticker: "SSDY", Name: "SunnySide Dairy", Sector: SectorFood, Price: 30, Volatility: VolLow},
	}
}

// NoiseRange returns the symmetric noise bound for a volatility class.
func NoiseRange(v Volatility) float64 {
	switch v {
	case VolLow:
		return 0.005
	case VolHigh:
		return 0.02
	default:
		return 0.01
	}
}

func clamp(n, min, max float64) float64 {
	return math.Max(min, math.Min(max, n))
}
