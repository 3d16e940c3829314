package main

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"stockcamp/internal/game"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func printStatus(st game.GameState) {
	accent.Printf("\n== ROUND %d ==\n", st.Round)
	gate := danger.Sprint("CLOSED")
	if st.TradingOpen {
		gate = success.Sprint("OPEN")
	}
	fmt.Printf("Trading: %s\n", gate)
	fmt.Printf("Players: %d  Stocks: %d  Trades: %d\n", len(st.Players), len(st.Stocks), len(st.TradeHistory))
	if len(st.UpcomingNews) > 0 {
		fmt.Printf("Upcoming headlines: %d sectors\n", len(st.UpcomingNews))
	}
}

func printBoard(st game.GameState) {
	accent.Printf("\n== MARKET BOARD (Round %d) ==\n", st.Round)
	for _, sec := range game.Sectors {
		header := false
		for _, s := range st.Stocks {
			if s.Sector != sec.ID {
				continue
			}
			if !header {
				neutral.Printf("\n%s\n", sec.Name)
				header = true
			}
			fmt.Printf("  %-6s %-22s %6d  %s  %s\n",
				s.Ticker, truncate(s.Name, 22), s.Price,
				volatilityTag(s.Volatility), priceTrend(st, s.Ticker))
		}
	}
	fmt.Println()
}

func printLeaderboard(st game.GameState) {
	rows := game.Leaderboard(st)
	accent.Println("\n== LEADERBOARD ==")
	if len(rows) == 0 {
		printInfo("No players yet.")
		return
	}
	for _, row := range rows {
		fmt.Printf("%2d. %-20s value %6d  (cash %d)\n", row.Rank, truncate(row.Name, 20), row.PortfolioValue, row.Cash)
	}
}

func printNews(eng *game.Engine, st game.GameState) {
	accent.Println("\n== NEWS ==")
	if len(st.CurrentNews) > 0 {
		neutral.Println("This round:")
		for _, n := range st.CurrentNews {
			printHeadline(eng, n, true)
		}
	}
	if len(st.UpcomingNews) > 0 {
		neutral.Println("Next round:")
		for _, n := range st.UpcomingNews {
			printHeadline(eng, n, false)
		}
	}
	if len(st.CurrentNews) == 0 && len(st.UpcomingNews) == 0 {
		printInfo("No headlines scheduled.")
	}
}

func printHeadline(eng *game.Engine, n game.NewsEntry, applied bool) {
	ev, ok := eng.EventByID(n.EventID)
	if !ok {
		fmt.Printf("  [%s] (unknown event %s)\n", n.SectorName, n.EventID)
		return
	}
	impact := colorizePercent(ev.ImpactPct)
	if applied {
		fmt.Printf("  [%s] %s  %s\n", n.SectorName, ev.Title, impact)
		return
	}
	// Upcoming headlines hide the number so players reason from the text.
	fmt.Printf("  [%s] %s\n", n.SectorName, ev.Title)
}

func printEvents(events []game.MarketEvent) {
	accent.Printf("\n== EVENT CATALOG (%d cards) ==\n", len(events))
	for _, ev := range events {
		impact := colorizePercent(ev.ImpactPct)
		if ev.ImpactPctAlt != nil {
			impact = fmt.Sprintf("%s or %s", impact, colorizePercent(*ev.ImpactPctAlt))
		}
		fmt.Printf("  %-24s %-7s %-12s %s  %s\n", ev.ID, ev.Scope, ev.Target, impact, truncate(ev.Title, 44))
	}
}

func printHistory(st game.GameState, limit int) {
	accent.Println("\n== TRADE HISTORY ==")
	trades := st.TradeHistory
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	if len(trades) == 0 {
		printInfo("No trades yet.")
		return
	}
	for _, t := range trades {
		side := success.Sprint("BUY ")
		if t.Side == game.SideSell {
			side = danger.Sprint("SELL")
		}
		fmt.Printf("  R%-3d %s %-20s %4d x %-6s @ %d\n", t.Round, side, truncate(t.PlayerName, 20), t.Shares, t.Ticker, t.Price)
	}
}

func printResolution(before, after game.GameState, applied *game.MarketEvent) {
	accent.Printf("\n== ROUND %d RESOLVED ==\n", before.Round)
	if applied != nil {
		fmt.Printf("Headline: %s (%s)\n", applied.Title, colorizePercent(applied.ImpactPct))
		if applied.Explanation != "" {
			printInfo("  " + applied.Explanation)
		}
	}
	old := make(map[string]int64, len(before.Stocks))
	for _, s := range before.Stocks {
		old[s.Ticker] = s.Price
	}
	for _, s := range after.Stocks {
		prev := old[s.Ticker]
		delta := s.Price - prev
		fmt.Printf("  %-6s %6d -> %6d  %s\n", s.Ticker, prev, s.Price, colorizeDelta(delta, prev))
	}
	fmt.Printf("Now in round %d. Trading is closed.\n", after.Round)
}

// runSimulation plays rounds against a throwaway game so the GM can sanity
// check a new deck before camp.
func runSimulation(a *app, rounds int, seed int64) error {
	if rounds <= 0 {
		rounds = 10
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng := game.NewEngine(a.eng.Events(), a.log, rand.New(rand.NewSource(seed)))
	st := eng.NewGame(a.cfg.StartingCash)
	start := make(map[string]int64, len(st.Stocks))
	for _, s := range st.Stocks {
		start[s.Ticker] = s.Price
	}

	accent.Printf("\n== SIMULATION (%d rounds, seed %d) ==\n", rounds, seed)
	for i := 0; i < rounds; i++ {
		next, applied, err := eng.ResolveNextRound(st)
		if err != nil {
			return err
		}
		title := "(no event)"
		if applied != nil {
			title = applied.Title
		}
		fmt.Printf("  round %2d: %s\n", st.Round, truncate(title, 60))
		st = next
	}

	neutral.Println("\nPrice drift:")
	tickers := make([]string, 0, len(st.Stocks))
	for _, s := range st.Stocks {
		tickers = append(tickers, s.Ticker)
	}
	sort.Strings(tickers)
	for _, tk := range tickers {
		s, _ := game.StockByTicker(st, tk)
		fmt.Printf("  %-6s %6d -> %6d  %s\n", tk, start[tk], s.Price, colorizeDelta(s.Price-start[tk], start[tk]))
	}
	return nil
}

func priceTrend(st game.GameState, ticker string) string {
	hist := st.PriceHistory[ticker]
	if len(hist) < 2 {
		return neutral.Sprint("·")
	}
	delta := hist[len(hist)-1] - hist[len(hist)-2]
	return colorizeDelta(delta, hist[len(hist)-2])
}

func volatilityTag(v game.Volatility) string {
	switch v {
	case game.VolHigh:
		return danger.Sprint("HIGH")
	case game.VolLow:
		return neutral.Sprint("LOW ")
	default:
		return warn.Sprint("MED ")
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v*100)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizeDelta(delta, base int64) string {
	if base <= 0 {
		return neutral.Sprintf("%+d", delta)
	}
	pct := float64(delta) / float64(base) * 100
	text := fmt.Sprintf("%+d (%+.1f%%)", delta, pct)
	switch {
	case delta > 0:
		return success.Sprint(text)
	case delta < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
