package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockcamp/internal/game"
	"stockcamp/internal/store"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live facilitator board (open/close/resolve from the keyboard)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			m := newWatchModel(a)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

var (
	upColor      = lipgloss.Color("#10B981")
	downColor    = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	titleColor   = lipgloss.Color("#7C3AED")
	warningColor = lipgloss.Color("#F59E0B")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	upStyle     = lipgloss.NewStyle().Foreground(upColor)
	downStyle   = lipgloss.NewStyle().Foreground(downColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	openStyle   = lipgloss.NewStyle().Bold(true).Foreground(upColor)
	closedStyle = lipgloss.NewStyle().Bold(true).Foreground(downColor)
	errStyle    = lipgloss.NewStyle().Foreground(warningColor)
)

type watchKeyMap struct {
	Open    key.Binding
	Close   key.Binding
	Resolve key.Binding
	Quit    key.Binding
}

var watchKeys = watchKeyMap{
	Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open trading")),
	Close:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "close trading")),
	Resolve: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resolve round")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type watchModel struct {
	app    *app
	state  game.GameState
	loaded bool
	errMsg string
	width  int
	height int
}

type stateMsg struct {
	state game.GameState
	err   error
}

type tickMsg time.Time

func newWatchModel(a *app) watchModel {
	return watchModel{app: a}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.reload(), watchTick())
}

func watchTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) reload() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st, err := m.app.st.LoadGame(ctx)
		return stateMsg{state: st, err: err}
	}
}

// mutate applies fn to the saved game and reports the result as a stateMsg.
func (m watchModel) mutate(fn func(game.GameState) (game.GameState, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st, err := m.app.st.LoadGame(ctx)
		if err != nil {
			return stateMsg{err: err}
		}
		next, err := fn(st)
		if err != nil {
			return stateMsg{state: st, err: err}
		}
		if err := m.app.st.SaveGame(ctx, next); err != nil {
			return stateMsg{state: st, err: err}
		}
		return stateMsg{state: next}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.reload(), watchTick())
	case stateMsg:
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrNoSavedGame) {
				m.errMsg = "no active game; run `stockcamp new`"
			} else {
				m.errMsg = msg.err.Error()
			}
			m.loaded = m.loaded || msg.state.Version != 0
			if msg.state.Version != 0 {
				m.state = msg.state
			}
			return m, nil
		}
		m.state = msg.state
		m.loaded = true
		m.errMsg = ""
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, watchKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, watchKeys.Open):
			return m, m.mutate(func(st game.GameState) (game.GameState, error) {
				return m.app.eng.SetTradingOpen(st, true), nil
			})
		case key.Matches(msg, watchKeys.Close):
			return m, m.mutate(func(st game.GameState) (game.GameState, error) {
				return m.app.eng.SetTradingOpen(st, false), nil
			})
		case key.Matches(msg, watchKeys.Resolve):
			return m, m.mutate(func(st game.GameState) (game.GameState, error) {
				next, _, err := m.app.eng.ResolveNextRound(st)
				return next, err
			})
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	if !m.loaded {
		if m.errMsg != "" {
			return errStyle.Render(m.errMsg) + "\n\npress q to quit"
		}
		return mutedStyle.Render("loading saved game...")
	}

	header := m.headerView()
	board := panelStyle.Render(m.boardView())
	side := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.newsView()),
		panelStyle.Render(m.leaderboardView()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, board, side)
	footer := mutedStyle.Render("o open  c close  r resolve  q quit")
	if m.errMsg != "" {
		footer = errStyle.Render(m.errMsg) + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m watchModel) headerView() string {
	gate := closedStyle.Render("TRADING CLOSED")
	if m.state.TradingOpen {
		gate = openStyle.Render("TRADING OPEN")
	}
	return titleStyle.Render(fmt.Sprintf(" STOCKCAMP · ROUND %d ", m.state.Round)) + "  " + gate
}

func (m watchModel) boardView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Market") + "\n")
	for _, sec := range game.Sectors {
		first := true
		for _, s := range m.state.Stocks {
			if s.Sector != sec.ID {
				continue
			}
			if first {
				b.WriteString(mutedStyle.Render(sec.Name) + "\n")
				first = false
			}
			b.WriteString(fmt.Sprintf(" %-6s %6d %s\n", s.Ticker, s.Price, m.trend(s.Ticker)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m watchModel) trend(ticker string) string {
	hist := m.state.PriceHistory[ticker]
	if len(hist) < 2 {
		return mutedStyle.Render("·")
	}
	delta := hist[len(hist)-1] - hist[len(hist)-2]
	switch {
	case delta > 0:
		return upStyle.Render(fmt.Sprintf("▲%d", delta))
	case delta < 0:
		return downStyle.Render(fmt.Sprintf("▼%d", -delta))
	default:
		return mutedStyle.Render("=")
	}
}

func (m watchModel) newsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Headlines") + "\n")
	if len(m.state.UpcomingNews) == 0 {
		b.WriteString(mutedStyle.Render("none scheduled"))
		return b.String()
	}
	for _, n := range m.state.UpcomingNews {
		title := n.EventID
		if ev, ok := m.app.eng.EventByID(n.EventID); ok {
			title = ev.Title
		}
		title = truncate(title, 40)
		b.WriteString(fmt.Sprintf(" %s: %s\n", n.SectorName, title))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m watchModel) leaderboardView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Leaderboard") + "\n")
	rows := game.Leaderboard(m.state)
	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render("no players yet"))
		return b.String()
	}
	for i, row := range rows {
		if i >= 10 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" +%d more", len(rows)-i)))
			break
		}
		b.WriteString(fmt.Sprintf(" %2d. %-16s %6d\n", row.Rank, row.Name, row.PortfolioValue))
	}
	return strings.TrimRight(b.String(), "\n")
}
