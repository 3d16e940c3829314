package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"stockcamp/internal/api"
	"stockcamp/internal/config"
	"stockcamp/internal/deck"
	"stockcamp/internal/game"
	"stockcamp/internal/store"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "stockcamp",
		Short:        "GM console for the camp stock-market simulation",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNewCmd(),
		newStatusCmd(),
		newAddPlayerCmd(),
		newRemovePlayerCmd(),
		newOpenCmd(),
		newCloseCmd(),
		newOrderCmd(),
		newResolveCmd(),
		newBoardCmd(),
		newPlayersCmd(),
		newNewsCmd(),
		newEventsCmd(),
		newHistoryCmd(),
		newSimulateCmd(),
		newClearCmd(),
		newServeCmd(),
		newWatchCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app wires the engine, store, and logger for one command invocation.
type app struct {
	cfg config.Config
	log *slog.Logger
	eng *game.Engine
	st  store.Store
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.LoadFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	catalog, err := deck.LoadFile(cfg.ContentPackPath)
	if err != nil {
		return nil, err
	}
	eng := game.NewEngine(catalog, logger, nil)

	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.DataPath, eng, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, eng: eng, st: st}, nil
}

func (a *app) Close() {
	if err := a.st.Close(); err != nil {
		a.log.Warn("store close failed", "err", err)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// withState loads the active game, applies fn, and commits the result.
func (a *app) withState(ctx context.Context, fn func(game.GameState) (game.GameState, error)) error {
	st, err := a.st.LoadGame(ctx)
	if errors.Is(err, store.ErrNoSavedGame) {
		return fmt.Errorf("no active game; run `stockcamp new` first")
	}
	if err != nil {
		return err
	}
	next, err := fn(st)
	if err != nil {
		return err
	}
	return a.st.SaveGame(ctx, next)
}

func (a *app) readState(ctx context.Context) (game.GameState, error) {
	st, err := a.st.LoadGame(ctx)
	if errors.Is(err, store.ErrNoSavedGame) {
		return st, fmt.Errorf("no active game; run `stockcamp new` first")
	}
	return st, err
}

func newNewCmd() *cobra.Command {
	var cash int64
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new game (replaces any saved game)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if cash <= 0 {
				cash = a.cfg.StartingCash
			}
			st := a.eng.NewGame(cash)
			if err := a.st.SaveGame(cmd.Context(), st); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("New game started: %d stocks, %d coins per player.", len(st.Stocks), cash))
			return nil
		},
	}
	cmd.Flags().Int64Var(&cash, "cash", 0, "starting cash per player")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current round and trading gate",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.readState(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(st)
			return nil
		},
	}
}

func newAddPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-player <name>",
		Short: "Register a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.withState(cmd.Context(), func(st game.GameState) (game.GameState, error) {
				next, err := a.eng.AddPlayer(st, args[0])
				if err != nil {
					return st, err
				}
				printSuccess(fmt.Sprintf("%s joined with %d coins.", strings.TrimSpace(args[0]), st.StartingCash))
				return next, nil
			})
		},
	}
}

func newRemovePlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-player <name>",
		Short: "Remove a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.withState(cmd.Context(), func(st game.GameState) (game.GameState, error) {
				p, ok := game.FindPlayerByName(st, args[0])
				if !ok {
					return st, game.ErrUnknownPlayer
				}
				printWarn(fmt.Sprintf("%s removed.", p.Name))
				return a.eng.RemovePlayer(st, p.ID), nil
			})
		},
	}
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open trading for this round",
		RunE:  setTradingRunE(true, "Trading is OPEN."),
	}
}

func newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close trading",
		RunE:  setTradingRunE(false, "Trading is CLOSED."),
	}
}

func setTradingRunE(open bool, msg string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.withState(cmd.Context(), func(st game.GameState) (game.GameState, error) {
			printSuccess(msg)
			return a.eng.SetTradingOpen(st, open), nil
		})
	}
}

func newOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <player> <buy|sell> <ticker> <shares>",
		Short: "Execute a player's order at the quoted price",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var side game.OrderSide
			switch strings.ToLower(args[1]) {
			case "buy":
				side = game.SideBuy
			case "sell":
				side = game.SideSell
			default:
				return fmt.Errorf("side must be buy or sell")
			}
			shares, err := strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return game.ErrInvalidShares
			}
			ticker := strings.ToUpper(args[2])

			return a.withState(cmd.Context(), func(st game.GameState) (game.GameState, error) {
				p, ok := game.FindPlayerByName(st, args[0])
				if !ok {
					return st, game.ErrUnknownPlayer
				}
				next, err := a.eng.PlaceOrder(st, p.ID, ticker, side, shares)
				if err != nil {
					return st, err
				}
				np, _ := game.GetPlayer(next, p.ID)
				printSuccess(fmt.Sprintf("%s %s %d x %s. Cash: %d", p.Name, side, shares, ticker, np.Cash))
				return next, nil
			})
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the round: apply news, imbalance, and noise",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.withState(cmd.Context(), func(st game.GameState) (game.GameState, error) {
				next, applied, err := a.eng.ResolveNextRound(st)
				if err != nil {
					return st, err
				}
				printResolution(st, next, applied)
				return next, nil
			})
		},
	}
}

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Print the market board by sector",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.readState(cmd.Context())
			if err != nil {
				return err
			}
			printBoard(st)
			return nil
		},
	}
}

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List players ranked by portfolio value",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.readState(cmd.Context())
			if err != nil {
				return err
			}
			printLeaderboard(st)
			return nil
		},
	}
}

func newNewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Show the applied and upcoming headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.readState(cmd.Context())
			if err != nil {
				return err
			}
			printNews(a.eng, st)
			return nil
		},
	}
}

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List the parsed event catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			printEvents(a.eng.Events())
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.readState(cmd.Context())
			if err != nil {
				return err
			}
			printHistory(st, limit)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max trades to show")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var rounds int
	var seed int64
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Preview the deck: resolve N rounds on a throwaway game",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return runSimulation(a, rounds, seed)
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 10, "rounds to simulate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved game",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.st.ClearSavedGame(cmd.Context()); err != nil {
				return err
			}
			printWarn("Saved game deleted.")
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only classroom views over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			srv := api.New(a.log, a.st, a.eng)
			a.log.Info("classroom view server listening", "addr", a.cfg.Addr)
			return http.ListenAndServe(a.cfg.Addr, srv.Handler())
		},
	}
}
