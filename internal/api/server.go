// Package api serves the read-only classroom views: the market board,
// leaderboard, and news feed a facilitator projects for players. It calls
// no mutators; all decisions stay in the engine behind the CLI.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stockcamp/internal/game"
	"stockcamp/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	log   *slog.Logger
	store store.Store
	eng   *game.Engine
	mux   *chi.Mux
}

func New(logger *slog.Logger, st store.Store, eng *game.Engine) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:   logger,
		store: st,
		eng:   eng,
		mux:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/board", s.handleBoard)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/news", s.handleNews)
	})
}

func (s *Server) loadState(w http.ResponseWriter, r *http.Request) (game.GameState, bool) {
	st, err := s.store.LoadGame(r.Context())
	if errors.Is(err, store.ErrNoSavedGame) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no active game"})
		return game.GameState{}, false
	}
	if err != nil {
		s.log.Error("load game failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "load failed"})
		return game.GameState{}, false
	}
	return st, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type sectorBoard struct {
	Sector string       `json:"sector"`
	Stocks []stockView  `json:"stocks"`
	News   *headlineRef `json:"news,omitempty"`
}

type stockView struct {
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	Volatility string  `json:"volatility"`
	History    []int64 `json:"history"`
}

type headlineRef struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}

	upcoming := make(map[game.SectorID]string, len(st.UpcomingNews))
	for _, n := range st.UpcomingNews {
		upcoming[n.SectorID] = n.EventID
	}

	board := make([]sectorBoard, 0, len(game.Sectors))
	for _, sector := range game.Sectors {
		sb := sectorBoard{Sector: sector.Name}
		for _, stock := range st.Stocks {
			if stock.Sector != sector.ID {
				continue
			}
			sb.Stocks = append(sb.Stocks, stockView{
				Ticker:     stock.Ticker,
				Name:       stock.Name,
				Price:      stock.Price,
				Volatility: string(stock.Volatility),
				History:    st.PriceHistory[stock.Ticker],
			})
		}
		if id := upcoming[sector.ID]; id != "" {
			if ev, found := s.eng.EventByID(id); found {
				sb.News = &headlineRef{EventID: ev.ID, Title: ev.Title}
			}
		}
		board = append(board, sb)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"round":        st.Round,
		"trading_open": st.TradingOpen,
		"board":        board,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"round": st.Round,
		"rows":  game.Leaderboard(st),
	})
}

type newsItem struct {
	Sector      string  `json:"sector"`
	Title       string  `json:"title"`
	ImpactPct   float64 `json:"impact_pct"`
	Explanation string  `json:"explanation"`
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"round":    st.Round,
		"current":  s.newsItems(st.CurrentNews),
		"upcoming": s.newsItems(st.UpcomingNews),
	})
}

func (s *Server) newsItems(entries []game.NewsEntry) []newsItem {
	items := make([]newsItem, 0, len(entries))
	for _, n := range entries {
		ev, found := s.eng.EventByID(n.EventID)
		if !found {
			continue
		}
		items = append(items, newsItem{
			Sector:      n.SectorName,
			Title:       ev.Title,
			ImpactPct:   ev.ImpactPct,
			Explanation: ev.Explanation,
		})
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
