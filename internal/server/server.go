// Package server exposes the board over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ETFBoard/internal/board"
	"ETFBoard/internal/model"
)

// Server serves the board's view, summary and controls.
type Server struct {
	Addr   string
	Board  *board.Board
	Logger *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, b *board.Board, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Board: b, Logger: logger}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/etfs", s.handleETFs)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("PUT /api/filters", s.handleSetFilters)
	mux.HandleFunc("PUT /api/sort", s.handleSetSort)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.Logger.Info("http server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type viewResponse struct {
	Count   int                    `json:"count"`
	Filters model.FilterState      `json:"filters"`
	Sort    model.SortState        `json:"sort"`
	Records []model.SecurityRecord `json:"records"`
}

// handleETFs returns the view. Query parameters override the board's
// selections for this request only.
func (s *Server) handleETFs(w http.ResponseWriter, r *http.Request) {
	f := s.Board.Filters()
	srt := s.Board.Sort()
	q := r.URL.Query()

	if v := q.Get("market"); v != "" {
		f.Market = model.Market(v)
		if !f.Market.Valid() {
			writeError(w, http.StatusBadRequest, "unknown market "+strconv.Quote(v))
			return
		}
	}
	if q.Has("q") {
		f.SearchTerm = q.Get("q")
	}
	if v := q.Get("hideLow"); v != "" {
		hide, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "hideLow must be a boolean")
			return
		}
		f.HideLowValue = hide
	}
	if v := q.Get("sort"); v != "" {
		srt.Field = model.SortField(v)
	}
	if v := q.Get("dir"); v != "" {
		srt.Direction = model.Direction(v)
	}

	records, err := s.Board.ViewWith(f, srt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{Count: len(records), Filters: f, Sort: srt, Records: records})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Board.Summary())
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Board.State())
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var f model.FilterState
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter body")
		return
	}
	if err := s.Board.SetFilters(f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Board.Filters())
}

func (s *Server) handleSetSort(w http.ResponseWriter, r *http.Request) {
	var srt model.SortState
	if err := json.NewDecoder(r.Body).Decode(&srt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sort body")
		return
	}
	if err := s.Board.SetSort(srt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Board.Sort())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh := s.Board.Refresh
	if force, _ := strconv.ParseBool(r.URL.Query().Get("force")); force {
		refresh = s.Board.ForceRefresh
	}

	err := refresh(r.Context())
	switch {
	case errors.Is(err, board.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.Logger.Warn("refresh request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, board.FetchFailedMessage)
	default:
		writeJSON(w, http.StatusOK, s.Board.State())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
