package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/pavelanni/spacequiz/internal/game"
	"github.com/pavelanni/spacequiz/internal/handler/views"
	"github.com/pavelanni/spacequiz/internal/model"
	"github.com/pavelanni/spacequiz/internal/store"
)

// Config holds the serve settings shared by all connections.
type Config struct {
	// ContentRoot is the directory holding the browser assets.
	ContentRoot string
	// Game is the template for every session; Difficulty is the default
	// until a player picks another.
	Game game.Config
	// SampleSize is the default number of questions per session, 0 for all.
	SampleSize int
	// AllowedOrigins restricts the play socket. Empty permits all origins.
	AllowedOrigins []string
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	config   Config
	upgrader websocket.Upgrader
	static   http.Handler
}

// New creates a new Handler.
func New(s *store.Store, cfg Config) (*Handler, error) {
	info, err := os.Stat(cfg.ContentRoot)
	if err != nil {
		return nil, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", cfg.ContentRoot)
	}
	return &Handler{
		store:    s,
		config:   cfg,
		upgrader: buildUpgrader(cfg.AllowedOrigins),
		static:   StaticHandler(cfg.ContentRoot),
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/banks", h.handleListBanks)
	r.Get("/banks", h.handleBanksPage)
	r.Get("/play", h.handlePlay)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Post("/api/banks", h.handleUploadBank)
		r.Delete("/api/banks/{bankID}", h.handleDeleteBank)
	})

	r.Handle("/*", h.static)
}

func (h *Handler) handleListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := h.store.ListBanks(r.Context())
	if err != nil {
		slog.Error("failed to list banks", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, banks)
}

func (h *Handler) handleBanksPage(w http.ResponseWriter, r *http.Request) {
	banks, err := h.store.ListBanks(r.Context())
	if err != nil {
		slog.Error("failed to list banks", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	difficulty := h.config.Game.Difficulty
	if d := r.URL.Query().Get("difficulty"); d != "" {
		difficulty = model.ParseDifficulty(d)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.BanksPage(banks, difficulty, h.config.SampleSize).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
