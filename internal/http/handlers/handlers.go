package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/gw2-watcher/internal/app/watcher"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
	"github.com/preston-bernstein/gw2-watcher/internal/poller"
)

// Watcher is the part of the watcher facade the HTTP surface needs.
type Watcher interface {
	Status() poller.Status
	Settings() watcher.Settings
	Update(func(*watcher.Settings)) error
	Enable(bool) error
	Events() map[string]events.Event
	Matchups() map[string]matchups.Matchup
	Details() (matchups.Details, bool)
	Worlds(ctx context.Context) ([]worlds.World, error)
	Maps(ctx context.Context) ([]worlds.Map, error)
	FindWorld(ctx context.Context, nameOrID string) (worlds.World, error)
}

// EventsResponse lists the latest event states of the watched world.
type EventsResponse struct {
	World  string         `json:"world"`
	Count  int            `json:"count"`
	Events []events.Event `json:"events"`
}

// MatchupsResponse lists the running matchups.
type MatchupsResponse struct {
	Count    int                `json:"count"`
	Matchups []matchups.Matchup `json:"matchups"`
}

// Handler serves the read-only routes.
type Handler struct {
	watcher Watcher
	logger  *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(w Watcher, logger *slog.Logger) *Handler {
	return &Handler{watcher: w, logger: logger}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic: the poller has committed a cycle and is not failing repeatedly.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.watcher.Status()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Status returns the watcher settings and poller health.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.watcher.Status(), h.logger)
}

// Worlds lists every world known upstream.
func (h *Handler) Worlds(w http.ResponseWriter, r *http.Request) {
	list, err := h.watcher.Worlds(r.Context())
	if err != nil {
		h.upstreamError(w, r, "list worlds", err)
		return
	}
	writeJSON(w, http.StatusOK, list, h.logger)
}

// World resolves a single world by id or name.
func (h *Handler) World(w http.ResponseWriter, r *http.Request) {
	world, err := h.watcher.FindWorld(r.Context(), chi.URLParam(r, "world"))
	if errors.Is(err, watcher.ErrWorldNotFound) {
		writeError(w, r, http.StatusNotFound, "world not found", h.logger)
		return
	}
	if err != nil {
		h.upstreamError(w, r, "find world", err)
		return
	}
	writeJSON(w, http.StatusOK, world, h.logger)
}

// Maps lists every map known upstream.
func (h *Handler) Maps(w http.ResponseWriter, r *http.Request) {
	list, err := h.watcher.Maps(r.Context())
	if err != nil {
		h.upstreamError(w, r, "list maps", err)
		return
	}
	writeJSON(w, http.StatusOK, list, h.logger)
}

// Events returns the latest event snapshot sorted by id.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	snap := h.watcher.Events()
	if snap == nil {
		writeError(w, r, http.StatusNotFound, "no event snapshot yet", h.logger)
		return
	}
	list := make([]events.Event, 0, len(snap))
	for _, ev := range snap {
		list = append(list, ev)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeJSON(w, http.StatusOK, EventsResponse{
		World:  h.watcher.Settings().World,
		Count:  len(list),
		Events: list,
	}, h.logger)
}

// Matchups returns the latest roster sorted by id.
func (h *Handler) Matchups(w http.ResponseWriter, r *http.Request) {
	snap := h.watcher.Matchups()
	if snap == nil {
		writeError(w, r, http.StatusNotFound, "no matchup snapshot yet", h.logger)
		return
	}
	list := make([]matchups.Matchup, 0, len(snap))
	for _, m := range snap {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeJSON(w, http.StatusOK, MatchupsResponse{Count: len(list), Matchups: list}, h.logger)
}

// Details returns the scoreboard of the watched matchup.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	d, ok := h.watcher.Details()
	if !ok {
		writeError(w, r, http.StatusNotFound, "no matchup details yet", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, d, h.logger)
}

func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := loggerFromContext(r, h.logger)
	if logger != nil {
		logger.Warn("upstream lookup failed", "operation", op, "err", err)
	}
	writeError(w, r, http.StatusBadGateway, "upstream unavailable", h.logger)
}
