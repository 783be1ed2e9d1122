package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/preston-bernstein/gw2-watcher/internal/http/handlers"
	"github.com/preston-bernstein/gw2-watcher/internal/http/middleware"
	"github.com/preston-bernstein/gw2-watcher/internal/metrics"
)

// Routes groups what NewRouter mounts. Stream may be nil.
type Routes struct {
	Read    *handlers.Handler
	Control *handlers.ControlHandler
	Stream  nethttp.Handler
}

// NewRouter registers every HTTP route behind the logging middleware.
func NewRouter(routes Routes, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger, recorder))
	r.Use(chimw.Recoverer)
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	h := routes.Read
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Get("/worlds", h.Worlds)
		r.Get("/worlds/{world}", h.World)
		r.Get("/maps", h.Maps)
		r.Get("/events", h.Events)
		r.Get("/matchups", h.Matchups)
		r.Get("/details", h.Details)
		if routes.Stream != nil {
			r.Method(nethttp.MethodGet, "/stream", routes.Stream)
		}

		if c := routes.Control; c != nil {
			r.Group(func(r chi.Router) {
				r.Use(c.Authorize)
				r.Put("/config", c.UpdateConfig)
				r.Post("/enable", c.Enable)
				r.Post("/disable", c.Disable)
			})
		}
	})
	return r
}
