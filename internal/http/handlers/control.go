package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/app/watcher"
	"github.com/preston-bernstein/gw2-watcher/internal/http/requestutil"
	"github.com/preston-bernstein/gw2-watcher/internal/logging"
	"github.com/preston-bernstein/gw2-watcher/internal/poller"
)

const maxConfigBody = 64 << 10

// ConfigRequest is the body of PUT /v1/config. Omitted fields keep their value.
// World accepts an id or a world name.
type ConfigRequest struct {
	World        *string  `json:"world"`
	Filter       []string `json:"filter"`
	PollInterval *string  `json:"poll_interval"`
}

// ControlHandler exposes the routes that change the watcher. When token is
// set every request must carry it as a bearer token.
type ControlHandler struct {
	watcher Watcher
	token   string
	logger  *slog.Logger
}

// NewControlHandler constructs a ControlHandler.
func NewControlHandler(w Watcher, token string, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{watcher: w, token: token, logger: logger}
}

// Authorize is middleware rejecting requests without the configured bearer token.
func (h *ControlHandler) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" && !bearerMatches(r.Header.Get("Authorization"), h.token) {
			logging.Warn(h.logger, "control unauthorized",
				slog.String(logging.FieldPath, r.URL.Path),
				slog.String("client_ip", requestutil.ClientIP(r)),
			)
			writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerMatches(header, token string) bool {
	got, ok := strings.CutPrefix(header, "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

// UpdateConfig applies a partial settings change, restarting the poller once when it runs.
// Clearing the world of a running watcher is rejected; use Disable to stop it.
func (h *ControlHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)

	var req ConfigRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConfigBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", logger)
		return
	}

	var edits []func(*watcher.Settings)
	if req.World != nil {
		id := strings.TrimSpace(*req.World)
		if id != "" {
			world, err := h.watcher.FindWorld(r.Context(), id)
			switch {
			case errors.Is(err, watcher.ErrWorldNotFound):
				writeError(w, r, http.StatusBadRequest, "unknown world "+id, logger)
				return
			case err != nil:
				logging.Warn(logger, "world lookup failed", logging.FieldWorld, id, "err", err)
				writeError(w, r, http.StatusBadGateway, "upstream unavailable", logger)
				return
			}
			id = world.ID
		}
		edits = append(edits, func(s *watcher.Settings) { s.World = id })
	}
	if req.Filter != nil {
		filter, err := poller.ParseCategories(req.Filter)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error(), logger)
			return
		}
		edits = append(edits, func(s *watcher.Settings) { s.Filter = filter })
	}
	if req.PollInterval != nil {
		d, err := time.ParseDuration(*req.PollInterval)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid poll_interval", logger)
			return
		}
		edits = append(edits, func(s *watcher.Settings) { s.Interval = d })
	}

	var applied watcher.Settings
	err := h.watcher.Update(func(s *watcher.Settings) {
		for _, edit := range edits {
			edit(s)
		}
		applied = *s
	})
	if err != nil {
		h.configError(w, r, err)
		return
	}
	logging.Info(logger, "watcher reconfigured",
		logging.FieldWorld, applied.World,
		logging.FieldFilter, applied.Filter.String(),
		logging.FieldInterval, applied.Interval.String(),
	)
	writeJSON(w, http.StatusOK, h.watcher.Status(), logger)
}

// Enable starts the poller.
func (h *ControlHandler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

// Disable stops the poller and clears its snapshots.
func (h *ControlHandler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *ControlHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	if err := h.watcher.Enable(enabled); err != nil {
		h.configError(w, r, err)
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "watcher toggled", "enabled", enabled)
	writeJSON(w, http.StatusOK, h.watcher.Status(), h.logger)
}

func (h *ControlHandler) configError(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *poller.ConfigError
	if errors.As(err, &cfgErr) {
		writeError(w, r, http.StatusBadRequest, cfgErr.Error(), h.logger)
		return
	}
	logging.Error(loggerFromContext(r, h.logger), "watcher control failed", err)
	writeError(w, r, http.StatusInternalServerError, "watcher control failed", h.logger)
}
