package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/gw2-watcher/internal/logging"
)

const writeTimeout = 10 * time.Second

// Hub streams bus envelopes to websocket clients. Each client gets its own
// bus subscription.
type Hub struct {
	bus      *Bus
	logger   *slog.Logger
	upgrader websocket.Upgrader
	clients  atomic.Int64
}

func NewHub(bus *Bus, logger *slog.Logger) *Hub {
	return &Hub{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	envelopes, err := h.bus.Subscribe(ctx)
	if err != nil {
		http.Error(w, "notifications unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(h.logger, "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	h.clients.Add(1)
	defer h.clients.Add(-1)
	logging.Debug(h.logger, "stream client connected", "remote", r.RemoteAddr)

	go func() {
		defer conn.Close()
		defer cancel()
		for {
			select {
			case env, ok := <-envelopes:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
						time.Now().Add(writeTimeout))
					return
				}
				if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
					return
				}
				if err := conn.WriteJSON(env); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
