package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/stroopgame/internal/api/middleware"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/web/sse"
	"github.com/mcoot/stroopgame/internal/web/ws"
)

// EventsHandler streams room events over SSE or websocket
type EventsHandler struct {
	lobby       lobby.ControllerInterface
	hubManager  *sse.HubManager
	broadcaster *sse.Broadcaster
	wsOptions   ws.Options
	logger      *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(
	lobby lobby.ControllerInterface,
	hubManager *sse.HubManager,
	broadcaster *sse.Broadcaster,
	wsOptions ws.Options,
	logger *slog.Logger,
) *EventsHandler {
	return &EventsHandler{
		lobby:       lobby,
		hubManager:  hubManager,
		broadcaster: broadcaster,
		wsOptions:   wsOptions,
		logger:      logger,
	}
}

// SSE handles GET /api/v1/rooms/{code}/events
func (h *EventsHandler) SSE(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(hub *sse.Hub, onConnect func()) {
		sse.ServeSSE(w, r, hub, middleware.MustGetUser(r.Context()).ID, onConnect)
	})
}

// Websocket handles GET /api/v1/rooms/{code}/ws
func (h *EventsHandler) Websocket(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(hub *sse.Hub, onConnect func()) {
		ws.Serve(w, r, hub, middleware.MustGetUser(r.Context()).ID, h.wsOptions, onConnect, h.logger)
	})
}

func (h *EventsHandler) serve(w http.ResponseWriter, r *http.Request, stream func(hub *sse.Hub, onConnect func())) {
	u := middleware.MustGetUser(r.Context())
	code := roomCode(r)

	if _, err := h.lobby.GetRoom(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	// Streams outlive the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	connected := false
	hub := h.hubManager.GetOrCreateHub(code)
	stream(hub, func() {
		connected = true
		h.broadcaster.UserJoined(code, u.ID, u.Username)
	})
	if connected {
		h.broadcaster.UserLeft(code, u.ID, u.Username)
	}
}
