package handler

import (
	"net/http"

	"github.com/mcoot/stroopgame/internal/api/middleware"
	"github.com/mcoot/stroopgame/internal/api/response"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/web/sse"
)

// RoomHandler handles room membership endpoints
type RoomHandler struct {
	lobby       lobby.ControllerInterface
	broadcaster *sse.Broadcaster
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(lobby lobby.ControllerInterface, broadcaster *sse.Broadcaster) *RoomHandler {
	return &RoomHandler{lobby: lobby, broadcaster: broadcaster}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	room, err := h.lobby.CreateRoom(r.Context(), u.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(room))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.lobby.GetRoom(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	room, err := h.lobby.JoinRoom(r.Context(), roomCode(r), u.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.RoomUpdated(room)
	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Players handles GET /api/v1/rooms/{code}/players
func (h *RoomHandler) Players(w http.ResponseWriter, r *http.Request) {
	players, err := h.lobby.ListPlayers(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomPlayersFromModel(players))
}

// Reset handles POST /api/v1/rooms/{code}/reset
func (h *RoomHandler) Reset(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	code := roomCode(r)

	room, err := h.lobby.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !room.IsOwner(u.ID) {
		WriteError(w, model.ErrNotOwner)
		return
	}

	room, err = h.lobby.ResetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.RoomReset(room)
	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}
