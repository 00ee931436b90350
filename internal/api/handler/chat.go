package handler

import (
	"net/http"

	"github.com/mcoot/stroopgame/internal/api/middleware"
	"github.com/mcoot/stroopgame/internal/api/request"
	"github.com/mcoot/stroopgame/internal/api/response"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/chat"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/web/sse"
)

// ChatHandler handles room chat endpoints
type ChatHandler struct {
	chat        chat.ServiceInterface
	lobby       lobby.ControllerInterface
	broadcaster *sse.Broadcaster
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat chat.ServiceInterface, lobby lobby.ControllerInterface, broadcaster *sse.Broadcaster) *ChatHandler {
	return &ChatHandler{chat: chat, lobby: lobby, broadcaster: broadcaster}
}

// List handles GET /api/v1/rooms/{code}/messages
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	take, err := parseTake(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	msgs, err := h.chat.Recent(r.Context(), roomCode(r), take)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ChatMessagesFromModel(msgs))
}

// Post handles POST /api/v1/rooms/{code}/messages
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	code := roomCode(r)

	var req request.ChatRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	msg, err := h.chat.Post(r.Context(), code, u.ID, req.Text)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.ChatPosted(code, msg)
	response.JSON(w, http.StatusCreated, response.ChatMessageFromModel(msg))
}

// Typing handles POST /api/v1/rooms/{code}/typing
func (h *ChatHandler) Typing(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	code := roomCode(r)

	var req request.TypingRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	room, err := h.lobby.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	if room.GetPlayer(u.ID) == nil {
		WriteError(w, model.ErrNotInRoom)
		return
	}

	h.broadcaster.Typing(code, u.ID, u.Username, req.IsTyping)
	response.NoContent(w)
}
