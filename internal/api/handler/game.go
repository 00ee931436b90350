package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/stroopgame/internal/api/middleware"
	"github.com/mcoot/stroopgame/internal/api/request"
	"github.com/mcoot/stroopgame/internal/api/response"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/game"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/web/sse"
)

// GameHandler handles game session endpoints
type GameHandler struct {
	lobby       lobby.ControllerInterface
	game        game.ControllerInterface
	broadcaster *sse.Broadcaster
	colors      sse.ColorLookup
	logger      *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	lobby lobby.ControllerInterface,
	game game.ControllerInterface,
	broadcaster *sse.Broadcaster,
	colors sse.ColorLookup,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		lobby:       lobby,
		game:        game,
		broadcaster: broadcaster,
		colors:      colors,
		logger:      logger,
	}
}

// Start handles POST /api/v1/rooms/{code}/game
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	code := roomCode(r)

	var req request.StartGameRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.game.StartGame(r.Context(), code, u.ID, req.RoundsPerPlayer)
	if err != nil {
		WriteError(w, err)
		return
	}

	if room, err := h.lobby.GetRoom(r.Context(), code); err == nil {
		h.broadcaster.GameStarted(room, session)
	}

	resp := response.StartGame{Session: response.SessionFromModel(session)}

	// The first player gets their round straight away
	info, err := h.game.NextRound(r.Context(), code)
	if err != nil {
		h.logger.Warn("failed to generate first round",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
	} else {
		h.broadcaster.NewTurn(code, info)
		resp.Round = h.roundResponse(info)
	}

	response.JSON(w, http.StatusCreated, resp)
}

// GetRound handles GET /api/v1/rooms/{code}/game/round
func (h *GameHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	info, err := h.game.CurrentRound(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, h.roundResponse(info))
}

// NextRound handles POST /api/v1/rooms/{code}/game/round
func (h *GameHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	code := roomCode(r)

	current, err := h.game.CurrentPlayer(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	if current.UserID != u.ID {
		WriteError(w, model.ErrNotYourTurn)
		return
	}

	info, err := h.game.NextRound(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.NewRound(code, info)
	response.JSON(w, http.StatusCreated, h.roundResponse(info))
}

// Answer handles POST /api/v1/rooms/{code}/game/answers
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	code := roomCode(r)

	var req request.AnswerRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.RoundID == "" || req.OptionID == "" {
		WriteError(w, NewInvalidRequestError("round_id and option_id are required"))
		return
	}

	result, err := h.game.SubmitAnswer(r.Context(), code, u.ID,
		model.RoundID(req.RoundID), model.OptionID(req.OptionID), req.ResponseTimeSeconds)
	if err != nil {
		WriteError(w, err)
		return
	}

	rows, err := h.game.Scoreboard(r.Context(), code)
	if err != nil {
		h.logger.Warn("failed to load scoreboard after answer",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
	}
	h.broadcaster.Answered(code, result, rows)

	resp := response.AnswerResultFromGame(result)

	if result.GameFinished {
		if room, err := h.lobby.GetRoom(r.Context(), code); err == nil {
			h.broadcaster.RoomUpdated(room)
		}
		response.JSON(w, http.StatusOK, resp)
		return
	}

	info, err := h.game.NextRound(r.Context(), code)
	if err != nil {
		h.logger.Warn("failed to generate next round",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
	} else {
		if result.TurnFinished {
			h.broadcaster.NewTurn(code, info)
		} else {
			h.broadcaster.NewRound(code, info)
		}
		resp.NextRound = h.roundResponse(info)
	}

	response.JSON(w, http.StatusOK, resp)
}

// Scoreboard handles GET /api/v1/rooms/{code}/game/scoreboard
func (h *GameHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.game.Scoreboard(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if rows == nil {
		rows = []model.ScoreboardRow{}
	}

	response.JSON(w, http.StatusOK, response.Scoreboard{Rows: rows})
}

// Winner handles GET /api/v1/rooms/{code}/game/winner
func (h *GameHandler) Winner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.game.Winner(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WinnerFromModel(winner))
}

// CurrentPlayer handles GET /api/v1/rooms/{code}/game/current-player
func (h *GameHandler) CurrentPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := h.game.CurrentPlayer(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromRef(*player))
}

func (h *GameHandler) roundResponse(info *game.RoundInfo) *response.Round {
	resp := &response.Round{
		SessionID: string(info.SessionID),
		Player:    response.PlayerFromRef(info.Player),
		Remaining: info.Remaining,
	}
	if info.Round != nil {
		ev := sse.NewRoundEvent(info, h.colors)
		resp.Round = &ev
	}
	return resp
}
