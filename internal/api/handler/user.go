package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stroopgame/internal/api/middleware"
	"github.com/mcoot/stroopgame/internal/api/request"
	"github.com/mcoot/stroopgame/internal/api/response"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/scoring"
	"github.com/mcoot/stroopgame/internal/services/user"
)

// UserHandler handles user and leaderboard endpoints
type UserHandler struct {
	users   user.ServiceInterface
	scoring scoring.ServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(users user.ServiceInterface, scoring scoring.ServiceInterface) *UserHandler {
	return &UserHandler{users: users, scoring: scoring}
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	u, err := h.users.Resolve(r.Context(), req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(u, false))
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.UserFromModel(u, false))
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeUser(w, r, middleware.MustGetUser(r.Context()))
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), model.UserID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeUser(w, r, u)
}

// ByName handles GET /api/v1/users/by-name/{username}
func (h *UserHandler) ByName(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeUser(w, r, u)
}

// Stats handles GET /api/v1/users/{id}/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.scoring.UserStats(r.Context(), model.UserID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserStatsFromModel(stats))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	take, err := parseTake(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	entries, err := h.scoring.Leaderboard(r.Context(), take)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromEntries(entries))
}

func (h *UserHandler) writeUser(w http.ResponseWriter, r *http.Request, u *model.User) {
	playing, err := h.users.IsPlaying(r.Context(), u.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(u, playing))
}
