package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stroopgame/internal/api/handler"
	"github.com/mcoot/stroopgame/internal/api/middleware"
	"github.com/mcoot/stroopgame/internal/metrics"
	"github.com/mcoot/stroopgame/internal/services/chat"
	"github.com/mcoot/stroopgame/internal/services/game"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/services/scoring"
	"github.com/mcoot/stroopgame/internal/services/user"
	"github.com/mcoot/stroopgame/internal/web/sse"
	"github.com/mcoot/stroopgame/internal/web/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	UserService     user.ServiceInterface
	ScoringService  scoring.ServiceInterface
	ChatService     chat.ServiceInterface
	LobbyController lobby.ControllerInterface
	GameController  game.ControllerInterface
	HubManager      *sse.HubManager
	Broadcaster     *sse.Broadcaster
	Colors          sse.ColorLookup
	Metrics         *metrics.Metrics // nil disables /metrics

	// CORSAllowedOrigin is a comma-separated origin list; empty disables CORS
	CORSAllowedOrigin string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.UserService, cfg.ScoringService)
	roomHandler := handler.NewRoomHandler(cfg.LobbyController, cfg.Broadcaster)
	gameHandler := handler.NewGameHandler(cfg.LobbyController, cfg.GameController, cfg.Broadcaster, cfg.Colors, cfg.Logger)
	chatHandler := handler.NewChatHandler(cfg.ChatService, cfg.LobbyController, cfg.Broadcaster)
	eventsHandler := handler.NewEventsHandler(cfg.LobbyController, cfg.HubManager, cfg.Broadcaster,
		ws.Options{OriginPatterns: middleware.SplitOrigins(cfg.CORSAllowedOrigin)}, cfg.Logger)

	// Create middleware
	identifyMiddleware := middleware.Identify(cfg.UserService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(cfg.Metrics.Middleware)
	}

	// User routes (no identity required to log in or look people up)
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/users/register", userHandler.Register).Methods(http.MethodPost)
	api.Handle("/users/me", identifyMiddleware(http.HandlerFunc(userHandler.Me))).Methods(http.MethodGet)
	api.HandleFunc("/users/by-name/{username}", userHandler.ByName).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/stats", userHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", userHandler.Leaderboard).Methods(http.MethodGet)

	// Room routes (all require identity)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(identifyMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/players", roomHandler.Players).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/reset", roomHandler.Reset).Methods(http.MethodPost)

	// Game routes
	rooms.HandleFunc("/{code}/game", gameHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/game/round", gameHandler.GetRound).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/game/round", gameHandler.NextRound).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/game/answers", gameHandler.Answer).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/game/scoreboard", gameHandler.Scoreboard).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/game/winner", gameHandler.Winner).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/game/current-player", gameHandler.CurrentPlayer).Methods(http.MethodGet)

	// Chat routes
	rooms.HandleFunc("/{code}/messages", chatHandler.List).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/messages", chatHandler.Post).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/typing", chatHandler.Typing).Methods(http.MethodPost)

	// Event streams
	rooms.HandleFunc("/{code}/events", eventsHandler.SSE).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/ws", eventsHandler.Websocket).Methods(http.MethodGet)

	// Health check endpoint (no identity)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// CORS wraps the whole router so preflight requests never reach mux
	return middleware.CORS(cfg.CORSAllowedOrigin, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
