package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/stroopgame/internal/api"
	"github.com/mcoot/stroopgame/internal/config"
	"github.com/mcoot/stroopgame/internal/dependencies/clock"
	"github.com/mcoot/stroopgame/internal/dependencies/ids"
	"github.com/mcoot/stroopgame/internal/dependencies/random"
	"github.com/mcoot/stroopgame/internal/metrics"
	"github.com/mcoot/stroopgame/internal/services/catalog"
	"github.com/mcoot/stroopgame/internal/services/chat"
	"github.com/mcoot/stroopgame/internal/services/game"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/services/roomlock"
	"github.com/mcoot/stroopgame/internal/services/round"
	"github.com/mcoot/stroopgame/internal/services/scoring"
	"github.com/mcoot/stroopgame/internal/services/user"
	"github.com/mcoot/stroopgame/internal/storage"
	"github.com/mcoot/stroopgame/internal/storage/memory"
	pgstorage "github.com/mcoot/stroopgame/internal/storage/postgres"
	redisstorage "github.com/mcoot/stroopgame/internal/storage/redis"
	"github.com/mcoot/stroopgame/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Services
	Catalog         *catalog.Catalog
	Locker          *roomlock.Locker
	UserService     *user.Service
	ScoringService  *scoring.Service
	RoundService    *round.Service
	ChatService     *chat.Service
	LobbyController *lobby.Controller
	GameController  *game.Controller

	// Push and observability
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	Metrics     *metrics.Metrics

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the postgres DSN (required if StorageType is "postgres")
	DatabaseURL string
	// Lobby and Game default to lobby.DefaultConfig and game.DefaultConfig
	// when left zero
	Lobby lobby.Config
	Game  game.Config
}

// ConfigFrom maps server configuration onto factory configuration
func ConfigFrom(cfg *config.Config, logger *slog.Logger) Config {
	fc := Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		DatabaseURL: cfg.DatabaseURL,
		Lobby: lobby.Config{
			MinPlayers:      cfg.RoomMinPlayers,
			MaxPlayers:      cfg.RoomMaxPlayers,
			MaxCodeAttempts: lobby.DefaultConfig().MaxCodeAttempts,
		},
		Game: game.Config{
			MinRoundsPerPlayer:     cfg.RoundsPerPlayerMin,
			MaxRoundsPerPlayer:     cfg.RoundsPerPlayerMax,
			DefaultRoundsPerPlayer: cfg.RoundsPerPlayerDefault,
		},
	}
	if cfg.StorageType == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("redis storage: %w", err)
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		pgStore, err := pgstorage.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres storage: %w", err)
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	logger.Info("storage ready", slog.String("type", storageType))

	return newWithDependencies(store, clock.New(), random.New(), ids.New(), cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	idGen ids.Generator,
	cfg Config,
	logger *slog.Logger,
) *App {
	lobbyCfg := cfg.Lobby
	if lobbyCfg.MaxPlayers == 0 {
		lobbyCfg = lobby.DefaultConfig()
	}
	gameCfg := cfg.Game
	if gameCfg.MaxRoundsPerPlayer == 0 {
		gameCfg = game.DefaultConfig()
	}

	m := metrics.New()
	colors := catalog.Default()
	locker := roomlock.New()

	// Create services
	userService := user.New(store, clk, idGen, logger)
	scoringService := scoring.New(store, clk, idGen)
	roundService := round.New(store, colors, rnd, idGen, clk)
	chatService := chat.New(store, clk, idGen, logger)
	lobbyController := lobby.NewController(store, userService, locker, clk, rnd, idGen, lobbyCfg, logger)
	gameController := game.NewController(store, roundService, scoringService, locker, clk, idGen, m, gameCfg, logger)
	hubManager := sse.NewHubManager(logger, m)
	broadcaster := sse.NewBroadcaster(hubManager, colors, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		IDs:             idGen,
		Catalog:         colors,
		Locker:          locker,
		UserService:     userService,
		ScoringService:  scoringService,
		RoundService:    roundService,
		ChatService:     chatService,
		LobbyController: lobbyController,
		GameController:  gameController,
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
		Metrics:         m,
		logger:          logger,
	}
}

// Handler builds the HTTP router over the app's services
func (a *App) Handler(corsAllowedOrigin string) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:            a.logger,
		UserService:       a.UserService,
		ScoringService:    a.ScoringService,
		ChatService:       a.ChatService,
		LobbyController:   a.LobbyController,
		GameController:    a.GameController,
		HubManager:        a.HubManager,
		Broadcaster:       a.Broadcaster,
		Colors:            a.Catalog,
		Metrics:           a.Metrics,
		CORSAllowedOrigin: corsAllowedOrigin,
	})
}

// Close drops every event subscriber and releases storage
func (a *App) Close() error {
	a.HubManager.Close()
	return a.Storage.Close()
}
