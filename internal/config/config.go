package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the server configuration read from the environment
type Config struct {
	Host        string
	Port        string
	StorageType string
	RedisURL    string
	DatabaseURL string
	LogLevel    slog.Level

	RoomMinPlayers int
	RoomMaxPlayers int

	RoundsPerPlayerMin     int
	RoundsPerPlayerMax     int
	RoundsPerPlayerDefault int

	// CORSAllowedOrigin is empty when cross-origin requests are not allowed
	CORSAllowedOrigin string
}

// Load reads an optional .env file and then the environment. Malformed
// numbers fall back to their defaults with a warning.
func Load(logger *slog.Logger, envFiles ...string) *Config {
	// A missing .env file is normal outside development
	_ = godotenv.Load(envFiles...)

	l := loader{logger: logger}
	cfg := &Config{
		Host:                   getEnv("HOST", "0.0.0.0"),
		Port:                   getEnv("PORT", "8080"),
		StorageType:            strings.ToLower(getEnv("STORAGE_TYPE", "memory")),
		RedisURL:               os.Getenv("REDIS_URL"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		LogLevel:               l.level("LOG_LEVEL", slog.LevelInfo),
		RoomMinPlayers:         l.int("ROOM_MIN_PLAYERS", 2),
		RoomMaxPlayers:         l.int("ROOM_MAX_PLAYERS", 4),
		RoundsPerPlayerMin:     l.int("ROUNDS_PER_PLAYER_MIN", 1),
		RoundsPerPlayerMax:     l.int("ROUNDS_PER_PLAYER_MAX", 10),
		RoundsPerPlayerDefault: l.int("ROUNDS_PER_PLAYER_DEFAULT", 4),
		CORSAllowedOrigin:      os.Getenv("CORS_ALLOWED_ORIGIN"),
	}
	return cfg
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Validate checks the bounds are coherent and the chosen backend has its URL
func (c *Config) Validate() error {
	if c.RoomMinPlayers < 1 || c.RoomMaxPlayers < c.RoomMinPlayers {
		return fmt.Errorf("invalid room bounds %d..%d", c.RoomMinPlayers, c.RoomMaxPlayers)
	}
	if c.RoundsPerPlayerMin < 1 || c.RoundsPerPlayerMax < c.RoundsPerPlayerMin {
		return fmt.Errorf("invalid rounds per player bounds %d..%d", c.RoundsPerPlayerMin, c.RoundsPerPlayerMax)
	}
	switch c.StorageType {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.StorageType)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type loader struct {
	logger *slog.Logger
}

func (l loader) int(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		l.warn(key, raw)
		return defaultValue
	}
	return v
}

func (l loader) level(key string, defaultValue slog.Level) slog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		l.warn(key, raw)
		return defaultValue
	}
	return level
}

func (l loader) warn(key, raw string) {
	if l.logger != nil {
		l.logger.Warn("ignoring invalid config value",
			slog.String("key", key),
			slog.String("value", raw),
		)
	}
}
