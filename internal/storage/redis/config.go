package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Users and lifetime stats never expire.
	RoomTTL    time.Duration
	SessionTTL time.Duration // sessions, game players, rounds and answers
	ChatTTL    time.Duration

	// ChatHistoryLimit caps the stored messages per room
	ChatHistoryLimit int64
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		RoomTTL:          24 * time.Hour,
		SessionTTL:       24 * time.Hour,
		ChatTTL:          24 * time.Hour,
		ChatHistoryLimit: 500,
	}
}
