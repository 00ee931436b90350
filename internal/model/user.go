package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User is a stable identity. Whether the user is currently in a session is
// tracked by the storage in-session set, not on the user record.
type User struct {
	ID        UserID
	Username  string
	CreatedAt time.Time
}

// UserStats holds lifetime statistics for one user
type UserStats struct {
	UserID          UserID
	TotalScore      int
	GamesPlayed     int
	BestScore       int
	Wins            int
	TotalResponseMs int64
	ResponseCount   int
	UpdatedAt       time.Time
}

// AverageResponseMs returns the mean response time, or 0 with no responses
func (s *UserStats) AverageResponseMs() float64 {
	if s.ResponseCount == 0 {
		return 0
	}
	return float64(s.TotalResponseMs) / float64(s.ResponseCount)
}
