package model

import "time"

// SessionID uniquely identifies a game session
type SessionID string

// SessionState represents the phase of a session
type SessionState string

const (
	SessionStatePlaying  SessionState = "playing"
	SessionStateFinished SessionState = "finished" // terminal
)

// GameSession is one play-through of a room
type GameSession struct {
	ID              SessionID
	RoomID          RoomID
	State           SessionState
	RoundsPerPlayer int

	// Seat-ordered user IDs, snapshot at session start
	Seats []UserID

	// Turn management
	CurrentSeat    int
	CurrentPlayer  UserID
	RoundsPlayed   int      // rounds completed by the current player
	CurrentRoundID *RoundID // nil means a round needs generating

	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// IsPlaying reports whether the session is still in progress
func (s *GameSession) IsPlaying() bool {
	return s.State == SessionStatePlaying
}

// RemainingRounds returns how many rounds the current player has left after
// the one being played
func (s *GameSession) RemainingRounds() int {
	return max(0, s.RoundsPerPlayer-s.RoundsPlayed-1)
}

// TurnExhausted reports whether the current player has played all rounds
func (s *GameSession) TurnExhausted() bool {
	return s.RoundsPlayed >= s.RoundsPerPlayer
}

// HasNextSeat reports whether a seat follows the current one
func (s *GameSession) HasNextSeat() bool {
	return s.CurrentSeat+1 < len(s.Seats)
}

// GamePlayer is the per-session scoreboard row for one user
type GamePlayer struct {
	SessionID       SessionID
	UserID          UserID
	Username        string
	SeatOrder       int
	Score           int
	TotalResponseMs int64
	ResponseCount   int
}

// AverageResponseMs returns the mean response time, or 0 with no responses
func (p *GamePlayer) AverageResponseMs() float64 {
	if p.ResponseCount == 0 {
		return 0
	}
	return float64(p.TotalResponseMs) / float64(p.ResponseCount)
}
