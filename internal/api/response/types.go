package response

import (
	"time"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/game"
	"github.com/mcoot/stroopgame/internal/services/scoring"
)

// User represents a user in API responses
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsPlaying bool      `json:"is_playing"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User, isPlaying bool) User {
	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		IsPlaying: isPlaying,
		CreatedAt: u.CreatedAt,
	}
}

// UserStats represents lifetime statistics
type UserStats struct {
	UserID        string  `json:"user_id"`
	TotalScore    int     `json:"total_score"`
	GamesPlayed   int     `json:"games_played"`
	BestScore     int     `json:"best_score"`
	Wins          int     `json:"wins"`
	ResponseCount int     `json:"response_count"`
	AvgResponseMs float64 `json:"avg_response_ms"`
}

// UserStatsFromModel converts model.UserStats
func UserStatsFromModel(s *model.UserStats) UserStats {
	return UserStats{
		UserID:        string(s.UserID),
		TotalScore:    s.TotalScore,
		GamesPlayed:   s.GamesPlayed,
		BestScore:     s.BestScore,
		Wins:          s.Wins,
		ResponseCount: s.ResponseCount,
		AvgResponseMs: s.AverageResponseMs(),
	}
}

// LeaderboardEntry is one lifetime ranking row
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	Wins          int     `json:"wins"`
	BestScore     int     `json:"best_score"`
	TotalScore    int     `json:"total_score"`
	GamesPlayed   int     `json:"games_played"`
	AvgResponseMs float64 `json:"avg_response_ms"`
}

// LeaderboardFromEntries converts scoring leaderboard entries
func LeaderboardFromEntries(entries []scoring.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			Rank:          e.Rank,
			UserID:        string(e.UserID),
			Username:      e.Username,
			Wins:          e.Wins,
			BestScore:     e.BestScore,
			TotalScore:    e.TotalScore,
			GamesPlayed:   e.GamesPlayed,
			AvgResponseMs: e.AvgResponseMs,
		}
	}
	return out
}

// RoomPlayer represents a seated member
type RoomPlayer struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	IsOwner   bool   `json:"is_owner"`
	SeatOrder int    `json:"seat_order"`
}

// RoomPlayersFromModel converts members in seat order
func RoomPlayersFromModel(players []model.RoomPlayer) []RoomPlayer {
	out := make([]RoomPlayer, len(players))
	for i, p := range players {
		out[i] = RoomPlayer{
			UserID:    string(p.UserID),
			Username:  p.Username,
			IsOwner:   p.IsOwner,
			SeatOrder: p.SeatOrder,
		}
	}
	return out
}

// Room represents a room in API responses
type Room struct {
	Code            string       `json:"code"`
	CreatorID       string       `json:"creator_id"`
	MinPlayers      int          `json:"min_players"`
	MaxPlayers      int          `json:"max_players"`
	Started         bool         `json:"started"`
	ActiveSessionID *string      `json:"active_session_id,omitempty"`
	LatestSessionID *string      `json:"latest_session_id,omitempty"`
	Players         []RoomPlayer `json:"players"`
	CreatedAt       time.Time    `json:"created_at"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		Code:            string(r.Code),
		CreatorID:       string(r.CreatorID),
		MinPlayers:      r.MinPlayers,
		MaxPlayers:      r.MaxPlayers,
		Started:         r.Started,
		ActiveSessionID: sessionIDPtr(r.ActiveSessionID),
		LatestSessionID: sessionIDPtr(r.LatestSessionID),
		Players:         RoomPlayersFromModel(r.SeatedPlayers()),
		CreatedAt:       r.CreatedAt,
	}
}

func sessionIDPtr(id *model.SessionID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}

// Player names a seated player
type Player struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// PlayerFromRef converts a game.PlayerRef
func PlayerFromRef(p game.PlayerRef) Player {
	return Player{UserID: string(p.UserID), Username: p.Username}
}

// Session represents a game session
type Session struct {
	ID              string     `json:"id"`
	State           string     `json:"state"`
	RoundsPerPlayer int        `json:"rounds_per_player"`
	Seats           []string   `json:"seats"`
	CurrentPlayer   string     `json:"current_player"`
	RoundsPlayed    int        `json:"rounds_played"`
	CreatedAt       time.Time  `json:"created_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// SessionFromModel converts a model.GameSession
func SessionFromModel(s *model.GameSession) Session {
	seats := make([]string, len(s.Seats))
	for i, id := range s.Seats {
		seats[i] = string(id)
	}
	return Session{
		ID:              string(s.ID),
		State:           string(s.State),
		RoundsPerPlayer: s.RoundsPerPlayer,
		Seats:           seats,
		CurrentPlayer:   string(s.CurrentPlayer),
		RoundsPlayed:    s.RoundsPlayed,
		CreatedAt:       s.CreatedAt,
		FinishedAt:      s.FinishedAt,
	}
}

// Round is the round in play with its turn context. Round data is omitted
// when no round is active.
type Round struct {
	SessionID string          `json:"session_id"`
	Player    Player          `json:"player"`
	Remaining int             `json:"remaining_rounds"`
	Round     *model.NewRound `json:"round,omitempty"`
}

// StartGame is the response to starting a game
type StartGame struct {
	Session Session `json:"session"`
	Round   *Round  `json:"round,omitempty"`
}

// AnswerResult reports the effect of one answer
type AnswerResult struct {
	UserID       string  `json:"user_id"`
	Score        int     `json:"score"`
	Delta        int     `json:"delta"`
	IsCorrect    bool    `json:"is_correct"`
	TurnFinished bool    `json:"turn_finished"`
	GameFinished bool    `json:"game_finished"`
	NextPlayer   *Player `json:"next_player,omitempty"`
	Winner       *Winner `json:"winner,omitempty"`
	NextRound    *Round  `json:"next_round,omitempty"`
}

// AnswerResultFromGame converts a game.AnswerResult
func AnswerResultFromGame(r *game.AnswerResult) AnswerResult {
	out := AnswerResult{
		UserID:       string(r.Player.UserID),
		Score:        r.Player.Score,
		Delta:        r.Delta,
		IsCorrect:    r.IsCorrect,
		TurnFinished: r.TurnFinished,
		GameFinished: r.GameFinished,
	}
	if r.NextPlayer != nil {
		p := PlayerFromRef(*r.NextPlayer)
		out.NextPlayer = &p
	}
	if r.Winner != nil {
		w := WinnerFromModel(r.Winner)
		out.Winner = &w
	}
	return out
}

// Winner names the session winner
type Winner struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	Score           int    `json:"score"`
	TotalResponseMs int64  `json:"total_response_ms"`
}

// WinnerFromModel converts the winning model.GamePlayer
func WinnerFromModel(p *model.GamePlayer) Winner {
	return Winner{
		UserID:          string(p.UserID),
		Username:        p.Username,
		Score:           p.Score,
		TotalResponseMs: p.TotalResponseMs,
	}
}

// Scoreboard wraps ranked rows
type Scoreboard struct {
	Rows []model.ScoreboardRow `json:"rows"`
}

// ChatMessage represents one chat line
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessageFromModel converts a model.ChatMessage
func ChatMessageFromModel(m *model.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:        string(m.ID),
		UserID:    string(m.UserID),
		Username:  m.Username,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

// ChatMessagesFromModel converts a list of messages
func ChatMessagesFromModel(msgs []*model.ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = ChatMessageFromModel(m)
	}
	return out
}
