package storage

import (
	"context"

	"github.com/mcoot/stroopgame/internal/model"
)

// Storage defines the interface for data persistence. Getters return copies:
// mutating a returned value has no effect until it is saved.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	// GetUserByUsername matches case-insensitively
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// User stats operations
	SaveUserStats(ctx context.Context, stats *model.UserStats) error
	GetUserStats(ctx context.Context, userID model.UserID) (*model.UserStats, error)
	ListUserStats(ctx context.Context) ([]*model.UserStats, error)

	// In-session set
	SetPlaying(ctx context.Context, userIDs []model.UserID, playing bool) error
	IsPlaying(ctx context.Context, userID model.UserID) (bool, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.GameSession) error
	GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error)
	// DeleteSessionsForRoom removes every session of the room together with
	// its game players, rounds, options and answers. Returns how many
	// sessions were removed.
	DeleteSessionsForRoom(ctx context.Context, roomID model.RoomID) (int, error)

	// Game player operations
	SaveGamePlayer(ctx context.Context, player *model.GamePlayer) error
	GetGamePlayer(ctx context.Context, sessionID model.SessionID, userID model.UserID) (*model.GamePlayer, error)
	GetGamePlayersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.GamePlayer, error)

	// Round operations (options are stored with their round)
	SaveRound(ctx context.Context, round *model.Round) error
	GetRound(ctx context.Context, id model.RoundID) (*model.Round, error)

	// Answer operations
	SaveAnswer(ctx context.Context, answer *model.Answer) error
	GetAnswersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.Answer, error)

	// Chat operations
	SaveChatMessage(ctx context.Context, msg *model.ChatMessage) error
	// GetRecentChatMessages returns up to limit of the newest messages, oldest first
	GetRecentChatMessages(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error)

	Close() error
}
