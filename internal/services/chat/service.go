package chat

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/stroopgame/internal/dependencies/clock"
	"github.com/mcoot/stroopgame/internal/dependencies/ids"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/storage"
)

const (
	MaxMessageLength = 400

	DefaultHistorySize = 50
	MaxHistorySize     = 200
)

// Service stores room chat
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
}

// New creates a new chat Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// Post stores a message from a room member. Text is trimmed and cut to
// MaxMessageLength characters.
func (s *Service) Post(ctx context.Context, code model.RoomCode, userID model.UserID, text string) (*model.ChatMessage, error) {
	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	member := room.GetPlayer(userID)
	if member == nil {
		return nil, model.ErrNotInRoom
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		text = string([]rune(text)[:MaxMessageLength])
	}

	msg := &model.ChatMessage{
		ID:        model.ChatMessageID(s.ids.NewID()),
		RoomID:    room.ID,
		UserID:    userID,
		Username:  member.Username,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveChatMessage(ctx, msg); err != nil {
		s.logger.Error("failed to save chat message",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return msg, nil
}

// Recent returns the room's latest messages, oldest first
func (s *Service) Recent(ctx context.Context, code model.RoomCode, take int) ([]*model.ChatMessage, error) {
	if take <= 0 {
		take = DefaultHistorySize
	}
	take = min(take, MaxHistorySize)

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.storage.GetRecentChatMessages(ctx, room.ID, take)
}

// ServiceInterface allows for mocking
type ServiceInterface interface {
	Post(ctx context.Context, code model.RoomCode, userID model.UserID, text string) (*model.ChatMessage, error)
	Recent(ctx context.Context, code model.RoomCode, take int) ([]*model.ChatMessage, error)
}

var _ ServiceInterface = (*Service)(nil)
