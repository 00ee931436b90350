package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mcoot/stroopgame/internal/dependencies/clock"
	"github.com/mcoot/stroopgame/internal/dependencies/ids"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/storage"
)

// MaxUsernameLength is the longest accepted username, in characters
const MaxUsernameLength = 32

// Service manages user identities. There are no passwords: a username is the
// whole identity.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger

	// serializes username checks with user creation
	mu sync.Mutex
}

// New creates a new user Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// NormalizeUsername trims and validates a username
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", model.ErrEmptyUsername
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", model.ErrUsernameTooLong
	}
	return username, nil
}

// Register creates a new user. Usernames are unique regardless of case.
func (s *Service) Register(ctx context.Context, username string) (*model.User, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}
	return s.create(ctx, username)
}

// Resolve logs a user in by name, creating the user on first use. A user who
// is in a game in progress cannot log in again.
func (s *Service) Resolve(ctx context.Context, username string) (*model.User, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.storage.GetUserByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return s.create(ctx, username)
	}
	if err != nil {
		return nil, err
	}

	playing, err := s.storage.IsPlaying(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if playing {
		return nil, model.ErrUserBusy
	}
	return user, nil
}

func (s *Service) create(ctx context.Context, username string) (*model.User, error) {
	now := s.clock.Now()
	user := &model.User{
		ID:        model.UserID(s.ids.NewID()),
		Username:  username,
		CreatedAt: now,
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if err := s.storage.SaveUserStats(ctx, &model.UserStats{UserID: user.ID, UpdatedAt: now}); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.String("user_id", string(user.ID)),
		slog.String("username", user.Username),
	)
	return user, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// GetUserByUsername retrieves a user by name, ignoring case
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	return s.storage.GetUserByUsername(ctx, username)
}

// UserExists reports whether a user with the ID exists
func (s *Service) UserExists(ctx context.Context, id model.UserID) (bool, error) {
	_, err := s.storage.GetUser(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

// UsernameFor returns the user's name
func (s *Service) UsernameFor(ctx context.Context, id model.UserID) (string, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// IsPlaying reports whether the user is in a game in progress
func (s *Service) IsPlaying(ctx context.Context, id model.UserID) (bool, error) {
	return s.storage.IsPlaying(ctx, id)
}

// Interface for dependency injection
type ServiceInterface interface {
	Register(ctx context.Context, username string) (*model.User, error)
	Resolve(ctx context.Context, username string) (*model.User, error)
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UserExists(ctx context.Context, id model.UserID) (bool, error)
	UsernameFor(ctx context.Context, id model.UserID) (string, error)
	IsPlaying(ctx context.Context, id model.UserID) (bool, error)
}

var _ ServiceInterface = (*Service)(nil)
