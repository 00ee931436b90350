package lobby

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/mcoot/stroopgame/internal/dependencies/clock"
	"github.com/mcoot/stroopgame/internal/dependencies/ids"
	"github.com/mcoot/stroopgame/internal/dependencies/random"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/roomlock"
	"github.com/mcoot/stroopgame/internal/storage"
)

const (
	// Room codes are five-digit numbers
	roomCodeMin   = 10000
	roomCodeRange = 90000
)

// Config holds room policy
type Config struct {
	MinPlayers int
	MaxPlayers int
	// MaxCodeAttempts bounds the retries when generated codes collide
	MaxCodeAttempts int
}

// DefaultConfig returns the standard 2..4 player policy
func DefaultConfig() Config {
	return Config{
		MinPlayers:      2,
		MaxPlayers:      4,
		MaxCodeAttempts: 100,
	}
}

// UserLookup resolves user identities
type UserLookup interface {
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
}

// Controller is the room registry: codes, seat-ordered membership and the
// started flag
type Controller struct {
	storage storage.Storage
	users   UserLookup
	locker  *roomlock.Locker
	clock   clock.Clock
	random  random.Random
	ids     ids.Generator
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new room registry
func NewController(
	storage storage.Storage,
	users UserLookup,
	locker *roomlock.Locker,
	clock clock.Clock,
	random random.Random,
	ids ids.Generator,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		users:   users,
		locker:  locker,
		clock:   clock,
		random:  random,
		ids:     ids,
		cfg:     cfg,
		logger:  logger,
	}
}

// CreateRoom creates a room under a fresh code with the creator in seat 0 as owner
func (c *Controller) CreateRoom(ctx context.Context, creatorID model.UserID) (*model.Room, error) {
	creator, err := c.users.GetUser(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < c.cfg.MaxCodeAttempts; attempt++ {
		code := model.RoomCode(strconv.Itoa(roomCodeMin + c.random.Intn(roomCodeRange)))

		room, err := c.tryCreate(ctx, code, creator)
		if err != nil {
			return nil, err
		}
		if room != nil {
			return room, nil
		}
	}
	return nil, model.ErrCodeSpaceExhausted
}

// tryCreate claims the code if unused; returns nil without error on collision
func (c *Controller) tryCreate(ctx context.Context, code model.RoomCode, creator *model.User) (*model.Room, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	exists, err := c.storage.RoomExists(ctx, code)
	if err != nil || exists {
		return nil, err
	}

	now := c.clock.Now()
	room := &model.Room{
		ID:         model.RoomID(c.ids.NewID()),
		Code:       code,
		CreatorID:  creator.ID,
		MinPlayers: c.cfg.MinPlayers,
		MaxPlayers: c.cfg.MaxPlayers,
		NextSeat:   1,
		Players: []model.RoomPlayer{
			{
				UserID:    creator.ID,
				Username:  creator.Username,
				IsOwner:   true,
				SeatOrder: 0,
				JoinedAt:  now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_code", string(code)),
		slog.String("creator_id", string(creator.ID)),
	)
	return room, nil
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// JoinRoom seats the user at the next seat. Joining again is a no-op that
// returns the room unchanged, even once the room has started. A user playing
// in another room cannot take a seat until that game ends.
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.Room, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	user, err := c.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Membership is checked before the started and capacity rules
	if room.GetPlayer(userID) != nil {
		return room, nil
	}
	if room.Started {
		return nil, model.ErrRoomStarted
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}
	playing, err := c.storage.IsPlaying(ctx, userID)
	if err != nil {
		return nil, err
	}
	if playing {
		return nil, model.ErrUserBusy
	}

	now := c.clock.Now()
	room.Players = append(room.Players, model.RoomPlayer{
		UserID:    user.ID,
		Username:  user.Username,
		IsOwner:   user.ID == room.CreatorID,
		SeatOrder: room.NextSeat,
		JoinedAt:  now,
	})
	room.NextSeat++
	room.UpdatedAt = now

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("player joined room",
		slog.String("room_code", string(code)),
		slog.String("user_id", string(userID)),
		slog.Int("seat", room.NextSeat-1),
	)
	return room, nil
}

// ListPlayers returns the members in seat order
func (c *Controller) ListPlayers(ctx context.Context, code model.RoomCode) ([]model.RoomPlayer, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return room.SeatedPlayers(), nil
}

// CanStart reports whether the membership is within bounds and the room idle
func (c *Controller) CanStart(ctx context.Context, code model.RoomCode) (bool, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return false, err
	}
	return CanStart(room), nil
}

// CanStart reports whether the room could start a session now
func CanStart(room *model.Room) bool {
	n := len(room.Players)
	return !room.Started && n >= room.MinPlayers && n <= room.MaxPlayers
}

// MarkStarted sets the started flag. Idempotent.
func (c *Controller) MarkStarted(ctx context.Context, code model.RoomCode) error {
	unlock := c.locker.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if room.Started {
		return nil
	}
	room.Started = true
	room.UpdatedAt = c.clock.Now()
	return c.storage.SaveRoom(ctx, room)
}

// ResetRoom returns the room to the lobby: every session of the room is
// deleted with its game players, rounds, options and answers, and the
// started and session markers are cleared. Lifetime stats are kept.
// Atomicity of the delete depends on the storage backend.
func (c *Controller) ResetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	// Anyone still marked in-session by a running game is released
	if room.ActiveSessionID != nil {
		session, err := c.storage.GetSession(ctx, *room.ActiveSessionID)
		if err == nil && session.IsPlaying() {
			if err := c.storage.SetPlaying(ctx, session.Seats, false); err != nil {
				return nil, err
			}
		}
	}

	removed, err := c.storage.DeleteSessionsForRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	room.Started = false
	room.ActiveSessionID = nil
	room.LatestSessionID = nil
	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room reset",
		slog.String("room_code", string(code)),
		slog.Int("sessions_removed", removed),
	)
	return room, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, creatorID model.UserID) (*model.Room, error)
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	JoinRoom(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.Room, error)
	ListPlayers(ctx context.Context, code model.RoomCode) ([]model.RoomPlayer, error)
	CanStart(ctx context.Context, code model.RoomCode) (bool, error)
	MarkStarted(ctx context.Context, code model.RoomCode) error
	ResetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
}

var _ ControllerInterface = (*Controller)(nil)
