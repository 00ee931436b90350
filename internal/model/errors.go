package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of these,
// so transports can map them to a response status with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrForbidden        = errors.New("forbidden")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrValidation       = errors.New("validation error")
)

var (
	// User errors
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrUsernameTaken   = fmt.Errorf("username already registered: %w", ErrConflict)
	ErrEmptyUsername   = fmt.Errorf("username is required: %w", ErrValidation)
	ErrUserBusy        = fmt.Errorf("user is in a game in progress: %w", ErrInvalidState)
	ErrUsernameTooLong = fmt.Errorf("username is too long: %w", ErrValidation)
	ErrStatsNotFound   = fmt.Errorf("user stats %w", ErrNotFound)

	// Room errors
	ErrRoomNotFound       = fmt.Errorf("room %w", ErrNotFound)
	ErrRoomFull           = fmt.Errorf("room is full: %w", ErrCapacityExceeded)
	ErrRoomStarted        = fmt.Errorf("room already started: %w", ErrInvalidState)
	ErrNotEnoughPlayers   = fmt.Errorf("not enough players to start: %w", ErrInvalidState)
	ErrNoPlayers          = fmt.Errorf("room has no players: %w", ErrInvalidState)
	ErrNotOwner           = fmt.Errorf("user is not the room owner: %w", ErrForbidden)
	ErrNotInRoom          = fmt.Errorf("user is not in this room: %w", ErrForbidden)
	ErrCodeSpaceExhausted = fmt.Errorf("could not allocate a room code: %w", ErrCapacityExceeded)

	// Session errors
	ErrSessionNotFound    = fmt.Errorf("game session %w", ErrNotFound)
	ErrNoActiveSession    = fmt.Errorf("no game in progress: %w", ErrInvalidState)
	ErrSessionFinished    = fmt.Errorf("game session already finished: %w", ErrInvalidState)
	ErrSessionNotFinished = fmt.Errorf("game session still in progress: %w", ErrInvalidState)
	ErrTurnExhausted      = fmt.Errorf("current player has no rounds left: %w", ErrInvalidState)
	ErrNotYourTurn        = fmt.Errorf("not this user's turn: %w", ErrForbidden)
	ErrPlayerNotInSession = fmt.Errorf("player not in session: %w", ErrNotFound)

	// Round errors
	ErrRoundNotFound       = fmt.Errorf("round %w", ErrNotFound)
	ErrOptionNotFound      = fmt.Errorf("round option %w", ErrNotFound)
	ErrRoundNotActive      = fmt.Errorf("round is not the active round: %w", ErrInvalidState)
	ErrInvalidResponseTime = fmt.Errorf("response time must not be negative: %w", ErrValidation)

	// Chat errors
	ErrEmptyMessage = fmt.Errorf("message text is required: %w", ErrValidation)
)
