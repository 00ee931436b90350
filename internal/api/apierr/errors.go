package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/stroopgame/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeSessionNotFound  = "SESSION_NOT_FOUND"
	CodeRoundNotFound    = "ROUND_NOT_FOUND"
	CodeOptionNotFound   = "OPTION_NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUsernameExists   = "USERNAME_EXISTS"
	CodeInvalidState     = "INVALID_STATE"
	CodeRoomStarted      = "ROOM_STARTED"
	CodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	CodeNoGameInProgress = "NO_GAME_IN_PROGRESS"
	CodeGameFinished     = "GAME_FINISHED"
	CodeGameNotFinished  = "GAME_NOT_FINISHED"
	CodeRoundNotActive   = "ROUND_NOT_ACTIVE"
	CodeUserBusy         = "USER_BUSY"
	CodeForbidden        = "FORBIDDEN"
	CodeNotOwner         = "NOT_OWNER"
	CodeNotYourTurn      = "NOT_YOUR_TURN"
	CodeNotInRoom        = "NOT_IN_ROOM"
	CodeRoomFull         = "ROOM_FULL"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// specific errors take precedence over their kind
var specific = []struct {
	err    error
	status int
	code   string
}{
	{model.ErrUserBusy, http.StatusLocked, CodeUserBusy},
	{model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
	{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
	{model.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
	{model.ErrRoundNotFound, http.StatusNotFound, CodeRoundNotFound},
	{model.ErrOptionNotFound, http.StatusNotFound, CodeOptionNotFound},
	{model.ErrUsernameTaken, http.StatusConflict, CodeUsernameExists},
	{model.ErrRoomStarted, http.StatusPreconditionFailed, CodeRoomStarted},
	{model.ErrNotEnoughPlayers, http.StatusPreconditionFailed, CodeNotEnoughPlayers},
	{model.ErrNoActiveSession, http.StatusPreconditionFailed, CodeNoGameInProgress},
	{model.ErrSessionFinished, http.StatusPreconditionFailed, CodeGameFinished},
	{model.ErrSessionNotFinished, http.StatusPreconditionFailed, CodeGameNotFinished},
	{model.ErrRoundNotActive, http.StatusPreconditionFailed, CodeRoundNotActive},
	{model.ErrNotOwner, http.StatusForbidden, CodeNotOwner},
	{model.ErrNotYourTurn, http.StatusForbidden, CodeNotYourTurn},
	{model.ErrNotInRoom, http.StatusForbidden, CodeNotInRoom},
	{model.ErrRoomFull, http.StatusUnprocessableEntity, CodeRoomFull},
}

// kinds is the fallback mapping, one distinct status per kind
var kinds = []struct {
	err    error
	status int
	code   string
}{
	{model.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{model.ErrConflict, http.StatusConflict, CodeConflict},
	{model.ErrInvalidState, http.StatusPreconditionFailed, CodeInvalidState},
	{model.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{model.ErrCapacityExceeded, http.StatusUnprocessableEntity, CodeCapacityExceeded},
	{model.ErrValidation, http.StatusBadRequest, CodeValidation},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range specific {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, err.Error()}}
		}
	}
	for _, m := range kinds {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, err.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
