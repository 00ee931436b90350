package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stroopgame/internal/model"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
		{model.ErrUsernameTaken, http.StatusConflict, CodeUsernameExists},
		{model.ErrTurnExhausted, http.StatusPreconditionFailed, CodeInvalidState},
		{model.ErrRoomStarted, http.StatusPreconditionFailed, CodeRoomStarted},
		{model.ErrNotEnoughPlayers, http.StatusPreconditionFailed, CodeNotEnoughPlayers},
		{model.ErrNoActiveSession, http.StatusPreconditionFailed, CodeNoGameInProgress},
		{model.ErrSessionFinished, http.StatusPreconditionFailed, CodeGameFinished},
		{model.ErrSessionNotFinished, http.StatusPreconditionFailed, CodeGameNotFinished},
		{model.ErrRoundNotActive, http.StatusPreconditionFailed, CodeRoundNotActive},
		{model.ErrNotYourTurn, http.StatusForbidden, CodeNotYourTurn},
		{model.ErrRoomFull, http.StatusUnprocessableEntity, CodeRoomFull},
		{model.ErrCodeSpaceExhausted, http.StatusUnprocessableEntity, CodeCapacityExceeded},
		{model.ErrEmptyUsername, http.StatusBadRequest, CodeValidation},
		{model.ErrUserBusy, http.StatusLocked, CodeUserBusy},
		{model.ErrPlayerNotInSession, http.StatusNotFound, CodeNotFound},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			he := toHTTPError(tt.err)
			assert.Equal(t, tt.status, he.status)
			assert.Equal(t, tt.code, he.apiError.Code)
		})
	}
}

func TestKindsMapToDistinctStatuses(t *testing.T) {
	kindErrs := []error{
		model.ErrNotFound,
		model.ErrConflict,
		model.ErrInvalidState,
		model.ErrForbidden,
		model.ErrCapacityExceeded,
		model.ErrValidation,
	}
	seen := make(map[int]error)
	for _, err := range kindErrs {
		status := Status(err)
		if prev, ok := seen[status]; ok {
			t.Errorf("%v and %v both map to %d", prev, err, status)
		}
		seen[status] = err
	}
	assert.Len(t, seen, len(kindErrs))
}

func TestSpecificErrorsKeepTheirKindStatus(t *testing.T) {
	for _, m := range specific {
		if errors.Is(m.err, model.ErrUserBusy) {
			continue
		}
		for _, k := range kinds {
			if errors.Is(m.err, k.err) {
				assert.Equal(t, k.status, m.status, m.code)
			}
		}
	}
}

func TestWrappedErrorsKeepTheirMapping(t *testing.T) {
	err := fmt.Errorf("join 12345: %w", model.ErrRoomStarted)
	assert.Equal(t, http.StatusPreconditionFailed, Status(err))
	assert.Equal(t, CodeRoomStarted, toHTTPError(err).apiError.Code)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewInvalidRequestError("bad body"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeInvalidRequest, body.Error.Code)
	assert.Equal(t, "bad body", body.Error.Message)
}

func TestInternalErrorsHideDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("connection refused to 10.0.0.1"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Error.Message)
}
