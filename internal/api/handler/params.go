package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/stroopgame/internal/model"
)

func roomCode(r *http.Request) model.RoomCode {
	return model.RoomCode(mux.Vars(r)["code"])
}

// parseTake reads the optional take query parameter. Zero means the service
// default.
func parseTake(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("take")
	if raw == "" {
		return 0, nil
	}
	take, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewInvalidRequestError("take must be an integer")
	}
	return take, nil
}

// decodeBody decodes a JSON body into v. An empty body is accepted when
// optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return NewInvalidRequestError("invalid request body")
}
