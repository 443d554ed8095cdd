// Package rest exposes the playback, catalog and download operations
// over plain JSON HTTP.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/app/playback"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Debug().Msgf("rest: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeStoreError maps playback store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, playback.ErrTrackNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, playback.ErrInvalidArgument),
		errors.Is(err, playback.ErrInvalidSeekPosition),
		errors.Is(err, playback.ErrIndexOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, playback.ErrNoTrack),
		errors.Is(err, playback.ErrNoNextTrack),
		errors.Is(err, playback.ErrNoPreviousTrack):
		writeError(w, http.StatusConflict, err.Error())
	default:
		zlog.Error().Msgf("rest: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}
