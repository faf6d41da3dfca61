package web

import (
	"encoding/json"
	"net/http"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/hlog"

	"schemalens/internal/types"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func renderJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)
	kind := types.KindOf(err)
	if kind == types.ErrorKindNone {
		kind = "Internal"
	}
	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).Str("kind", string(kind)).Int("status", status).Msg("request failed")
	renderJSON(w, status, ErrorResponse{
		Kind:    string(kind),
		Message: types.ErrorMessage(err),
	})
}

// StatusForError maps failures to HTTP status codes: lookups that find
// nothing are 404, bad input is 400, parse and load failures are 500.
func StatusForError(err error) int {
	switch types.KindOf(err) {
	case types.ErrorKindInvalidInput:
		return http.StatusBadRequest
	case types.ErrorKindClassNotFound,
		types.ErrorKindSlotNotFound,
		types.ErrorKindSlotNotDefinedByHierarchy,
		types.ErrorKindTypecodeNotFound,
		types.ErrorKindNoSettingsBlock,
		types.ErrorKindColumnNotFound:
		return http.StatusNotFound
	case types.ErrorKindPatternParse, types.ErrorKindLoad:
		return http.StatusInternalServerError
	}
	switch types.ErrorCode(err) {
	case errbuilder.CodeInvalidArgument:
		return http.StatusBadRequest
	case errbuilder.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
