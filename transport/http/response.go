package http

import (
	"encoding/json"
	std "errors"
	"log/slog"
	"net/http"

	"sms-relay/errors"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", slog.Any("err", err))
	}
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{"ok": true, "data": data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{"ok": true, "data": data})
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"ok": false, "message": msg})
}

// failFrom maps domain sentinels to HTTP statuses. Unrecognized errors are
// reported as opaque server errors so internals never leak to clients.
func failFrom(w http.ResponseWriter, err error) {
	switch {
	case std.Is(err, errors.ErrInvalidArgument), std.Is(err, errors.ErrInvalidPassword):
		fail(w, http.StatusBadRequest, err.Error())
	case std.Is(err, errors.ErrGroupNotFound):
		fail(w, http.StatusNotFound, err.Error())
	case std.Is(err, errors.ErrUserAlreadyExists):
		fail(w, http.StatusConflict, err.Error())
	case std.Is(err, errors.ErrInvalidCredentials):
		fail(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("request failed", slog.Any("err", err))
		fail(w, http.StatusInternalServerError, "server error")
	}
}
