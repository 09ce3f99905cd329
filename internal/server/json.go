package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusOf maps a domain error to its HTTP status and public message.
func statusOf(err error) (int, string) {
	var verr *grandjeu.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, grandjeu.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, grandjeu.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, grandjeu.ErrIncorrectCode),
		errors.Is(err, grandjeu.ErrIncorrectAnswer):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, grandjeu.ErrChallengeLocked),
		errors.Is(err, grandjeu.ErrCodeRequired),
		errors.Is(err, grandjeu.ErrAlreadyCompleted),
		errors.Is(err, grandjeu.ErrNoQuestion),
		errors.Is(err, grandjeu.ErrDuplicateTeam),
		errors.Is(err, grandjeu.ErrDuplicateChallenge):
		return http.StatusConflict, err.Error()
	case errors.Is(err, grandjeu.ErrPersistence):
		return http.StatusServiceUnavailable, "could not save, try again"
	}
	return http.StatusInternalServerError, "internal error"
}

// writeDomainError reports err to the client, logging the ones that are
// not the player's doing.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeError(w, status, msg)
}
