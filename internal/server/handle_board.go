package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

func handleBoard(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := repo.GetTeam(r.Context(), teamIDFrom(r))
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		catalog, err := repo.ListChallenges(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, boardView(team, catalog))
	}
}

// HintResponse is the response for GET /api/game/challenges/{id}/hint.
type HintResponse struct {
	ChallengeID int    `json:"challengeId"`
	Hint        string `json:"hint"`
}

func handleHint(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := challengeID(w, r)
		if !ok {
			return
		}
		ch, err := repo.GetChallenge(r.Context(), id)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		team, err := repo.GetTeam(r.Context(), teamIDFrom(r))
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		if !team.StateOf(id).Accessible() {
			writeDomainError(w, logger, grandjeu.ErrChallengeLocked)
			return
		}
		if ch.Hint == "" {
			writeError(w, http.StatusNotFound, "no hint for this challenge")
			return
		}
		writeJSON(w, http.StatusOK, HintResponse{ChallengeID: id, Hint: ch.Hint})
	}
}

// challengeID parses the {id} URL parameter, answering 400 when it is not
// a positive integer.
func challengeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid challenge id")
		return 0, false
	}
	return id, true
}
