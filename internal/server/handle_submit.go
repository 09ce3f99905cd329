package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
)

// CodeRequest is the request body for POST /api/game/challenges/{id}/code.
type CodeRequest struct {
	Code string `json:"code"`
}

// AnswerRequest is the request body for POST /api/game/challenges/{id}/answer.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// SubmissionResponse is returned when a code or answer is accepted.
type SubmissionResponse struct {
	ChallengeID int           `json:"challengeId"`
	Completed   bool          `json:"completed"`
	Awarded     int           `json:"awarded"`
	Board       BoardResponse `json:"board"`
}

type submitFunc func(t *grandjeu.Team, catalog grandjeu.Catalog, ch grandjeu.Challenge, input string, now time.Time) (grandjeu.Outcome, error)

func handleSubmitCode(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CodeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		submit(w, r, logger, repo, f, req.Code, (*grandjeu.Team).SubmitCode)
	}
}

func handleSubmitAnswer(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		submit(w, r, logger, repo, f, req.Answer, (*grandjeu.Team).SubmitAnswer)
	}
}

// submit runs one submission against the stored team and publishes the new
// snapshot whenever the record changed, including a counted wrong code.
func submit(w http.ResponseWriter, r *http.Request, logger *slog.Logger, repo grandjeu.Repository, f feed.Feed, input string, fn submitFunc) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	catalog, err := repo.ListChallenges(ctx)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	ch, found := catalog.Find(id)
	if !found {
		writeError(w, http.StatusNotFound, "challenge not found")
		return
	}

	var out grandjeu.Outcome
	team, err := grandjeu.UpdateTeam(ctx, repo, teamIDFrom(r), func(t *grandjeu.Team) (bool, error) {
		realigned := t.Reconcile(catalog)
		o, err := fn(t, catalog, ch, input, nowUTC())
		out = o
		return o.Changed || realigned, err
	})

	if out.Changed && !errors.Is(err, grandjeu.ErrPersistence) {
		publishTeam(ctx, logger, f, feed.TypeProgress, team, catalog)
		if out.Completed {
			logger.Info("challenge completed",
				"team_id", team.ID,
				"challenge_id", id,
				"awarded", out.Awarded,
				"score", team.Score,
			)
		}
	}

	switch {
	case errors.Is(err, grandjeu.ErrIncorrectCode), errors.Is(err, grandjeu.ErrIncorrectAnswer):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Hint: ch.Hint})
		return
	case err != nil:
		writeDomainError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmissionResponse{
		ChallengeID: id,
		Completed:   team.HasCompleted(id),
		Awarded:     out.Awarded,
		Board:       boardView(team, catalog),
	})
}
