package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
)

// AdminChallengeRequest is the request body for creating or replacing a
// challenge. Answer is optional: without one the challenge completes on its
// code alone.
type AdminChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
	Answer      string `json:"answer"`
	Points      int    `json:"points"`
	Hint        string `json:"hint"`
	Theme       string `json:"theme"`
}

func (req *AdminChallengeRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Code = grandjeu.NormalizeCode(req.Code)
	req.Answer = strings.TrimSpace(req.Answer)
	req.Hint = strings.TrimSpace(req.Hint)
	req.Theme = strings.TrimSpace(req.Theme)
	if req.Title == "" {
		return "title is required"
	}
	if req.Description == "" {
		return "description is required"
	}
	if req.Code == "" {
		return "code is required"
	}
	if req.Points < 0 {
		return "points must not be negative"
	}
	if req.Points == 0 {
		req.Points = grandjeu.DefaultPoints
	}
	return ""
}

func (req AdminChallengeRequest) challenge(id int) grandjeu.Challenge {
	return grandjeu.Challenge{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Answer:      req.Answer,
		Points:      req.Points,
		Hint:        req.Hint,
		Theme:       req.Theme,
	}
}

func handleAdminListChallenges(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := repo.ListChallenges(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		views := make([]AdminChallengeView, 0, len(catalog))
		for _, c := range catalog {
			views = append(views, adminChallengeView(c))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleAdminGetChallenge(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := challengeID(w, r)
		if !ok {
			return
		}
		c, err := repo.GetChallenge(r.Context(), id)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, adminChallengeView(c))
	}
}

func handleAdminCreateChallenge(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminChallengeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		catalog, err := repo.ListChallenges(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		c := req.challenge(catalog.NextID())
		if err := grandjeu.CreateChallenge(r.Context(), repo, c); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("challenge created", "challenge_id", c.ID, "admin", adminFrom(r).Email)
		reconcileTeams(r.Context(), logger, repo, f)

		writeJSON(w, http.StatusCreated, adminChallengeView(c))
	}
}

func handleAdminUpdateChallenge(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := challengeID(w, r)
		if !ok {
			return
		}

		var req AdminChallengeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if _, err := repo.GetChallenge(r.Context(), id); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		c := req.challenge(id)
		if err := repo.PutChallenge(r.Context(), c); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("challenge updated", "challenge_id", id, "admin", adminFrom(r).Email)
		reconcileTeams(r.Context(), logger, repo, f)

		writeJSON(w, http.StatusOK, adminChallengeView(c))
	}
}

// handleAdminDeleteChallenge removes a challenge. Team records keep the ID
// in completedTops where it no longer scores, and teams standing on it move
// to their next open challenge.
func handleAdminDeleteChallenge(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := challengeID(w, r)
		if !ok {
			return
		}
		if err := repo.DeleteChallenge(r.Context(), id); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("challenge deleted", "challenge_id", id, "admin", adminFrom(r).Email)
		reconcileTeams(r.Context(), logger, repo, f)

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

const (
	defaultQRSize = 320
	maxQRSize     = 2048
)

// handleAdminChallengeQR renders the challenge code as a PNG for printing.
func handleAdminChallengeQR(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := challengeID(w, r)
		if !ok {
			return
		}

		size := defaultQRSize
		if s := r.URL.Query().Get("size"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 64 || n > maxQRSize {
				writeError(w, http.StatusBadRequest, "size must be between 64 and 2048")
				return
			}
			size = n
		}

		c, err := repo.GetChallenge(r.Context(), id)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		png, err := qrcode.Encode(c.Code, qrcode.Medium, size)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", "inline; filename=\"top-"+strconv.Itoa(id)+".png\"")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
