package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

// SignUpRequest is the request body for POST /api/teams.
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the request body for POST /api/session. Login is the
// team name or email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (req *LoginRequest) validate() string {
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" {
		return "login is required"
	}
	if req.Password == "" {
		return "password is required"
	}
	return ""
}

// SessionResponse is returned on sign-up and login.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Team      TeamView  `json:"team"`
}

func handleSignUp(logger *slog.Logger, repo grandjeu.Repository, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignUpRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		su := grandjeu.SignUp(req)
		if err := su.Validate(true); err != nil {
			writeDomainError(w, logger, err)
			return
		}

		ctx := r.Context()
		if err := checkUnique(ctx, repo, "", su.Name, su.Email); err != nil {
			writeDomainError(w, logger, err)
			return
		}

		catalog, err := repo.ListChallenges(ctx)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		hash, err := grandjeu.HashPassword(su.Password)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		team := grandjeu.NewTeam(grandjeu.NewTeamID(), su.Name, su.Email, hash, catalog, nowUTC())
		if err := repo.PutTeam(ctx, team); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("team signed up", "team_id", team.ID, "name", team.Name)

		writeSession(w, logger, sessions, http.StatusCreated, team)
	}
}

func handleLogin(logger *slog.Logger, repo grandjeu.Repository, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		team, err := grandjeu.FindTeamByLogin(r.Context(), repo, req.Login)
		if errors.Is(err, grandjeu.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		if err := team.CheckPassword(req.Password); err != nil {
			writeDomainError(w, logger, err)
			return
		}

		writeSession(w, logger, sessions, http.StatusOK, team)
	}
}

func writeSession(w http.ResponseWriter, logger *slog.Logger, sessions *Sessions, status int, team grandjeu.Team) {
	token, expires, err := sessions.Issue(team.ID)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	writeJSON(w, status, SessionResponse{
		Token:     token,
		ExpiresAt: expires,
		Team:      teamView(team),
	})
}

func nowUTC() time.Time { return time.Now().UTC() }
