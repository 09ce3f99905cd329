package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
)

// AdminTeamRequest is the request body for creating or updating a team. On
// update an empty password keeps the current one.
type AdminTeamRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *AdminTeamRequest) validate(create bool) error {
	su := grandjeu.SignUp{Name: req.Name, Email: req.Email, Password: req.Password}
	if !create && su.Password == "" {
		// Any valid placeholder: only name and email are checked here.
		su.Password = strings.Repeat("x", grandjeu.MinPasswordLen)
	}
	if err := su.Validate(false); err != nil {
		return err
	}
	req.Name, req.Email = su.Name, su.Email
	return nil
}

// ResetAllResponse is the response for POST /api/admin/teams/reset.
type ResetAllResponse struct {
	Reset int `json:"reset"`
}

func handleAdminListTeams(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := repo.ListTeams(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		views := make([]TeamView, 0, len(teams))
		for _, t := range teams {
			views = append(views, teamView(t))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleAdminGetTeam(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := repo.GetTeam(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, teamView(t))
	}
}

func handleAdminCreateTeam(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.validate(true); err != nil {
			writeDomainError(w, logger, err)
			return
		}

		ctx := r.Context()
		if err := checkUnique(ctx, repo, "", req.Name, req.Email); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		catalog, err := repo.ListChallenges(ctx)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		hash, err := grandjeu.HashPassword(req.Password)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		t := grandjeu.NewTeam(grandjeu.NewTeamID(), req.Name, req.Email, hash, catalog, nowUTC())
		if err := repo.PutTeam(ctx, t); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("team created", "team_id", t.ID, "name", t.Name, "admin", adminFrom(r).Email)

		writeJSON(w, http.StatusCreated, teamView(t))
	}
}

func handleAdminUpdateTeam(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req AdminTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.validate(false); err != nil {
			writeDomainError(w, logger, err)
			return
		}

		ctx := r.Context()
		if err := checkUnique(ctx, repo, id, req.Name, req.Email); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		var hash string
		if req.Password != "" {
			h, err := grandjeu.HashPassword(req.Password)
			if err != nil {
				writeDomainError(w, logger, err)
				return
			}
			hash = h
		}

		t, err := grandjeu.UpdateTeam(ctx, repo, id, func(t *grandjeu.Team) (bool, error) {
			t.Name = req.Name
			t.Email = req.Email
			if hash != "" {
				t.PasswordHash = hash
			}
			return true, nil
		})
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("team updated", "team_id", id, "admin", adminFrom(r).Email)
		if catalog, err := repo.ListChallenges(ctx); err == nil {
			publishTeam(ctx, logger, f, feed.TypeProgress, t, catalog)
		}

		writeJSON(w, http.StatusOK, teamView(t))
	}
}

func handleAdminDeleteTeam(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.DeleteTeam(r.Context(), id); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("team deleted", "team_id", id, "admin", adminFrom(r).Email)
		if err := f.Publish(r.Context(), feed.Event{Type: feed.TypeDeleted, TeamID: id}); err != nil {
			logger.Warn("publishing team deletion", "team_id", id, "error", err)
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleAdminResetTeam(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		catalog, err := repo.ListChallenges(ctx)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		t, err := resetTeam(ctx, repo, chi.URLParam(r, "id"), catalog)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("team reset", "team_id", t.ID, "admin", adminFrom(r).Email)
		publishTeam(ctx, logger, f, feed.TypeReset, t, catalog)

		writeJSON(w, http.StatusOK, teamView(t))
	}
}

func handleAdminResetAllTeams(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		catalog, err := repo.ListChallenges(ctx)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		teams, err := repo.ListTeams(ctx)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		for _, t := range teams {
			t, err := resetTeam(ctx, repo, t.ID, catalog)
			if errors.Is(err, grandjeu.ErrNotFound) {
				continue
			}
			if err != nil {
				writeDomainError(w, logger, err)
				return
			}
			publishTeam(ctx, logger, f, feed.TypeReset, t, catalog)
		}
		logger.Info("all teams reset", "teams", len(teams), "admin", adminFrom(r).Email)

		writeJSON(w, http.StatusOK, ResetAllResponse{Reset: len(teams)})
	}
}

func resetTeam(ctx context.Context, repo grandjeu.Repository, id string, catalog grandjeu.Catalog) (grandjeu.Team, error) {
	return grandjeu.UpdateTeam(ctx, repo, id, func(t *grandjeu.Team) (bool, error) {
		t.Reset(catalog, nowUTC())
		return true, nil
	})
}

// checkUnique rejects a name or email already used by a team other than
// self.
func checkUnique(ctx context.Context, repo grandjeu.Repository, self, name, email string) error {
	for _, login := range []string{name, email} {
		if login == "" {
			continue
		}
		t, err := grandjeu.FindTeamByLogin(ctx, repo, login)
		if errors.Is(err, grandjeu.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if t.ID != self {
			return fmt.Errorf("%w: %s", grandjeu.ErrDuplicateTeam, login)
		}
	}
	return nil
}
