package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
	"github.com/playperu/grandjeu/internal/handler/health"
	"github.com/playperu/grandjeu/internal/store"
)

// Deps is everything the HTTP layer talks to.
type Deps struct {
	Repo     grandjeu.Repository
	Admin    *store.AdminStore
	Feed     feed.Feed
	Sessions *Sessions
	Checks   map[string]health.Checker
	SPADir   string
}

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Grand Jeu API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, d.Checks).Routes())

	// Teams.
	r.Post("/api/teams", handleSignUp(logger, d.Repo, d.Sessions))
	r.Post("/api/session", handleLogin(logger, d.Repo, d.Sessions))

	r.Route("/api/game", func(r chi.Router) {
		// EventSource cannot send headers; the token is a query parameter.
		r.Get("/events", handleEvents(logger, d.Repo, d.Sessions, d.Feed))

		r.Group(func(r chi.Router) {
			r.Use(teamAuthMiddleware(d.Sessions))
			r.Get("/board", handleBoard(logger, d.Repo))
			r.Post("/challenges/{id}/code", handleSubmitCode(logger, d.Repo, d.Feed))
			r.Post("/challenges/{id}/answer", handleSubmitAnswer(logger, d.Repo, d.Feed))
			r.Get("/challenges/{id}/hint", handleHint(logger, d.Repo))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", handleAdminLogin(logger, d.Admin))
		r.Post("/logout", handleAdminLogout(logger, d.Admin))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(d.Admin))
			r.Get("/me", handleAdminMe())

			r.Get("/challenges", handleAdminListChallenges(logger, d.Repo))
			r.Post("/challenges", handleAdminCreateChallenge(logger, d.Repo, d.Feed))
			r.Get("/challenges/{id}", handleAdminGetChallenge(logger, d.Repo))
			r.Put("/challenges/{id}", handleAdminUpdateChallenge(logger, d.Repo, d.Feed))
			r.Delete("/challenges/{id}", handleAdminDeleteChallenge(logger, d.Repo, d.Feed))
			r.Get("/challenges/{id}/qr", handleAdminChallengeQR(logger, d.Repo))

			r.Get("/teams", handleAdminListTeams(logger, d.Repo))
			r.Post("/teams", handleAdminCreateTeam(logger, d.Repo))
			r.Post("/teams/reset", handleAdminResetAllTeams(logger, d.Repo, d.Feed))
			r.Get("/teams/{id}", handleAdminGetTeam(logger, d.Repo))
			r.Put("/teams/{id}", handleAdminUpdateTeam(logger, d.Repo, d.Feed))
			r.Delete("/teams/{id}", handleAdminDeleteTeam(logger, d.Repo, d.Feed))
			r.Post("/teams/{id}/reset", handleAdminResetTeam(logger, d.Repo, d.Feed))

			r.Get("/leaderboard", handleAdminLeaderboard(logger, d.Repo))
			r.Get("/live", handleAdminLive(logger, d.Repo, d.Feed))
		})
	})

	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", d.SPADir)
			r.NotFound(handleSPA(d.SPADir))
		}
	}
}
