package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
)

// handleEvents streams the team's board over SSE. EventSource cannot set
// headers, so the session token comes as a query parameter.
func handleEvents(logger *slog.Logger, repo grandjeu.Repository, sessions *Sessions, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}
		teamID, err := sessions.Parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ctx := r.Context()
		ch, err := f.Subscribe(ctx, teamID)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		initial, err := currentBoard(ctx, repo, teamID)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", initial)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if ev.Type == feed.TypeDeleted {
					fmt.Fprintf(w, "event: deleted\ndata: {}\n\n")
					flusher.Flush()
					return
				}
				payload := ev.Payload
				if len(payload) == 0 {
					// Out-of-process writers publish without a snapshot.
					if payload, err = currentBoard(ctx, repo, teamID); err != nil {
						logger.Warn("reloading board", "team_id", teamID, "error", err)
						continue
					}
				}
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func currentBoard(ctx context.Context, repo grandjeu.Repository, teamID string) (json.RawMessage, error) {
	team, err := repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	catalog, err := repo.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(boardView(team, catalog))
}

// publishTeam announces a team's new board. A failed publish only costs
// live viewers an update, so it is logged and dropped.
func publishTeam(ctx context.Context, logger *slog.Logger, f feed.Feed, typ string, t grandjeu.Team, catalog grandjeu.Catalog) {
	payload, err := json.Marshal(boardView(t, catalog))
	if err != nil {
		logger.Error("encoding team snapshot", "team_id", t.ID, "error", err)
		return
	}
	if err := f.Publish(ctx, feed.Event{Type: typ, TeamID: t.ID, Payload: payload}); err != nil {
		logger.Warn("publishing team update", "team_id", t.ID, "error", err)
	}
}

// reconcileTeams realigns every team with the catalog after it was edited,
// saves the ones whose pointer or score moved and republishes all of them.
// A team that fails to save is still corrected on its next read or
// submission, so failures are logged and skipped.
func reconcileTeams(ctx context.Context, logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) {
	teams, err := repo.ListTeams(ctx)
	if err != nil {
		logger.Warn("listing teams to reconcile", "error", err)
		return
	}
	catalog, err := repo.ListChallenges(ctx)
	if err != nil {
		logger.Warn("listing challenges to reconcile", "error", err)
		return
	}
	for _, t := range teams {
		updated, err := grandjeu.UpdateTeam(ctx, repo, t.ID, func(t *grandjeu.Team) (bool, error) {
			return t.Reconcile(catalog), nil
		})
		switch {
		case errors.Is(err, grandjeu.ErrNotFound):
			continue
		case err != nil:
			logger.Warn("reconciling team", "team_id", t.ID, "error", err)
			updated = t
		}
		publishTeam(ctx, logger, f, feed.TypeCatalog, updated, catalog)
	}
}
