package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
)

func leaderboard(ctx context.Context, repo grandjeu.Repository) (grandjeu.Leaderboard, error) {
	teams, err := repo.ListTeams(ctx)
	if err != nil {
		return grandjeu.Leaderboard{}, err
	}
	catalog, err := repo.ListChallenges(ctx)
	if err != nil {
		return grandjeu.Leaderboard{}, err
	}
	return grandjeu.Rank(teams, catalog), nil
}

func handleAdminLeaderboard(logger *slog.Logger, repo grandjeu.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, err := leaderboard(r.Context(), repo)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, lb)
	}
}

const liveWriteTimeout = 10 * time.Second

// handleAdminLive pushes the leaderboard over a WebSocket on connect and
// again after every team event. Client messages are ignored.
func handleAdminLive(logger *slog.Logger, repo grandjeu.Repository, f feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		// CloseRead drains the connection and cancels ctx once the peer goes
		// away.
		ctx := conn.CloseRead(r.Context())

		events, err := f.Subscribe(ctx, "")
		if err != nil {
			logger.Error("subscribing to live feed", "error", err)
			conn.Close(websocket.StatusInternalError, "feed unavailable")
			return
		}

		push := func() bool {
			lb, err := leaderboard(ctx, repo)
			if err != nil {
				logger.Error("computing leaderboard", "error", err)
				return false
			}
			wctx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
			defer cancel()
			if err := wsjson.Write(wctx, conn, lb); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return false
			}
			return true
		}

		if !push() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case _, ok := <-events:
				if !ok || !push() {
					return
				}
			}
		}
	}
}
