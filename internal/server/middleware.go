package server

import (
	"context"
	"net/http"

	"github.com/playperu/grandjeu/internal/store"
)

type ctxKey int

const (
	ctxKeyTeam ctxKey = iota
	ctxKeyAdmin
)

// teamAuthMiddleware requires a team session token in the Authorization
// header.
func teamAuthMiddleware(sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			teamID, err := sessions.Parse(bearerToken(r))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTeam, teamID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminAuthMiddleware(admin *store.AdminStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(adminCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := admin.Session(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func teamIDFrom(r *http.Request) string {
	return r.Context().Value(ctxKeyTeam).(string)
}

func adminFrom(r *http.Request) store.AdminSession {
	return r.Context().Value(ctxKeyAdmin).(store.AdminSession)
}
