package core

import (
	"context"
	"net/http"

	"github.com/folio-sh/folio/db"
)

// contextKey is a private type for context keys.
type contextKey string

const (
	userKey    contextKey = "user"
	sessionKey contextKey = "session"
)

// UserFromContext returns the authenticated user stored by RequireAuth,
// or nil for handlers outside the guarded chains.
func UserFromContext(ctx context.Context) *db.User {
	user, _ := ctx.Value(userKey).(*db.User)
	return user
}

// SessionFromContext returns the session resolved by RequireAuth.
func SessionFromContext(ctx context.Context) *db.Session {
	session, _ := ctx.Value(sessionKey).(*db.Session)
	return session
}

// RequireAuth rejects unauthenticated requests and stores the resolved
// user and session in the request context.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, session, err, resp := a.Auth().Authenticate(r)
		if err != nil {
			WriteJsonError(w, resp)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin-only operations. It must wrap RequireAuth's
// output or authenticate itself; failing the check is a hard Forbidden,
// never a silent degrade.
func (a *App) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			WriteJsonError(w, errorForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
