package core

import (
	"net/http"
)

// CurrentSessionHandler resolves the session credential into the
// current user ("who am I"). An anonymous caller is not an error at
// the transport level, but the response distinguishes it.
// Endpoint: GET /api/current-session
// Authenticated: No (resolves whatever credential is present)
func (a *App) CurrentSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, _, err, resp := a.Auth().Authenticate(r)
	if err != nil {
		WriteJsonError(w, resp)
		return
	}

	writeAuthResponse(w, http.StatusOK, CodeOkCurrentSession, user)
}

// LogoutHandler revokes the current session and clears the cookie.
// Logging out an unknown, expired or already revoked session succeeds
// as well; logout is idempotent.
// Endpoint: POST /api/logout
// Authenticated: No
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.Config()

	_, session, err, _ := a.Auth().Authenticate(r)
	if err == nil && session != nil {
		if err := a.DbAuth().RevokeSession(session.ID); err != nil {
			a.Logger().Error("failed to revoke session", "session", session.ID, "error", err)
		}
	}

	clearSessionCookie(w, cfg)
	WriteJsonOk(w, okLogout)
}
