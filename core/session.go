package core

import (
	"net/http"
	"time"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
)

// startSession creates a server-side session row for the user and sets
// the signed session cookie. Every successful login, registration and
// OAuth2 exchange funnels through here.
func (a *App) startSession(w http.ResponseWriter, user *db.User, remember bool) (error, jsonResponse) {
	cfg := a.Config()

	duration := cfg.Session.TokenDuration.Duration
	if remember {
		duration = cfg.Session.RememberTokenDuration.Duration
	}

	session := db.Session{
		ID:       crypto.NewSessionID(),
		UserID:   user.ID,
		Remember: remember,
		Expires:  time.Now().UTC().Add(duration),
	}

	created, err := a.DbAuth().CreateSession(session)
	if err != nil {
		return err, errorAuthDatabaseError
	}

	token, _, err := crypto.NewSessionToken(created.ID, user.ID, []byte(cfg.Session.Secret), duration)
	if err != nil {
		return err, errorTokenGeneration
	}

	setSessionCookie(w, cfg, token, created.Expires)
	return nil, jsonResponse{}
}

// setSessionCookie writes the session cookie. HttpOnly and SameSite are
// not configurable; the token must never be readable by page scripts.
func setSessionCookie(w http.ResponseWriter, cfg *config.Config, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Session.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie client side. The server
// side session row is revoked separately.
func clearSessionCookie(w http.ResponseWriter, cfg *config.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Session.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
