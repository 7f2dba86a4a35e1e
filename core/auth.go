package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
)

// Authenticator resolves the session credential a request carries into
// a user. A nil user with a nil error never happens; failures always
// carry the precomputed response to write.
type Authenticator interface {
	Authenticate(r *http.Request) (*db.User, *db.Session, error, jsonResponse)
}

// SessionAuthenticator implements the cookie-first session flow. The
// cookie value is a signed token naming a server-side session row, so
// revocation and expiry are authoritative in the database while the
// signature rejects forged ids before any lookup.
type SessionAuthenticator struct {
	dbAuth         db.DbAuth
	logger         *slog.Logger
	configProvider *config.Provider
}

func NewSessionAuthenticator(dbAuth db.DbAuth, logger *slog.Logger, configProvider *config.Provider) *SessionAuthenticator {
	return &SessionAuthenticator{
		dbAuth:         dbAuth,
		logger:         logger,
		configProvider: configProvider,
	}
}

// tokenFromRequest prefers the session cookie and falls back to a
// Bearer token for non-browser clients.
func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return token
}

func (a *SessionAuthenticator) Authenticate(r *http.Request) (*db.User, *db.Session, error, jsonResponse) {
	errAuth := errors.New("auth error")
	cfg := a.configProvider.Get()

	tokenString := tokenFromRequest(r, cfg.Session.CookieName)
	if tokenString == "" {
		return nil, nil, errAuth, errorUnauthenticated
	}

	sessionID, userID, err := crypto.ParseSessionToken(tokenString, []byte(cfg.Session.Secret))
	if err != nil {
		if errors.Is(err, crypto.ErrJwtTokenExpired) {
			return nil, nil, errAuth, errorSessionExpired
		}
		return nil, nil, errAuth, errorUnauthenticated
	}

	session, err := a.dbAuth.GetSessionById(sessionID)
	if err != nil {
		return nil, nil, errAuth, errorAuthDatabaseError
	}
	if session == nil || session.UserID != userID {
		return nil, nil, errAuth, errorUnauthenticated
	}
	if !session.Valid(time.Now().UTC()) {
		return nil, nil, errAuth, errorSessionExpired
	}

	user, err := a.dbAuth.GetUserById(session.UserID)
	if err != nil {
		return nil, nil, errAuth, errorAuthDatabaseError
	}
	if user == nil {
		// User deleted after the session was issued.
		return nil, nil, errAuth, errorUnauthenticated
	}

	return user, session, nil, jsonResponse{}
}
