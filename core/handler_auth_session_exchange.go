package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/oauth2"
)

// exchangeResult is the single session produced for one provider
// session id, shared by every duplicate invocation.
type exchangeResult struct {
	user    *db.User
	token   string
	expires time.Time
}

// AuthWithSessionExchangeHandler completes a hosted login: the browser
// posts the session id it extracted from the provider's redirect
// fragment, we verify it server side and issue a local session.
//
// Processing is idempotent per session id. Concurrent duplicates share
// one in-flight exchange via singleflight and sequential duplicates
// within the marker TTL replay the cached result, so exactly one local
// session is created no matter how often the callback fires.
// Endpoint: POST /api/oauth-session
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithSessionExchangeHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	cfg := a.Config()
	if !cfg.SessionExchange.Enabled || a.exchange == nil {
		WriteJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(oauth2.SessionIDHeader)
	}
	if req.SessionID == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}

	// The provider session id is a credential; it never goes into logs
	// or error messages.
	cacheKey := "oauth_exchange:" + req.SessionID

	v, err, _ := a.exchangeGroup.Do(req.SessionID, func() (interface{}, error) {
		if a.cache != nil {
			if cached, ok := a.cache.Get(cacheKey); ok {
				if result, ok := cached.(*exchangeResult); ok {
					return result, nil
				}
			}
		}

		result, err := a.performSessionExchange(r.Context(), cfg.SessionExchange.VerifyURL, req.SessionID)
		if err != nil {
			return nil, err
		}

		if a.cache != nil {
			a.cache.SetWithTTL(cacheKey, result, 1, cfg.SessionExchange.MarkerTTL.Duration)
			// The marker is a latch, not an optimization: a duplicate
			// callback arriving right after this write must see it.
			a.cache.Wait()
		}
		return result, nil
	})
	if err != nil {
		if errors.Is(err, oauth2.ErrSessionInvalid) {
			WriteJsonError(w, errorOAuth2SessionExchangeFailed)
			return
		}
		a.Logger().Error("session exchange failed", "error", err)
		WriteJsonError(w, errorOAuth2SessionExchangeFailed)
		return
	}

	result := v.(*exchangeResult)
	setSessionCookie(w, cfg, result.token, result.expires)
	writeAuthResponse(w, http.StatusOK, CodeOkAuthentication, result.user)
}

// performSessionExchange verifies the provider session id and creates
// the local user and session. A failure after CreateUserWithOauth2 can
// leave the user row behind with no session; that row is inert until a
// retry, and CreateUserWithOauth2 is an upsert, so the retry converges
// on the same account instead of duplicating it.
func (a *App) performSessionExchange(ctx context.Context, verifyURL, sessionID string) (*exchangeResult, error) {
	cfg := a.Config()

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.SessionExchange.Timeout.Duration)
	defer cancel()

	profile, err := a.exchange.Verify(verifyCtx, verifyURL, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := a.DbAuth().CreateUserWithOauth2(*profile)
	if err != nil {
		return nil, err
	}

	duration := cfg.Session.TokenDuration.Duration
	session := db.Session{
		ID:      crypto.NewSessionID(),
		UserID:  user.ID,
		Expires: time.Now().UTC().Add(duration),
	}
	created, err := a.DbAuth().CreateSession(session)
	if err != nil {
		return nil, err
	}

	token, _, err := crypto.NewSessionToken(created.ID, user.ID, []byte(cfg.Session.Secret), duration)
	if err != nil {
		return nil, err
	}

	return &exchangeResult{user: user, token: token, expires: created.Expires}, nil
}
