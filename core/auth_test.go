package core

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/mock"
)

func newTestAuthenticator(m *mock.Db) *SessionAuthenticator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionAuthenticator(m, logger, config.NewProvider(newTestConfig()))
}

func TestSessionAuthenticator(t *testing.T) {
	user := &db.User{ID: "user123", Email: "test@example.com"}
	session := &db.Session{ID: "sess123", UserID: user.ID, Expires: time.Now().Add(time.Hour)}

	mockWith := func(s *db.Session, u *db.User) *mock.Db {
		return &mock.Db{
			GetSessionByIdFunc: func(id string) (*db.Session, error) {
				if s != nil && id == s.ID {
					return s, nil
				}
				return nil, nil
			},
			GetUserByIdFunc: func(id string) (*db.User, error) {
				if u != nil && id == u.ID {
					return u, nil
				}
				return nil, nil
			},
		}
	}

	validToken := func(t *testing.T, secret string) string {
		t.Helper()
		token, _, err := crypto.NewSessionToken(session.ID, user.ID, []byte(secret), 15*time.Minute)
		if err != nil {
			t.Fatalf("failed to create token: %v", err)
		}
		return token
	}

	t.Run("valid cookie", func(t *testing.T) {
		auth := newTestAuthenticator(mockWith(session, user))
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: validToken(t, testSessionSecret)})

		gotUser, gotSession, err, _ := auth.Authenticate(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUser.ID != user.ID || gotSession.ID != session.ID {
			t.Errorf("resolved wrong identity: user %q session %q", gotUser.ID, gotSession.ID)
		}
	})

	t.Run("bearer fallback", func(t *testing.T) {
		auth := newTestAuthenticator(mockWith(session, user))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+validToken(t, testSessionSecret))

		gotUser, _, err, _ := auth.Authenticate(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUser.ID != user.ID {
			t.Errorf("expected user %q, got %q", user.ID, gotUser.ID)
		}
	})

	t.Run("no credential", func(t *testing.T) {
		auth := newTestAuthenticator(mockWith(session, user))
		req := httptest.NewRequest("GET", "/", nil)

		_, _, err, resp := auth.Authenticate(req)
		if err == nil {
			t.Fatal("expected an error")
		}
		if resp.status != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", resp.status)
		}
	})

	t.Run("forged signature", func(t *testing.T) {
		auth := newTestAuthenticator(mockWith(session, user))
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: validToken(t, "wrong_secret_32_bytes_long_xxxxx")})

		_, _, err, _ := auth.Authenticate(req)
		if err == nil {
			t.Fatal("a token signed with the wrong key must be rejected")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, _, err := crypto.NewSessionToken(session.ID, user.ID, []byte(testSessionSecret), -time.Minute)
		if err != nil {
			t.Fatalf("failed to create token: %v", err)
		}
		auth := newTestAuthenticator(mockWith(session, user))
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})

		_, _, authErr, resp := auth.Authenticate(req)
		if authErr == nil {
			t.Fatal("expected an error")
		}
		if resp.status != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", resp.status)
		}
	})

	t.Run("expired server side session", func(t *testing.T) {
		expired := &db.Session{ID: "sess123", UserID: user.ID, Expires: time.Now().Add(-time.Hour)}
		auth := newTestAuthenticator(mockWith(expired, user))
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: validToken(t, testSessionSecret)})

		_, _, err, _ := auth.Authenticate(req)
		if err == nil {
			t.Fatal("an expired session row must not authenticate")
		}
	})

	t.Run("unknown session row", func(t *testing.T) {
		auth := newTestAuthenticator(mockWith(nil, user))
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: validToken(t, testSessionSecret)})

		_, _, err, _ := auth.Authenticate(req)
		if err == nil {
			t.Fatal("a token naming a missing session must be rejected")
		}
	})

	t.Run("user deleted after issue", func(t *testing.T) {
		auth := newTestAuthenticator(mockWith(session, nil))
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: validToken(t, testSessionSecret)})

		_, _, err, _ := auth.Authenticate(req)
		if err == nil {
			t.Fatal("a session for a deleted user must be rejected")
		}
	})
}
