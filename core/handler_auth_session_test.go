package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/mock"
)

// sessionCookieFor builds a valid signed cookie for the given session
// and wires the mock db to resolve it.
func sessionCookieFor(t *testing.T, m *mock.Db, user *db.User, session *db.Session) *http.Cookie {
	t.Helper()

	token, _, err := crypto.NewSessionToken(session.ID, user.ID, []byte(testSessionSecret), 15*time.Minute)
	if err != nil {
		t.Fatalf("failed to create session token: %v", err)
	}

	m.GetSessionByIdFunc = func(id string) (*db.Session, error) {
		if id == session.ID {
			return session, nil
		}
		return nil, nil
	}
	m.GetUserByIdFunc = func(id string) (*db.User, error) {
		if id == user.ID {
			return user, nil
		}
		return nil, nil
	}

	return &http.Cookie{Name: "session", Value: token}
}

func TestCurrentSessionHandler(t *testing.T) {
	user := &db.User{ID: "user123", Email: "test@example.com", Role: db.RoleUser}
	session := &db.Session{ID: "sess123", UserID: user.ID, Expires: time.Now().Add(time.Hour)}

	t.Run("valid session", func(t *testing.T) {
		mockDb := &mock.Db{}
		app := newTestApp(mockDb)
		cookie := sessionCookieFor(t, mockDb, user, session)

		req := httptest.NewRequest("GET", "/api/current-session", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()

		app.CurrentSessionHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response body: %v", err)
		}
		if body["code"] != CodeOkCurrentSession {
			t.Errorf("expected code %q, got %v", CodeOkCurrentSession, body["code"])
		}
		record := body["data"].(map[string]interface{})["record"].(map[string]interface{})
		if record["id"] != user.ID {
			t.Errorf("expected record id %q, got %v", user.ID, record["id"])
		}
	})

	t.Run("no credential", func(t *testing.T) {
		app := newTestApp(&mock.Db{})
		req := httptest.NewRequest("GET", "/api/current-session", nil)
		rr := httptest.NewRecorder()

		app.CurrentSessionHandler(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rr.Code)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		mockDb := &mock.Db{}
		app := newTestApp(mockDb)
		revoked := &db.Session{
			ID:      "sess123",
			UserID:  user.ID,
			Expires: time.Now().Add(time.Hour),
			Revoked: true,
		}
		cookie := sessionCookieFor(t, mockDb, user, revoked)

		req := httptest.NewRequest("GET", "/api/current-session", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()

		app.CurrentSessionHandler(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401 for revoked session, got %d", rr.Code)
		}
	})
}

func TestLogoutHandler(t *testing.T) {
	user := &db.User{ID: "user123", Email: "test@example.com"}
	session := &db.Session{ID: "sess123", UserID: user.ID, Expires: time.Now().Add(time.Hour)}

	t.Run("revokes session and clears cookie", func(t *testing.T) {
		mockDb := &mock.Db{}
		revoked := ""
		mockDb.RevokeSessionFunc = func(id string) error {
			revoked = id
			return nil
		}
		app := newTestApp(mockDb)
		cookie := sessionCookieFor(t, mockDb, user, session)

		req := httptest.NewRequest("POST", "/api/logout", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()

		app.LogoutHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		if revoked != session.ID {
			t.Errorf("expected session %q revoked, got %q", session.ID, revoked)
		}

		cleared := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == "session" && c.Value == "" && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("logout must clear the session cookie")
		}
	})

	t.Run("idempotent without credential", func(t *testing.T) {
		app := newTestApp(&mock.Db{})
		req := httptest.NewRequest("POST", "/api/logout", nil)
		rr := httptest.NewRecorder()

		app.LogoutHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("logout without a session must succeed, got %d", rr.Code)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response body: %v", err)
		}
		if body["code"] != CodeOkLogout {
			t.Errorf("expected code %q, got %v", CodeOkLogout, body["code"])
		}
	})
}
