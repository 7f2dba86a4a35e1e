package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/folio-sh/folio/cache/ristretto"
	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/mock"
	"github.com/folio-sh/folio/oauth2"
)

// newExchangeTestApp wires an app against a fake hosted login provider.
func newExchangeTestApp(t *testing.T, mockDb *mock.Db, provider http.HandlerFunc) *App {
	t.Helper()

	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	app := newTestApp(mockDb)
	cfg := app.Config()
	cfg.SessionExchange = config.SessionExchange{
		Enabled:   true,
		Name:      "hosted",
		VerifyURL: srv.URL,
		Timeout:   config.Duration{Duration: 5 * time.Second},
		MarkerTTL: config.Duration{Duration: time.Minute},
	}
	app.SetConfigProvider(config.NewProvider(cfg))
	app.SetExchangeClient(oauth2.NewExchangeClient(5 * time.Second))
	app.SetCache(newMemoryCache())
	return app
}

func exchangeRequest(sessionID string) *http.Request {
	req := httptest.NewRequest("POST", "/api/oauth-session",
		strings.NewReader(`{"session_id":"`+sessionID+`"}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthWithSessionExchangeHandler_Success(t *testing.T) {
	var sessionsCreated atomic.Int32

	mockDb := &mock.Db{
		CreateUserWithOauth2Func: func(user db.User) (*db.User, error) {
			user.ID = "hosted-user-id"
			return &user, nil
		},
		CreateSessionFunc: func(session db.Session) (*db.Session, error) {
			sessionsCreated.Add(1)
			return &session, nil
		},
	}

	app := newExchangeTestApp(t, mockDb, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(oauth2.SessionIDHeader); got != "provider-session-1" {
			t.Errorf("expected session id header %q, got %q", "provider-session-1", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":    "ext-1",
			"email": "hosted@example.com",
			"name":  "Hosted User",
		})
	})

	rr := httptest.NewRecorder()
	app.AuthWithSessionExchangeHandler(rr, exchangeRequest("provider-session-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := sessionsCreated.Load(); got != 1 {
		t.Errorf("expected 1 session created, got %d", got)
	}

	gotCookie := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			gotCookie = true
		}
	}
	if !gotCookie {
		t.Error("exchange must set the session cookie")
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	record := body["data"].(map[string]interface{})["record"].(map[string]interface{})
	if record["provider"] != db.ProviderSessionExchange {
		t.Errorf("expected provider %q, got %v", db.ProviderSessionExchange, record["provider"])
	}
}

// TestAuthWithSessionExchangeHandler_Idempotent verifies that invoking
// the exchange twice for the same provider session id creates exactly
// one local session; the second call replays the first result.
func TestAuthWithSessionExchangeHandler_Idempotent(t *testing.T) {
	var sessionsCreated atomic.Int32
	var verifyCalls atomic.Int32

	mockDb := &mock.Db{
		CreateUserWithOauth2Func: func(user db.User) (*db.User, error) {
			user.ID = "hosted-user-id"
			return &user, nil
		},
		CreateSessionFunc: func(session db.Session) (*db.Session, error) {
			sessionsCreated.Add(1)
			return &session, nil
		},
	}

	app := newExchangeTestApp(t, mockDb, func(w http.ResponseWriter, r *http.Request) {
		verifyCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{
			"id":    "ext-1",
			"email": "hosted@example.com",
			"name":  "Hosted User",
		})
	})

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		app.AuthWithSessionExchangeHandler(rr, exchangeRequest("provider-session-dup"))
		if rr.Code != http.StatusOK {
			t.Fatalf("call %d: expected status 200, got %d", i+1, rr.Code)
		}
	}

	if got := sessionsCreated.Load(); got != 1 {
		t.Errorf("expected exactly 1 session across duplicate calls, got %d", got)
	}
	if got := verifyCalls.Load(); got != 1 {
		t.Errorf("expected exactly 1 provider verification, got %d", got)
	}
}

// TestAuthWithSessionExchangeHandler_IdempotentRistretto runs the
// duplicate-callback scenario against the production cache. Ristretto
// applies writes asynchronously, so this covers the Wait call that
// makes the marker visible to a back-to-back second invocation.
func TestAuthWithSessionExchangeHandler_IdempotentRistretto(t *testing.T) {
	var sessionsCreated atomic.Int32
	var verifyCalls atomic.Int32

	mockDb := &mock.Db{
		CreateUserWithOauth2Func: func(user db.User) (*db.User, error) {
			user.ID = "hosted-user-id"
			return &user, nil
		},
		CreateSessionFunc: func(session db.Session) (*db.Session, error) {
			sessionsCreated.Add(1)
			return &session, nil
		},
	}

	app := newExchangeTestApp(t, mockDb, func(w http.ResponseWriter, r *http.Request) {
		verifyCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{
			"id":    "ext-1",
			"email": "hosted@example.com",
			"name":  "Hosted User",
		})
	})

	c, err := ristretto.New[any]()
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	app.SetCache(c)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		app.AuthWithSessionExchangeHandler(rr, exchangeRequest("provider-session-rist"))
		if rr.Code != http.StatusOK {
			t.Fatalf("call %d: expected status 200, got %d", i+1, rr.Code)
		}
	}

	if got := sessionsCreated.Load(); got != 1 {
		t.Errorf("expected exactly 1 session across duplicate calls, got %d", got)
	}
	if got := verifyCalls.Load(); got != 1 {
		t.Errorf("expected exactly 1 provider verification, got %d", got)
	}
}

func TestAuthWithSessionExchangeHandler_Failures(t *testing.T) {
	t.Run("provider rejects session id", func(t *testing.T) {
		created := false
		mockDb := &mock.Db{
			CreateSessionFunc: func(session db.Session) (*db.Session, error) {
				created = true
				return &session, nil
			},
		}
		app := newExchangeTestApp(t, mockDb, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		rr := httptest.NewRecorder()
		app.AuthWithSessionExchangeHandler(rr, exchangeRequest("bad-session"))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rr.Code)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response body: %v", err)
		}
		if body["code"] != CodeErrorOAuth2SessionExchangeFailed {
			t.Errorf("expected code %q, got %v", CodeErrorOAuth2SessionExchangeFailed, body["code"])
		}
		if created {
			t.Error("a rejected session id must not create a local session")
		}
	})

	t.Run("missing session id", func(t *testing.T) {
		app := newExchangeTestApp(t, &mock.Db{}, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("POST", "/api/oauth-session", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		app.AuthWithSessionExchangeHandler(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("exchange disabled", func(t *testing.T) {
		app := newTestApp(&mock.Db{})

		rr := httptest.NewRecorder()
		app.AuthWithSessionExchangeHandler(rr, exchangeRequest("any"))

		var body map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response body: %v", err)
		}
		if body["code"] != CodeErrorInvalidOAuth2Provider {
			t.Errorf("expected code %q, got %v", CodeErrorInvalidOAuth2Provider, body["code"])
		}
	})

	t.Run("session id from header fallback", func(t *testing.T) {
		mockDb := &mock.Db{
			CreateUserWithOauth2Func: func(user db.User) (*db.User, error) {
				user.ID = "hosted-user-id"
				return &user, nil
			},
		}
		app := newExchangeTestApp(t, mockDb, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{
				"id":    "ext-1",
				"email": "hosted@example.com",
			})
		})

		req := httptest.NewRequest("POST", "/api/oauth-session", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(oauth2.SessionIDHeader, "header-session-1")
		rr := httptest.NewRecorder()

		app.AuthWithSessionExchangeHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})
}
