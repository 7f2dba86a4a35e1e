package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/mock"
)

// TestLoginWithPasswordHandler_Validation tests input validation for the
// password login handler: invalid content type, malformed JSON, missing
// fields and invalid email formats.
func TestLoginWithPasswordHandler_Validation(t *testing.T) {
	testCases := []struct {
		name           string
		contentType    string
		requestBody    string
		wantError      jsonResponse
		setupValidator func(*MockValidator)
	}{
		{
			name:        "invalid content type",
			contentType: "text/plain",
			requestBody: `{"email":"test@example.com", "password":"password123"}`,
			wantError:   errorInvalidContentType,
			setupValidator: func(m *MockValidator) {
				m.ContentTypeFunc = func(r *http.Request, allowedType string) (jsonResponse, error) {
					return errorInvalidContentType, errors.New("invalid content type")
				}
			},
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			requestBody: `{"email":"test@example.com",`,
			wantError:   errorInvalidRequest,
		},
		{
			name:        "missing email field",
			contentType: "application/json",
			requestBody: `{"password":"password123"}`,
			wantError:   errorInvalidRequest,
		},
		{
			name:        "missing password field",
			contentType: "application/json",
			requestBody: `{"email":"test@example.com"}`,
			wantError:   errorInvalidRequest,
		},
		{
			name:        "invalid email format",
			contentType: "application/json",
			requestBody: `{"email":"not-an-email", "password":"password123"}`,
			wantError:   errorInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/login", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", tc.contentType)
			rr := httptest.NewRecorder()

			mockValidator := &MockValidator{}
			if tc.setupValidator != nil {
				tc.setupValidator(mockValidator)
			}

			app := newTestApp(&mock.Db{})
			app.SetValidator(mockValidator)

			app.LoginWithPasswordHandler(rr, req)

			if rr.Code != tc.wantError.status {
				t.Errorf("expected status %d, got %d", tc.wantError.status, rr.Code)
			}

			var gotBody, wantBody map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&gotBody); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if err := json.Unmarshal(tc.wantError.body, &wantBody); err != nil {
				t.Fatalf("failed to decode wantError body: %v", err)
			}

			if gotBody["code"] != wantBody["code"] {
				t.Errorf("expected error code %q, got %q", wantBody["code"], gotBody["code"])
			}
		})
	}
}

// TestLoginWithPasswordHandler_Authentication tests the core login
// logic: success, unknown email and wrong password. The two failure
// cases must produce identical responses.
func TestLoginWithPasswordHandler_Authentication(t *testing.T) {
	hashedPassword, _ := crypto.GenerateHash("password123")
	testUser := &db.User{
		ID:       "user123",
		Email:    "test@example.com",
		Password: hashedPassword,
		Provider: db.ProviderEmail,
		Role:     db.RoleUser,
	}

	testCases := []struct {
		name        string
		requestBody string
		dbSetup     func(*mock.Db)
		wantStatus  int
		wantCode    string
		wantCookie  bool
	}{
		{
			name:        "successful login",
			requestBody: `{"email":"test@example.com", "password":"password123"}`,
			dbSetup: func(m *mock.Db) {
				m.GetUserByEmailFunc = func(email string) (*db.User, error) {
					return testUser, nil
				}
			},
			wantStatus: http.StatusOK,
			wantCode:   CodeOkAuthentication,
			wantCookie: true,
		},
		{
			name:        "unknown email",
			requestBody: `{"email":"notfound@example.com", "password":"password123"}`,
			dbSetup: func(m *mock.Db) {
				m.GetUserByEmailFunc = func(email string) (*db.User, error) {
					return nil, nil
				}
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorInvalidCredentials,
		},
		{
			name:        "incorrect password",
			requestBody: `{"email":"test@example.com", "password":"wrongpassword"}`,
			dbSetup: func(m *mock.Db) {
				m.GetUserByEmailFunc = func(email string) (*db.User, error) {
					return testUser, nil
				}
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorInvalidCredentials,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/login", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			mockDb := &mock.Db{}
			tc.dbSetup(mockDb)

			app := newTestApp(mockDb)
			app.LoginWithPasswordHandler(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}

			var body map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if code, _ := body["code"].(string); code != tc.wantCode {
				t.Errorf("expected code %q, got %q", tc.wantCode, code)
			}

			cookies := rr.Result().Cookies()
			gotCookie := false
			for _, c := range cookies {
				if c.Name == "session" && c.Value != "" {
					gotCookie = true
					if !c.HttpOnly {
						t.Error("session cookie must be HttpOnly")
					}
				}
			}
			if gotCookie != tc.wantCookie {
				t.Errorf("session cookie present = %v, want %v", gotCookie, tc.wantCookie)
			}

			if tc.wantStatus == http.StatusOK {
				data, ok := body["data"].(map[string]interface{})
				if !ok {
					t.Fatal("expected 'data' field in successful response")
				}
				record, ok := data["record"].(map[string]interface{})
				if !ok {
					t.Fatal("expected 'record' field in successful response")
				}
				if record["email"] != testUser.Email {
					t.Errorf("expected record email %q, got %q", testUser.Email, record["email"])
				}
				if _, exists := record["password"]; exists {
					t.Error("response record must not carry a password field")
				}
			}
		})
	}
}

// TestLoginWithPasswordHandler_FailureShape verifies that unknown email
// and wrong password produce byte-identical response bodies.
func TestLoginWithPasswordHandler_FailureShape(t *testing.T) {
	hashedPassword, _ := crypto.GenerateHash("password123")
	testUser := &db.User{ID: "user123", Email: "test@example.com", Password: hashedPassword}

	run := func(body string, dbSetup func(*mock.Db)) string {
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		mockDb := &mock.Db{}
		dbSetup(mockDb)
		app := newTestApp(mockDb)
		app.LoginWithPasswordHandler(rr, req)
		return rr.Body.String()
	}

	unknownBody := run(`{"email":"ghost@example.com", "password":"password123"}`, func(m *mock.Db) {
		m.GetUserByEmailFunc = func(email string) (*db.User, error) { return nil, nil }
	})
	wrongBody := run(`{"email":"test@example.com", "password":"nope-nope"}`, func(m *mock.Db) {
		m.GetUserByEmailFunc = func(email string) (*db.User, error) { return testUser, nil }
	})

	if unknownBody != wrongBody {
		t.Errorf("unknown email and wrong password responses differ:\n%s\n%s", unknownBody, wrongBody)
	}
}

// TestLoginWithPasswordHandler_FailureTiming verifies that the two
// failure paths run comparable work: the unknown-email path must pay a
// real bcrypt compare, not short-circuit, or response latency becomes
// an account enumeration oracle.
func TestLoginWithPasswordHandler_FailureTiming(t *testing.T) {
	hashedPassword, _ := crypto.GenerateHash("password123")
	testUser := &db.User{ID: "user123", Email: "test@example.com", Password: hashedPassword}

	run := func(body string, dbSetup func(*mock.Db)) time.Duration {
		mockDb := &mock.Db{}
		dbSetup(mockDb)
		app := newTestApp(mockDb)

		var total time.Duration
		const rounds = 3
		for i := 0; i < rounds; i++ {
			req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			start := time.Now()
			app.LoginWithPasswordHandler(rr, req)
			total += time.Since(start)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
		}
		return total / rounds
	}

	unknownDur := run(`{"email":"ghost@example.com", "password":"password123"}`, func(m *mock.Db) {
		m.GetUserByEmailFunc = func(email string) (*db.User, error) { return nil, nil }
	})
	wrongDur := run(`{"email":"test@example.com", "password":"nope-nope"}`, func(m *mock.Db) {
		m.GetUserByEmailFunc = func(email string) (*db.User, error) { return testUser, nil }
	})

	// Generous bound; a short-circuit is three orders of magnitude off.
	if unknownDur*10 < wrongDur {
		t.Errorf("unknown email answered in %v, wrong password in %v; latencies must be comparable", unknownDur, wrongDur)
	}
}
