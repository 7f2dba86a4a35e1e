package folio

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/core"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRequiresDatabase(t *testing.T) {
	_, _, err := New(config.NewDefaultConfig(),
		WithRouterServeMux(),
		core.WithLogger(newTestLogger()),
	)
	if err == nil {
		t.Fatal("expected error when no database option is given")
	}
}

func TestNewAssemblesAppAndServer(t *testing.T) {
	cfg := config.NewDefaultConfig()

	cacheOpt, err := WithCacheRistretto()
	if err != nil {
		t.Fatalf("WithCacheRistretto() error = %v", err)
	}

	app, srv, err := New(cfg,
		core.WithDbApp(&mock.Db{}),
		WithRouterServeMux(),
		cacheOpt,
		core.WithLogger(newTestLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if app == nil || srv == nil {
		t.Fatal("expected a non-nil app and server")
	}
}

func TestRouteTable(t *testing.T) {
	cfg := config.NewDefaultConfig()

	cacheOpt, err := WithCacheRistretto()
	if err != nil {
		t.Fatalf("WithCacheRistretto() error = %v", err)
	}

	app, _, err := New(cfg,
		core.WithDbApp(&mock.Db{}),
		WithRouterServeMux(),
		cacheOpt,
		core.WithLogger(newTestLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"status endpoint is public", http.MethodGet, "/api/status", http.StatusOK},
		{"current session without credential", http.MethodGet, "/api/current-session", http.StatusUnauthorized},
		{"preferences require auth", http.MethodPut, "/api/preferences", http.StatusUnauthorized},
		{"admin users require auth", http.MethodGet, "/api/admin/users", http.StatusUnauthorized},
		{"admin contacts require auth", http.MethodGet, "/api/admin/contacts", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			app.Router().ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestScheduleBackupsTolerateDuplicates(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.BackupLocal.Enabled = true

	mockDb := &mock.Db{
		InsertJobFunc: func(job db.Job) error {
			return db.ErrConstraintUnique
		},
	}

	if err := scheduleBackups(cfg, mockDb, newTestLogger()); err != nil {
		t.Fatalf("an already scheduled backup must not be an error, got %v", err)
	}
}
