package core

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db/mock"
)

// MockValidator implements the Validator interface for testing.
type MockValidator struct {
	ContentTypeFunc func(r *http.Request, allowedType string) (jsonResponse, error)
}

func (m *MockValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	if m.ContentTypeFunc != nil {
		return m.ContentTypeFunc(r, allowedType)
	}
	return jsonResponse{}, nil
}

// memoryCache is a minimal cache.Cache implementation for tests. TTLs
// are stored but never expired; tests run well inside any TTL.
type memoryCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]interface{})}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *memoryCache) Set(key string, value interface{}, cost int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return true
}

func (c *memoryCache) SetWithTTL(key string, value interface{}, cost int64, ttl time.Duration) bool {
	return c.Set(key, value, cost)
}

func (c *memoryCache) Wait() {}

const testSessionSecret = "test_secret_32_bytes_long_xxxxxx"

func newTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Session.Secret = testSessionSecret
	cfg.Session.CookieName = "session"
	cfg.Session.TokenDuration = config.Duration{Duration: 15 * time.Minute}
	cfg.Session.RememberTokenDuration = config.Duration{Duration: 24 * time.Hour}
	return cfg
}

func newTestApp(mockDb *mock.Db) *App {
	app := &App{
		validator:      &DefaultValidator{},
		configProvider: config.NewProvider(newTestConfig()),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	app.SetDb(mockDb)
	app.SetAuthenticator(NewSessionAuthenticator(mockDb, app.logger, app.configProvider))
	return app
}
