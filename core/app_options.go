package core

import (
	"log/slog"

	"github.com/folio-sh/folio/cache"
	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/notify"
	"github.com/folio-sh/folio/oauth2"
	"github.com/folio-sh/folio/router"
)

type Option func(*App)

// WithCache sets the cache implementation.
func WithCache(c cache.Cache[string, interface{}]) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithDbApp sets the database backing all storage interfaces.
func WithDbApp(d db.DbApp) Option {
	return func(a *App) {
		a.SetDb(d)
	}
}

// WithRouter sets the router implementation.
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithNotifier sets the notifier implementation.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithExchangeClient sets the hosted login verification client.
func WithExchangeClient(c *oauth2.ExchangeClient) Option {
	return func(a *App) {
		a.exchange = c
	}
}
