package core

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/folio-sh/folio/cache"
	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/notify"
	"github.com/folio-sh/folio/oauth2"
	"github.com/folio-sh/folio/router"
)

// App is the application wide context.
// db connections and permanent structs should go here.
//
// All handlers and middleware have App as receiver, so everything a
// request needs hangs off one struct.
type App struct {
	dbAuth         db.DbAuth
	dbContact      db.DbContact
	dbQueue        db.DbQueue
	router         router.Router
	cache          cache.Cache[string, interface{}]
	configProvider *config.Provider
	logger         *slog.Logger
	notifier       notify.Notifier
	authenticator  Authenticator
	validator      Validator
	exchange       *oauth2.ExchangeClient

	// exchangeGroup deduplicates concurrent session exchange calls for
	// the same provider session id.
	exchangeGroup singleflight.Group
}

func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.dbAuth == nil || a.dbQueue == nil || a.dbContact == nil {
		return nil, fmt.Errorf("database is required but was not provided (use WithDbApp)")
	}
	if a.configProvider == nil {
		return nil, fmt.Errorf("config provider is required (use WithConfigProvider)")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("logger is required (use WithLogger)")
	}

	if a.validator == nil {
		a.validator = NewValidator()
	}
	if a.authenticator == nil {
		a.authenticator = NewSessionAuthenticator(a.dbAuth, a.logger, a.configProvider)
	}

	return a, nil
}

func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) DbAuth() db.DbAuth {
	return a.dbAuth
}

func (a *App) DbContact() db.DbContact {
	return a.dbContact
}

func (a *App) DbQueue() db.DbQueue {
	return a.dbQueue
}

// SetDb sets the database interfaces for auth, contacts and queue.
func (a *App) SetDb(dbApp db.DbApp) {
	if dbApp == nil {
		panic("DbApp cannot be nil")
	}
	a.dbAuth = dbApp
	a.dbContact = dbApp
	a.dbQueue = dbApp
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) SetCache(c cache.Cache[string, interface{}]) {
	a.cache = c
}

func (a *App) Cache() cache.Cache[string, interface{}] {
	return a.cache
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) SetConfigProvider(provider *config.Provider) {
	a.configProvider = provider
}

func (a *App) Notifier() notify.Notifier {
	return a.notifier
}

func (a *App) SetNotifier(n notify.Notifier) {
	a.notifier = n
}

func (a *App) SetAuthenticator(auth Authenticator) {
	a.authenticator = auth
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

func (a *App) SetValidator(v Validator) {
	a.validator = v
}

func (a *App) Validator() Validator {
	return a.validator
}

func (a *App) SetExchangeClient(c *oauth2.ExchangeClient) {
	a.exchange = c
}
