package folio

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/folio-sh/folio/cache/ristretto"
	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/core"
	"github.com/folio-sh/folio/db/zombiezen"
	"github.com/folio-sh/folio/notify/discord"
	"github.com/folio-sh/folio/router/httprouter"
	"github.com/folio-sh/folio/router/servemux"
	phuslog "github.com/phuslu/log"
	"golang.org/x/time/rate"
	"zombiezen.com/go/sqlite/sqlitex"
)

// WithZombiezenPool configures the app to use the zombiezen SQLite
// implementation over an existing pool. The caller owns the pool's
// lifecycle; share a single pool if the application also accesses the
// database directly, otherwise SQLITE_BUSY errors follow.
func WithZombiezenPool(pool *sqlitex.Pool) (core.Option, error) {
	dbInstance, err := zombiezen.New(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize zombiezen db: %w", err)
	}
	return core.WithDbApp(dbInstance), nil
}

func WithRouterServeMux() core.Option {
	return core.WithRouter(servemux.New())
}

func WithRouterHttprouter() core.Option {
	return core.WithRouter(httprouter.New())
}

func WithCacheRistretto() (core.Option, error) {
	c, err := ristretto.New[any]()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ristretto cache: %w", err)
	}
	return core.WithCache(c), nil
}

// WithDiscordNotifier wires alarm notifications to a Discord webhook.
// Returns a no-op option when the webhook is not configured.
func WithDiscordNotifier(cfg config.Discord, logger *slog.Logger) (core.Option, error) {
	if !cfg.Activated || cfg.WebhookURL == "" {
		return func(a *core.App) {}, nil
	}
	n, err := discord.New(discord.Options{
		WebhookURL:   cfg.WebhookURL,
		APIRateLimit: rate.Every(cfg.APIRateLimit.Duration),
		APIBurst:     cfg.APIBurst,
		SendTimeout:  cfg.SendTimeout.Duration,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize discord notifier: %w", err)
	}
	return core.WithNotifier(n), nil
}

// DefaultLoggerOptions provides default settings for slog handlers.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelInfo,
}

// WithPhusLogger configures slog with phuslu/log's JSON handler.
// Uses DefaultLoggerOptions if opts is nil.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	logger := slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts))
	return core.WithLogger(logger)
}

// WithTextLogger configures slog with the standard library's text handler.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	return core.WithLogger(logger)
}
