package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	folio "github.com/folio-sh/folio"
	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/core"
)

func main() {
	configPath := flag.String("config", "", "Path to the TOML configuration file (defaults apply when omitted)")
	dbPath := flag.String("dbpath", "app.db", "Path to the SQLite database file")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if err := run(*configPath, *dbPath, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dbPath string, verbose bool) error {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		logOpts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, logOpts))

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath, logger)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.NewDefaultConfig()
	}
	cfg.DBFile = dbPath

	logOpts.Level = cfg.Log.Level.Level
	if verbose {
		logOpts.Level = slog.LevelDebug
	}

	pool, err := folio.NewZombiezenPool(cfg.DBFile)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := folio.MigrateSchema(context.Background(), pool); err != nil {
		return err
	}

	dbOpt, err := folio.WithZombiezenPool(pool)
	if err != nil {
		return err
	}
	cacheOpt, err := folio.WithCacheRistretto()
	if err != nil {
		return err
	}
	notifierOpt, err := folio.WithDiscordNotifier(cfg.Notifier.Discord, logger)
	if err != nil {
		return err
	}

	opts := []core.Option{
		dbOpt,
		cacheOpt,
		notifierOpt,
		folio.WithRouterHttprouter(),
		folio.WithPhusLogger(logOpts),
	}

	_, srv, err := folio.New(cfg, opts...)
	if err != nil {
		return err
	}

	return srv.Run()
}
