package folio

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/core"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/mail"
	"github.com/folio-sh/folio/oauth2"
	"github.com/folio-sh/folio/queue"
	"github.com/folio-sh/folio/queue/executor"
	"github.com/folio-sh/folio/queue/handlers"
	scl "github.com/folio-sh/folio/queue/scheduler"
	"github.com/folio-sh/folio/server"
)

// New assembles the application and its server from a loaded
// configuration and the provided options. Callers supply the database,
// router, cache and logger through options; everything else is wired
// here.
func New(cfg *config.Config, opts ...core.Option) (*core.App, *server.Server, error) {
	configProvider := config.NewProvider(cfg)

	allOpts := append([]core.Option{core.WithConfigProvider(configProvider)}, opts...)

	app, err := core.NewApp(allOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	if cfg.SessionExchange.Enabled {
		app.SetExchangeClient(oauth2.NewExchangeClient(cfg.SessionExchange.Timeout.Duration))
	}

	route(app)

	sched, err := setupScheduler(configProvider, app.DbAuth(), app.DbContact(), app.DbQueue(), app.Logger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup scheduler: %w", err)
	}

	if err := scheduleBackups(configProvider.Get(), app.DbQueue(), app.Logger()); err != nil {
		return nil, nil, err
	}

	// The blocking middleware sits in front of the router so abusive
	// clients are rejected before any route matching happens.
	handler := core.NewBlockIp(app).Execute(app.Router())

	srv := server.NewServer(configProvider, handler, sched, app.Logger())

	return app, srv, nil
}

func setupScheduler(provider *config.Provider, dbAuth db.DbAuth, dbContact db.DbContact, dbQueue db.DbQueue, logger *slog.Logger) (*scl.Scheduler, error) {
	hdls := make(map[string]executor.JobHandler)

	cfg := provider.Get()

	// Email jobs only run when SMTP is configured. Without it the jobs
	// stay queued until configuration is fixed and the process reloaded.
	if cfg.Smtp.Enabled {
		mailer, err := mail.New(cfg.Smtp, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create mailer: %w", err)
		}
		hdls[queue.JobTypePasswordReset] = handlers.NewPasswordResetHandler(dbAuth, provider, mailer)
		hdls[queue.JobTypeContactEmail] = handlers.NewContactEmailHandler(dbContact, mailer)
	} else {
		logger.Warn("smtp not configured, email jobs will not be handled")
	}

	if cfg.BackupLocal.Enabled {
		hdls[queue.JobTypeBackupLocal] = handlers.NewBackupLocalHandler(provider, logger)
	}

	return scl.NewScheduler(cfg.Scheduler, dbQueue, executor.NewExecutor(hdls), logger), nil
}

// scheduleBackups inserts the recurrent database backup job. The unique
// pending payload constraint makes this idempotent across restarts.
func scheduleBackups(cfg *config.Config, dbQueue db.DbQueue, logger *slog.Logger) error {
	if !cfg.BackupLocal.Enabled {
		return nil
	}

	job := db.Job{
		JobType:      queue.JobTypeBackupLocal,
		Status:       db.StatusPending,
		MaxAttempts:  3,
		ScheduledFor: time.Now().Add(cfg.BackupLocal.Interval.Duration),
		Recurrent:    true,
		Interval:     cfg.BackupLocal.Interval.Duration,
	}
	if err := dbQueue.InsertJob(job); err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			logger.Debug("backup job already scheduled")
			return nil
		}
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	return nil
}
