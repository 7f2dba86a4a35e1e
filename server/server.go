package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/queue/scheduler"
	"golang.org/x/sync/errgroup"
)

// Server ties the HTTP listener and the job scheduler to the process
// lifecycle. SIGINT, SIGTERM and SIGQUIT trigger a graceful shutdown;
// SIGHUP reloads the configuration file in place.
type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	scheduler      *scheduler.Scheduler
	logger         *slog.Logger
}

func NewServer(provider *config.Provider, handler http.Handler, sched *scheduler.Scheduler, logger *slog.Logger) *Server {
	return &Server{
		configProvider: provider,
		handler:        handler,
		scheduler:      sched,
		logger:         logger,
	}
}

// Run blocks until shutdown completes. It returns a non-nil error when
// the listener failed or shutdown did not finish within the graceful
// timeout.
func (s *Server) Run() error {
	cfg := s.configProvider.Get().Server

	s.logger.Info("server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	s.scheduler.Start()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	var listenErr error
loop:
	for {
		select {
		case <-reload:
			if err := config.Reload(s.configProvider, s.logger); err != nil {
				s.logger.Error("config reload failed, keeping previous configuration", "err", err)
			}
		case <-ctx.Done():
			s.logger.Info("received shutdown signal")
			break loop
		case listenErr = <-serverError:
			s.logger.Error("listener error, initiating shutdown", "err", listenErr)
			break loop
		}
	}

	stop()

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(),
		cfg.ShutdownGracefulTimeout.Duration)
	defer cancelShutdown()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		s.logger.Info("HTTP server stopped")
		return nil
	})

	shutdownGroup.Go(func() error {
		if err := s.scheduler.Stop(gracefulCtx); err != nil {
			s.logger.Error("scheduler shutdown error", "err", err)
			return err
		}
		s.logger.Info("scheduler stopped")
		return nil
	})

	if err := shutdownGroup.Wait(); err != nil {
		return err
	}
	if listenErr != nil {
		return listenErr
	}

	s.logger.Info("all systems stopped")
	return nil
}
