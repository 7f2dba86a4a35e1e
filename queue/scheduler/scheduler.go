package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/queue/executor"
)

// jobTimeout bounds a single job execution.
const jobTimeout = 10 * time.Minute

// Scheduler periodically claims pending jobs and runs them through the
// executor with bounded concurrency.
type Scheduler struct {
	cfg          config.Scheduler
	db           db.DbQueue
	executor     executor.JobExecutor
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

func NewScheduler(cfg config.Scheduler, dbq db.DbQueue, exec executor.JobExecutor, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:          cfg,
		db:           dbq,
		executor:     exec,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

// Start launches the ticker goroutine.
func (s *Scheduler) Start() {
	go func() {
		s.logger.Info("starting job scheduler", "interval", s.cfg.Interval.Duration)
		ticker := time.NewTicker(s.cfg.Interval.Duration)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("job scheduler received shutdown signal")
				close(s.shutdownDone)
				return
			case <-ticker.C:
				s.processJobs()
			}
		}
	}()
}

// Stop signals the scheduler to stop and waits for the current batch to
// finish or the context to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping job scheduler")
	s.cancel()

	select {
	case <-s.shutdownDone:
		s.logger.Info("job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Info("job scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) processJobs() {
	jobs, err := s.db.Claim(s.cfg.MaxJobsPerTick)
	if err != nil {
		s.logger.Error("failed to claim jobs", "err", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	s.logger.Info("claimed jobs", "count", len(jobs))

	// The scheduler context is the parent so a shutdown cancels the
	// whole batch.
	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(runtime.NumCPU() * s.cfg.ConcurrencyMultiplier)

	var processed atomic.Int64
	for _, job := range jobs {
		jobCopy := job
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			err := s.executeJob(jobCtx, *jobCopy)

			switch {
			case err == nil:
				s.markDone(*jobCopy)
				processed.Add(1)
			case errors.Is(err, context.DeadlineExceeded):
				if updateErr := s.db.MarkFailed(jobCopy.ID, "job timeout reached: "+err.Error()); updateErr != nil {
					s.logger.Error("failed to mark job as timed out", "jobID", jobCopy.ID, "err", updateErr)
				}
			case errors.Is(err, context.Canceled):
				if updateErr := s.db.MarkFailed(jobCopy.ID, "scheduler shutting down: "+err.Error()); updateErr != nil {
					s.logger.Error("failed to mark job as interrupted", "jobID", jobCopy.ID, "err", updateErr)
				}
				s.logger.Info("job interrupted", "jobID", jobCopy.ID)
			default:
				if updateErr := s.db.MarkFailed(jobCopy.ID, err.Error()); updateErr != nil {
					s.logger.Error("failed to mark job as failed", "jobID", jobCopy.ID, "err", updateErr)
				}
			}

			return err
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("job batch interrupted due to scheduler shutdown")
		} else {
			s.logger.Error("error executing batch jobs", "err", err)
		}
	}

	s.logger.Info("finished processing claimed jobs", "success", processed.Load(), "total", len(jobs))
}

func (s *Scheduler) executeJob(ctx context.Context, job db.Job) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.Info("starting job execution",
		"job_id", job.ID,
		"job_type", job.JobType,
		"attempt", job.Attempts)

	return s.executor.Execute(ctx, job)
}

// markDone completes the job. Recurrent jobs schedule their next run in
// the same transaction.
func (s *Scheduler) markDone(job db.Job) {
	if job.Recurrent {
		next := db.Job{
			JobType:      job.JobType,
			Payload:      job.Payload,
			PayloadExtra: job.PayloadExtra,
			Status:       db.StatusPending,
			MaxAttempts:  job.MaxAttempts,
			Recurrent:    true,
			Interval:     job.Interval,
			ScheduledFor: time.Now().Add(job.Interval),
		}
		if err := s.db.MarkRecurrentCompleted(job.ID, next); err != nil {
			s.logger.Error("failed to complete recurrent job", "jobID", job.ID, "err", err)
		}
		return
	}

	if err := s.db.MarkCompleted(job.ID); err != nil {
		s.logger.Error("failed to mark job as completed", "jobID", job.ID, "err", err)
	}
}
