package executor

import (
	"context"
	"fmt"

	"github.com/folio-sh/folio/db"
)

// JobHandler processes a specific type of job.
type JobHandler interface {
	Handle(ctx context.Context, job db.Job) error
}

// JobExecutor dispatches a claimed job to its handler.
type JobExecutor interface {
	Execute(ctx context.Context, job db.Job) error
}

// DefaultExecutor routes jobs by type through a handler registry.
type DefaultExecutor struct {
	registry map[string]JobHandler
}

func NewExecutor(handlers map[string]JobHandler) *DefaultExecutor {
	return &DefaultExecutor{
		registry: handlers,
	}
}

func (e *DefaultExecutor) Register(jobType string, handler JobHandler) {
	e.registry[jobType] = handler
}

func (e *DefaultExecutor) Execute(ctx context.Context, job db.Job) error {
	handler, exists := e.registry[job.JobType]
	if !exists {
		return fmt.Errorf("no handler registered for job type: %s", job.JobType)
	}

	return handler.Handle(ctx, job)
}
