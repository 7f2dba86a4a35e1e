package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/folio-sh/folio/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// validateQueueJob checks for required fields in a job before insertion.
func validateQueueJob(job db.Job) error {
	var missingFields []string
	if job.JobType == "" {
		missingFields = append(missingFields, "JobType")
	}
	if job.Recurrent && job.Interval <= 0 {
		missingFields = append(missingFields, "Interval")
	}
	// PayloadExtra is optional

	if len(missingFields) > 0 {
		return fmt.Errorf("%w: %s", db.ErrMissingFields, strings.Join(missingFields, ", "))
	}
	return nil
}

// newJobFromStmt creates a Job struct from a SQLite statement row.
func newJobFromStmt(stmt *sqlite.Stmt) (*db.Job, error) {
	createdAt, err := db.TimeParse(stmt.GetText("created_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created_at time: %w", err)
	}

	updatedAt, err := db.TimeParse(stmt.GetText("updated_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated_at time: %w", err)
	}

	scheduledFor, err := db.TimeParse(stmt.GetText("scheduled_for"))
	if err != nil {
		return nil, fmt.Errorf("error parsing scheduled_for time: %w", err)
	}

	lockedAt, err := db.TimeParse(stmt.GetText("locked_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing locked_at time: %w", err)
	}

	completedAt, err := db.TimeParse(stmt.GetText("completed_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing completed_at time: %w", err)
	}

	return &db.Job{
		ID:           stmt.GetInt64("id"),
		JobType:      stmt.GetText("job_type"),
		Payload:      json.RawMessage(stmt.GetText("payload")),
		PayloadExtra: json.RawMessage(stmt.GetText("payload_extra")),
		Status:       stmt.GetText("status"),
		Attempts:     int(stmt.GetInt64("attempts")),
		MaxAttempts:  int(stmt.GetInt64("max_attempts")),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		ScheduledFor: scheduledFor,
		LockedAt:     lockedAt,
		CompletedAt:  completedAt,
		LastError:    stmt.GetText("last_error"),
		Recurrent:    stmt.GetInt64("recurrent") != 0,
		Interval:     time.Duration(stmt.GetInt64("interval_seconds")) * time.Second,
	}, nil
}

// InsertJob adds a new job to the queue. The partial unique index on
// (job_type, payload) for pending jobs maps a duplicate insertion to
// db.ErrConstraintUnique, which email handlers use as their cooldown.
func (d *Db) InsertJob(job db.Job) error {
	if err := validateQueueJob(job); err != nil {
		return err
	}

	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	payload := job.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	payloadExtra := job.PayloadExtra
	if len(payloadExtra) == 0 {
		payloadExtra = json.RawMessage(`{}`)
	}
	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	scheduledFor := job.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = time.Now().UTC()
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO jobs (job_type, payload, payload_extra, status, max_attempts, scheduled_for, recurrent, interval_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				job.JobType,
				string(payload),
				string(payloadExtra),
				db.StatusPending,
				maxAttempts,
				db.TimeString(scheduledFor),
				job.Recurrent,
				int64(job.Interval.Seconds()),
			},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// Claim atomically selects up to limit due pending jobs and marks them
// processing. The select and update run inside one transaction; with
// sqlite's single writer this is sufficient to hand each job to exactly
// one executor.
func (d *Db) Claim(limit int) ([]*db.Job, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer endFn(&err)

	var jobs []*db.Job
	err = sqlitex.Execute(conn,
		`UPDATE jobs
		SET status = ?,
			attempts = attempts + 1,
			locked_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = ?
			  AND scheduled_for <= (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
			  AND attempts < max_attempts
			ORDER BY scheduled_for
			LIMIT ?
		)
		RETURNING id, job_type, payload, payload_extra, status, attempts, max_attempts,
			created_at, updated_at, scheduled_for, locked_at, completed_at, last_error,
			recurrent, interval_seconds`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				job, err := newJobFromStmt(stmt)
				if err != nil {
					return err
				}
				jobs = append(jobs, job)
				return nil
			},
			Args: []interface{}{db.StatusProcessing, db.StatusPending, limit},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}

	return jobs, nil
}

func (d *Db) MarkCompleted(jobID int64) error {
	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE jobs
		SET status = ?,
			completed_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{db.StatusCompleted, jobID},
		})
	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	return nil
}

// MarkFailed records the error. Jobs with remaining attempts are returned
// to pending for the next scheduler tick.
func (d *Db) MarkFailed(jobID int64, errMsg string) error {
	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE jobs
		SET status = IIF(attempts < max_attempts, ?, ?),
			last_error = ?,
			updated_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{db.StatusPending, db.StatusFailed, errMsg, jobID},
		})
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	return nil
}

// MarkRecurrentCompleted completes a recurrent job and inserts its next
// occurrence inside one transaction, so a crash between the two cannot
// drop the schedule.
func (d *Db) MarkRecurrentCompleted(completedJobID int64, newJob db.Job) error {
	if err := validateQueueJob(newJob); err != nil {
		return err
	}

	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer endFn(&err)

	err = sqlitex.Execute(conn,
		`UPDATE jobs
		SET status = ?,
			completed_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{db.StatusCompleted, completedJobID},
		})
	if err != nil {
		return fmt.Errorf("failed to complete recurrent job: %w", err)
	}

	payload := newJob.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	payloadExtra := newJob.PayloadExtra
	if len(payloadExtra) == 0 {
		payloadExtra = json.RawMessage(`{}`)
	}
	maxAttempts := newJob.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	scheduledFor := newJob.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = time.Now().UTC().Add(newJob.Interval)
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO jobs (job_type, payload, payload_extra, status, max_attempts, scheduled_for, recurrent, interval_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				newJob.JobType,
				string(payload),
				string(payloadExtra),
				db.StatusPending,
				maxAttempts,
				db.TimeString(scheduledFor),
				newJob.Recurrent,
				int64(newJob.Interval.Seconds()),
			},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to schedule next recurrent job: %w", err)
	}

	return nil
}
