package queue

import (
	"time"
)

// Job types
const (
	JobTypePasswordReset = "job_type_password_reset"
	JobTypeContactEmail  = "job_type_contact_email"
	JobTypeBackupLocal   = "job_type_backup_local"
)

// PayloadPasswordReset is the unique payload part of a reset job. The
// cooldown bucket makes the pending-payload unique constraint act as a
// per-user rate limit.
type PayloadPasswordReset struct {
	UserID string `json:"user_id"`
	// CooldownBucket is floor(request Unix time / cooldown duration).
	// All requests inside the same window produce the same bucket, so
	// the unique index on (job_type, payload) admits only one pending
	// reset job per user and window.
	CooldownBucket int `json:"cooldown_bucket"`
}

// PayloadPasswordResetExtra carries the non-unique part.
type PayloadPasswordResetExtra struct {
	Email string `json:"email"`
}

// PayloadContactEmail identifies the stored contact message to forward.
type PayloadContactEmail struct {
	MessageID string `json:"message_id"`
}

// CoolDownBucket returns the number of complete duration periods since
// the Unix epoch for t. Requests within the same period share a bucket,
// which is what the queue's unique pending constraint keys on.
// Panics if duration is not positive.
func CoolDownBucket(duration time.Duration, t time.Time) int {
	if duration <= 0 {
		panic("duration must be positive")
	}

	return int(t.Unix() / int64(duration.Seconds()))
}
