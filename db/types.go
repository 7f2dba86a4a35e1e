package db

import (
	"encoding/json"
	"time"
)

// User roles. Role checks must go through User.IsAdmin so the enumeration
// stays closed; handlers never compare role strings directly.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Authentication providers. ProviderEmail means password authentication;
// anything else is an external identity provider.
const (
	ProviderEmail           = "email"
	ProviderGoogle          = "google"
	ProviderGitHub          = "github"
	ProviderSessionExchange = "hosted"
)

// User represents a user from the database.
// Timestamps (Created and Updated) use RFC3339 format in UTC timezone.
// Example: "2024-03-07T15:04:05Z"
type User struct {
	ID    string
	Email string
	Name  string
	// Non empty Password means password authentication is active.
	// Password is empty for users created through an external provider
	// that never set a local password.
	Password    string
	Avatar      string
	Provider    string
	Role        string
	Preferences json.RawMessage
	Created     time.Time
	Updated     time.Time
}

// IsAdmin reports whether the user holds the admin role. A nil user is
// never an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasPassword reports whether password authentication is active for the user.
func (u *User) HasPassword() bool {
	return u != nil && u.Password != ""
}

// Session is a server side record of a prior authentication. The client
// holds only the opaque token referencing it; all lifecycle state
// (expiry, revocation) lives here.
type Session struct {
	ID       string
	UserID   string
	Remember bool
	Created  time.Time
	Expires  time.Time
	Revoked  bool
}

// Valid reports whether the session can still authenticate requests at
// the given instant.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && !s.Revoked && now.Before(s.Expires)
}

// ResetToken is a single use password reset credential. Consumed is set
// atomically the moment the token is redeemed; a second redemption of the
// same token must fail.
type ResetToken struct {
	Token    string
	UserID   string
	Consumed bool
	Created  time.Time
	Expires  time.Time
}

// ContactMessage is a contact form submission. Visibility of stored
// messages is admin only.
type ContactMessage struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Read    bool
	Created time.Time
}

// Job represents a job in the processing queue
type Job struct {
	ID           int64           `json:"id"`
	JobType      string          `json:"job_type"`
	Payload      json.RawMessage `json:"payload"`       // Unique payload part
	PayloadExtra json.RawMessage `json:"payload_extra"` // Non-unique payload part
	Status       string          `json:"status"`
	Attempts     int             `json:"attempts"`
	MaxAttempts  int             `json:"max_attempts"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ScheduledFor time.Time       `json:"scheduled_for"`
	LockedAt     time.Time       `json:"locked_at,omitempty"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	Recurrent    bool            `json:"recurrent"`
	Interval     time.Duration   `json:"interval"`
}

// Job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
