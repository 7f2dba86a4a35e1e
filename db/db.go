package db

// DbAuth is the storage boundary of the authentication flow. All user,
// session and reset token mutation goes through this interface; no other
// component writes to those tables directly.
type DbAuth interface {
	// GetUserByEmail returns the user with the given email (matched case
	// insensitively) or nil if no such user exists. A nil user with nil
	// error is not an error condition.
	GetUserByEmail(email string) (*User, error)
	GetUserById(id string) (*User, error)

	// CreateUserWithPassword inserts a new password authenticated user.
	// Returns ErrConstraintUnique if the email is already registered;
	// the existing record is left untouched in that case.
	CreateUserWithPassword(user User) (*User, error)

	// CreateUserWithOauth2 inserts a new externally authenticated user,
	// or links the provider to an existing user with the same email.
	// Linking never overwrites an existing password hash or role.
	CreateUserWithOauth2(user User) (*User, error)

	UpdatePassword(userId string, newPassword string) error
	// UpdateRole sets the user's role. Returns ErrUserNotFound if the
	// user no longer exists.
	UpdateRole(userId string, role string) error
	// UpdatePreferences merges the given JSON object into the user's
	// preference bag. Keys absent from prefs are preserved.
	UpdatePreferences(userId string, prefs []byte) (*User, error)
	ListUsers() ([]*User, error)

	CreateSession(session Session) (*Session, error)
	GetSessionById(id string) (*Session, error)
	// RevokeSession marks the session revoked. Revoking an unknown or
	// already revoked session is not an error.
	RevokeSession(id string) error
	RevokeSessionsForUser(userId string) error

	CreateResetToken(token ResetToken) error
	// ConsumeResetToken atomically marks the token consumed and returns
	// it. Returns ErrTokenInvalid if the token is unknown, expired or
	// already consumed; the check and the flag set are a single
	// conditional write so a concurrent redemption loses cleanly.
	ConsumeResetToken(token string) (*ResetToken, error)
}

// DbContact persists contact form submissions reviewed in the admin panel.
type DbContact interface {
	InsertContact(msg ContactMessage) (*ContactMessage, error)
	// GetContact returns nil without error when no such message exists.
	GetContact(id string) (*ContactMessage, error)
	ListContacts() ([]*ContactMessage, error)
	// SetContactRead returns ErrNotFound if no such message exists.
	SetContactRead(id string, read bool) error
	DeleteContact(id string) error
}

// DbQueue is the job queue storage used for email dispatch and recurrent
// maintenance jobs.
type DbQueue interface {
	// InsertJob enqueues a job. Returns ErrConstraintUnique when an
	// identical pending payload already exists, which doubles as the
	// cooldown mechanism for email jobs.
	InsertJob(job Job) error
	Claim(limit int) ([]*Job, error)
	MarkCompleted(jobID int64) error
	MarkFailed(jobID int64, errMsg string) error
	// MarkRecurrentCompleted completes a recurrent job and schedules its
	// next run in one transaction.
	MarkRecurrentCompleted(completedJobID int64, newJob Job) error
}

// DbApp is an interface combining the required DB roles for the application.
// The concrete DB implementation (*zombiezen.Db) must satisfy this interface.
type DbApp interface {
	DbAuth
	DbContact
	DbQueue
}
