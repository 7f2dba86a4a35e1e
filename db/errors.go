package db

import "errors"

// Sentinel errors returned by the storage layer. Handlers translate these
// into the API error taxonomy; raw driver errors never cross the db
// package boundary.
var (
	// ErrConstraintUnique is returned when an insert violates a unique
	// index (duplicate email, duplicate pending job payload).
	ErrConstraintUnique = errors.New("db: unique constraint violation")

	// ErrUserNotFound is returned by updates targeting a user that no
	// longer exists.
	ErrUserNotFound = errors.New("db: user not found")

	// ErrNotFound is returned by updates or deletes targeting a missing
	// record other than a user.
	ErrNotFound = errors.New("db: record not found")

	// ErrTokenInvalid is returned when a reset token is unknown, expired
	// or already consumed. Callers must not distinguish the three cases.
	ErrTokenInvalid = errors.New("db: invalid or expired token")

	// ErrMissingFields is returned when a record lacks required fields
	// before insertion.
	ErrMissingFields = errors.New("db: missing required fields")
)
