package mock

import (
	"github.com/folio-sh/folio/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc         func(email string) (*db.User, error)
	GetUserByIdFunc            func(id string) (*db.User, error)
	CreateUserWithPasswordFunc func(user db.User) (*db.User, error)
	CreateUserWithOauth2Func   func(user db.User) (*db.User, error)
	UpdatePasswordFunc         func(userId string, newPassword string) error
	UpdateRoleFunc             func(userId string, role string) error
	UpdatePreferencesFunc      func(userId string, prefs []byte) (*db.User, error)
	ListUsersFunc              func() ([]*db.User, error)

	CreateSessionFunc         func(session db.Session) (*db.Session, error)
	GetSessionByIdFunc        func(id string) (*db.Session, error)
	RevokeSessionFunc         func(id string) error
	RevokeSessionsForUserFunc func(userId string) error

	CreateResetTokenFunc  func(token db.ResetToken) error
	ConsumeResetTokenFunc func(token string) (*db.ResetToken, error)

	// --- Mock DbContact Methods ---
	InsertContactFunc  func(msg db.ContactMessage) (*db.ContactMessage, error)
	GetContactFunc     func(id string) (*db.ContactMessage, error)
	ListContactsFunc   func() ([]*db.ContactMessage, error)
	SetContactReadFunc func(id string, read bool) error
	DeleteContactFunc  func(id string) error

	// --- Mock DbQueue Methods ---
	InsertJobFunc              func(job db.Job) error
	ClaimFunc                  func(limit int) ([]*db.Job, error)
	MarkCompletedFunc          func(jobID int64) error
	MarkFailedFunc             func(jobID int64, errMsg string) error
	MarkRecurrentCompletedFunc func(completedJobID int64, newJob db.Job) error
}

// --- Implement DbAuth ---
func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}

func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	if m.CreateUserWithPasswordFunc != nil {
		return m.CreateUserWithPasswordFunc(user)
	}
	// Default: Return the user passed in, assuming success
	user.ID = "mock-pw-user-id" // Assign a mock ID
	user.Provider = db.ProviderEmail
	user.Role = db.RoleUser
	return &user, nil
}

func (m *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	if m.CreateUserWithOauth2Func != nil {
		return m.CreateUserWithOauth2Func(user)
	}
	// Default: Return the user passed in, assuming success
	user.ID = "mock-oauth-user-id" // Assign a mock ID
	user.Role = db.RoleUser
	return &user, nil
}

func (m *Db) UpdatePassword(userId string, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(userId, newPassword)
	}
	return nil // Default: Success
}

func (m *Db) UpdateRole(userId string, role string) error {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(userId, role)
	}
	return nil // Default: Success
}

func (m *Db) UpdatePreferences(userId string, prefs []byte) (*db.User, error) {
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(userId, prefs)
	}
	return &db.User{ID: userId, Preferences: prefs}, nil
}

func (m *Db) ListUsers() ([]*db.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc()
	}
	return []*db.User{}, nil
}

func (m *Db) CreateSession(session db.Session) (*db.Session, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(session)
	}
	return &session, nil // Default: Success
}

func (m *Db) GetSessionById(id string) (*db.Session, error) {
	if m.GetSessionByIdFunc != nil {
		return m.GetSessionByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) RevokeSession(id string) error {
	if m.RevokeSessionFunc != nil {
		return m.RevokeSessionFunc(id)
	}
	return nil // Default: Success
}

func (m *Db) RevokeSessionsForUser(userId string) error {
	if m.RevokeSessionsForUserFunc != nil {
		return m.RevokeSessionsForUserFunc(userId)
	}
	return nil // Default: Success
}

func (m *Db) CreateResetToken(token db.ResetToken) error {
	if m.CreateResetTokenFunc != nil {
		return m.CreateResetTokenFunc(token)
	}
	return nil // Default: Success
}

func (m *Db) ConsumeResetToken(token string) (*db.ResetToken, error) {
	if m.ConsumeResetTokenFunc != nil {
		return m.ConsumeResetTokenFunc(token)
	}
	return nil, db.ErrTokenInvalid // Default: Invalid
}

// --- Implement DbContact ---
func (m *Db) InsertContact(msg db.ContactMessage) (*db.ContactMessage, error) {
	if m.InsertContactFunc != nil {
		return m.InsertContactFunc(msg)
	}
	msg.ID = "mock-contact-id"
	return &msg, nil
}

func (m *Db) GetContact(id string) (*db.ContactMessage, error) {
	if m.GetContactFunc != nil {
		return m.GetContactFunc(id)
	}
	return nil, nil
}

func (m *Db) ListContacts() ([]*db.ContactMessage, error) {
	if m.ListContactsFunc != nil {
		return m.ListContactsFunc()
	}
	return []*db.ContactMessage{}, nil
}

func (m *Db) SetContactRead(id string, read bool) error {
	if m.SetContactReadFunc != nil {
		return m.SetContactReadFunc(id, read)
	}
	return nil // Default: Success
}

func (m *Db) DeleteContact(id string) error {
	if m.DeleteContactFunc != nil {
		return m.DeleteContactFunc(id)
	}
	return nil // Default: Success
}

// --- Implement DbQueue ---
func (m *Db) InsertJob(job db.Job) error {
	if m.InsertJobFunc != nil {
		return m.InsertJobFunc(job)
	}
	return nil // Default: Success
}

func (m *Db) Claim(limit int) ([]*db.Job, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(limit)
	}
	return []*db.Job{}, nil // Default: No jobs claimed
}

func (m *Db) MarkCompleted(jobID int64) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(jobID)
	}
	return nil // Default: Success
}

func (m *Db) MarkFailed(jobID int64, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(jobID, errMsg)
	}
	return nil // Default: Success
}

func (m *Db) MarkRecurrentCompleted(completedJobID int64, newJob db.Job) error {
	if m.MarkRecurrentCompletedFunc != nil {
		return m.MarkRecurrentCompletedFunc(completedJobID, newJob)
	}
	return nil // Default: Success
}
