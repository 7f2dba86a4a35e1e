package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/folio-sh/folio/db"
	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const userColumns = `id, email, name, password, avatar, provider, role, preferences, created, updated`

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.User{
		ID:          stmt.GetText("id"),
		Email:       stmt.GetText("email"),
		Name:        stmt.GetText("name"),
		Password:    stmt.GetText("password"),
		Avatar:      stmt.GetText("avatar"),
		Provider:    stmt.GetText("provider"),
		Role:        stmt.GetText("role"),
		Preferences: json.RawMessage(stmt.GetText("preferences")),
		Created:     created,
		Updated:     updated,
	}, nil
}

// GetUserByEmail retrieves a user by email address.
// Returns:
// - *db.User: User record if found, nil if no matching record exists
// - returned time fields are in UTC, RFC3339
// - error: Only returned for database errors, nil on successful query (even if no results)
// Note: A nil user with nil error indicates no matching record was found
func (d *Db) GetUserByEmail(email string) (*db.User, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User // Will remain nil if no rows found
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{strings.ToLower(email)},
		})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (d *Db) GetUserById(id string) (*db.User, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// CreateUserWithPassword inserts a password authenticated user. Email is
// stored lowercased; the unique index on email makes a duplicate
// registration fail with db.ErrConstraintUnique without touching the
// existing record.
func (d *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = db.RoleUser
	}
	prefs := user.Preferences
	if len(prefs) == 0 {
		prefs = json.RawMessage(`{}`)
	}

	var createdUser *db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, name, password, avatar, provider, role, preferences)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				createdUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				user.ID,
				strings.ToLower(user.Email),
				user.Name,
				user.Password,
				user.Avatar,
				db.ProviderEmail,
				user.Role,
				string(prefs),
			},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return nil, db.ErrConstraintUnique
		}
		return nil, err
	}

	return createdUser, nil
}

// CreateUserWithOauth2 inserts an externally authenticated user, or links
// the provider to an existing account with the same email. On conflict only
// the profile fields the provider owns (name, avatar, provider) are
// refreshed; password, role and preferences are never overwritten.
func (d *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = db.RoleUser
	}
	prefs := user.Preferences
	if len(prefs) == 0 {
		prefs = json.RawMessage(`{}`)
	}

	var createdUser *db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, name, password, avatar, provider, role, preferences)
		VALUES (?, ?, ?, '', ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			avatar = excluded.avatar,
			provider = excluded.provider,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				createdUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				user.ID,
				strings.ToLower(user.Email),
				user.Name,
				user.Avatar,
				user.Provider,
				user.Role,
				string(prefs),
			},
		})
	if err != nil {
		return nil, err
	}

	return createdUser, nil
}

func (d *Db) UpdatePassword(userId string, newPassword string) error {
	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET password = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{newPassword, userId},
		})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrUserNotFound
	}

	return nil
}

func (d *Db) UpdateRole(userId string, role string) error {
	if role != db.RoleUser && role != db.RoleAdmin {
		return fmt.Errorf("%w: role %q", db.ErrMissingFields, role)
	}

	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET role = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{role, userId},
		})
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrUserNotFound
	}

	return nil
}

// UpdatePreferences merges the given JSON object into the stored bag using
// sqlite's json_patch, so the read-merge-write is a single statement.
func (d *Db) UpdatePreferences(userId string, prefs []byte) (*db.User, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var updatedUser *db.User
	err = sqlitex.Execute(conn,
		`UPDATE users
		SET preferences = json_patch(preferences, ?),
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				updatedUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{string(prefs), userId},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	if updatedUser == nil {
		return nil, db.ErrUserNotFound
	}

	return updatedUser, nil
}

func (d *Db) ListUsers() ([]*db.User, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var users []*db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users ORDER BY created DESC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				user, err := newUserFromStmt(stmt)
				if err != nil {
					return err
				}
				users = append(users, user)
				return nil
			},
		})
	if err != nil {
		return nil, err
	}

	return users, nil
}
