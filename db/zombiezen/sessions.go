package zombiezen

import (
	"context"
	"fmt"

	"github.com/folio-sh/folio/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func newSessionFromStmt(stmt *sqlite.Stmt) (*db.Session, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	expires, err := db.TimeParse(stmt.GetText("expires"))
	if err != nil {
		return nil, fmt.Errorf("error parsing expires time: %w", err)
	}

	return &db.Session{
		ID:       stmt.GetText("id"),
		UserID:   stmt.GetText("user_id"),
		Remember: stmt.GetInt64("remember") != 0,
		Revoked:  stmt.GetInt64("revoked") != 0,
		Created:  created,
		Expires:  expires,
	}, nil
}

func (d *Db) CreateSession(session db.Session) (*db.Session, error) {
	if session.ID == "" || session.UserID == "" || session.Expires.IsZero() {
		return nil, db.ErrMissingFields
	}

	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var created *db.Session
	err = sqlitex.Execute(conn,
		`INSERT INTO sessions (id, user_id, remember, expires)
		VALUES (?, ?, ?, ?)
		RETURNING id, user_id, remember, revoked, created, expires`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				created, err = newSessionFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				session.ID,
				session.UserID,
				session.Remember,
				db.TimeString(session.Expires),
			},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return nil, db.ErrConstraintUnique
		}
		return nil, err
	}

	return created, nil
}

func (d *Db) GetSessionById(id string) (*db.Session, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var session *db.Session
	err = sqlitex.Execute(conn,
		`SELECT id, user_id, remember, revoked, created, expires
		FROM sessions WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				session, err = newSessionFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// RevokeSession marks a session revoked. Idempotent: revoking an unknown
// or already revoked session succeeds.
func (d *Db) RevokeSession(id string) error {
	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE sessions SET revoked = 1 WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{id},
		})
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// RevokeSessionsForUser revokes every session owned by the user. Called on
// password reset so a stolen session does not survive the reset.
func (d *Db) RevokeSessionsForUser(userId string) error {
	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE sessions SET revoked = 1 WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{userId},
		})
	if err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	return nil
}
