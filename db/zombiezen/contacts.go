package zombiezen

import (
	"context"
	"fmt"

	"github.com/folio-sh/folio/db"
	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func newContactFromStmt(stmt *sqlite.Stmt) (*db.ContactMessage, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	return &db.ContactMessage{
		ID:      stmt.GetText("id"),
		Name:    stmt.GetText("name"),
		Email:   stmt.GetText("email"),
		Phone:   stmt.GetText("phone"),
		Subject: stmt.GetText("subject"),
		Message: stmt.GetText("message"),
		Read:    stmt.GetInt64("read") != 0,
		Created: created,
	}, nil
}

func (d *Db) InsertContact(msg db.ContactMessage) (*db.ContactMessage, error) {
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return nil, db.ErrMissingFields
	}

	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	var created *db.ContactMessage
	err = sqlitex.Execute(conn,
		`INSERT INTO contacts (id, name, email, phone, subject, message)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, name, email, phone, subject, message, read, created`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				created, err = newContactFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				msg.ID,
				msg.Name,
				msg.Email,
				msg.Phone,
				msg.Subject,
				msg.Message,
			},
		})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (d *Db) GetContact(id string) (*db.ContactMessage, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var msg *db.ContactMessage
	err = sqlitex.Execute(conn,
		`SELECT id, name, email, phone, subject, message, read, created
		FROM contacts WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				msg, err = newContactFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

func (d *Db) ListContacts() ([]*db.ContactMessage, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var msgs []*db.ContactMessage
	err = sqlitex.Execute(conn,
		`SELECT id, name, email, phone, subject, message, read, created
		FROM contacts ORDER BY created DESC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				msg, err := newContactFromStmt(stmt)
				if err != nil {
					return err
				}
				msgs = append(msgs, msg)
				return nil
			},
		})
	if err != nil {
		return nil, err
	}

	return msgs, nil
}

func (d *Db) SetContactRead(id string, read bool) error {
	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE contacts SET read = ? WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{read, id},
		})
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}

	return nil
}

func (d *Db) DeleteContact(id string) error {
	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM contacts WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{id},
		})
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}

	return nil
}
