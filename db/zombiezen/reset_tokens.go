package zombiezen

import (
	"context"
	"fmt"

	"github.com/folio-sh/folio/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func (d *Db) CreateResetToken(token db.ResetToken) error {
	if token.Token == "" || token.UserID == "" || token.Expires.IsZero() {
		return db.ErrMissingFields
	}

	conn, err := d.take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO reset_tokens (token, user_id, expires) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				token.Token,
				token.UserID,
				db.TimeString(token.Expires),
			},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return db.ErrConstraintUnique
		}
		return err
	}

	return nil
}

// ConsumeResetToken redeems a token. The consumed flag is set by a single
// conditional UPDATE so of two concurrent redemptions exactly one sees the
// row; the loser gets db.ErrTokenInvalid, indistinguishable from an
// unknown or expired token.
func (d *Db) ConsumeResetToken(token string) (*db.ResetToken, error) {
	conn, err := d.take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var consumed *db.ResetToken
	err = sqlitex.Execute(conn,
		`UPDATE reset_tokens
		SET consumed = 1
		WHERE token = ?
		  AND consumed = 0
		  AND expires > (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		RETURNING token, user_id, consumed, created, expires`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				created, err := db.TimeParse(stmt.GetText("created"))
				if err != nil {
					return fmt.Errorf("error parsing created time: %w", err)
				}
				expires, err := db.TimeParse(stmt.GetText("expires"))
				if err != nil {
					return fmt.Errorf("error parsing expires time: %w", err)
				}
				consumed = &db.ResetToken{
					Token:    stmt.GetText("token"),
					UserID:   stmt.GetText("user_id"),
					Consumed: stmt.GetInt64("consumed") != 0,
					Created:  created,
					Expires:  expires,
				}
				return nil
			},
			Args: []interface{}{token},
		})
	if err != nil {
		return nil, err
	}
	if consumed == nil {
		return nil, db.ErrTokenInvalid
	}

	return consumed, nil
}
