package main

import (
	"fmt"
	"io"
	"os"

	folio "github.com/folio-sh/folio"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/zombiezen"
)

func handleSetRole(dbPath string, args []string, admin bool, output io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one argument: the user's email")
	}
	email := args[0]

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrDBNotFound, dbPath)
	}

	pool, err := folio.NewZombiezenPool(dbPath)
	if err != nil {
		return err
	}
	defer pool.Close()

	database, err := zombiezen.New(pool)
	if err != nil {
		return err
	}

	user, err := database.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", email)
	}

	role := db.RoleUser
	if admin {
		role = db.RoleAdmin
	}

	if err := database.UpdateRole(user.ID, role); err != nil {
		return err
	}

	fmt.Fprintf(output, "User %s now has role %s\n", email, role)
	return nil
}
