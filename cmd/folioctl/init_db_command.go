package main

import (
	"context"
	"fmt"
	"io"
	"os"

	folio "github.com/folio-sh/folio"
)

func handleInitDB(dbPath string, output io.Writer) error {
	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("%w: %s", ErrDBAlreadyExists, dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking database file %s: %w", dbPath, err)
	}

	pool, err := folio.NewZombiezenPool(dbPath)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := folio.MigrateSchema(context.Background(), pool); err != nil {
		return err
	}

	fmt.Fprintf(output, "Database initialized at %s\n", dbPath)
	return nil
}
