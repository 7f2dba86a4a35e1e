package folio

import (
	"context"
	"fmt"
	"runtime"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/folio-sh/folio/db/zombiezen"
	"github.com/folio-sh/folio/migrations"
)

// NewZombiezenPool creates a SQLite connection pool with reasonable
// defaults (WAL mode, one connection per CPU). Pass the pool to
// WithZombiezenPool; if the application accesses the database directly
// as well, share this single pool to avoid SQLITE_BUSY errors.
func NewZombiezenPool(dbPath string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", dbPath), sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create zombiezen pool at %s: %w", dbPath, err)
	}
	return pool, nil
}

// MigrateSchema applies the embedded schema migrations using a
// connection from the pool. Safe to run on every start; applied
// migrations are skipped.
func MigrateSchema(ctx context.Context, pool *sqlitex.Pool) error {
	conn, err := pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection for migrations: %w", err)
	}
	defer pool.Put(conn)

	if err := zombiezen.ApplyMigrations(conn, migrations.Schema()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
