package zombiezen

import (
	"fmt"

	"zombiezen.com/go/sqlite"
)

// NewConn opens a standalone SQLite connection outside the pool. Used
// by the backup job, which needs its own connection for VACUUM INTO.
func NewConn(dbPath string) (*sqlite.Conn, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	conn, err := sqlite.OpenConn(dsn, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	return conn, nil
}
