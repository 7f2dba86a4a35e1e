package handlers

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/zombiezen"
)

// BackupLocalHandler writes a compressed snapshot of the SQLite
// database into the configured backup directory and prunes old ones.
type BackupLocalHandler struct {
	configProvider *config.Provider
	logger         *slog.Logger
}

func NewBackupLocalHandler(provider *config.Provider, logger *slog.Logger) *BackupLocalHandler {
	if provider == nil || logger == nil {
		panic("NewBackupLocalHandler: received nil provider or logger")
	}
	return &BackupLocalHandler{
		configProvider: provider,
		logger:         logger.With("job_handler", "sqlite_backup"),
	}
}

func (h *BackupLocalHandler) Handle(ctx context.Context, _ db.Job) error {
	cfg := h.configProvider.Get()
	backupCfg := cfg.BackupLocal

	sourceDbPath := cfg.DBFile
	tempBackupPath := filepath.Join(os.TempDir(), fmt.Sprintf("backup-%d.db", time.Now().UnixNano()))

	baseName := filepath.Base(sourceDbPath)
	fileNameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	finalBackupName := fmt.Sprintf("%s-%s.bck.gz", fileNameOnly, timestamp)
	finalBackupPath := filepath.Join(backupCfg.BackupDir, finalBackupName)

	h.logger.Info("starting database backup", "source", sourceDbPath, "destination", finalBackupPath)

	if err := os.MkdirAll(backupCfg.BackupDir, 0o750); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	if err := h.vacuumInto(sourceDbPath, tempBackupPath); err != nil {
		return fmt.Errorf("backup creation failed: %w", err)
	}
	defer func() {
		if err := os.Remove(tempBackupPath); err != nil {
			h.logger.Error("error removing temporary backup file", "error", err)
		}
	}()

	if err := h.compressFile(tempBackupPath, finalBackupPath); err != nil {
		return fmt.Errorf("failed to gzip backup file: %w", err)
	}
	h.logger.Info("successfully compressed backup", "path", finalBackupPath)

	if backupCfg.Keep > 0 {
		if err := h.pruneOld(backupCfg.BackupDir, fileNameOnly, backupCfg.Keep); err != nil {
			h.logger.Error("failed to prune old backups", "error", err)
		}
	}

	return nil
}

// vacuumInto creates a clean, defragmented copy of the database.
func (h *BackupLocalHandler) vacuumInto(sourcePath, destPath string) error {
	sourceConn, err := zombiezen.NewConn(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source db for vacuum: %w", err)
	}
	defer func() {
		if err := sourceConn.Close(); err != nil {
			h.logger.Error("error closing source database connection", "error", err)
		}
	}()

	stmt, err := sourceConn.Prepare(fmt.Sprintf("VACUUM INTO '%s';", destPath))
	if err != nil {
		return fmt.Errorf("failed to prepare vacuum statement: %w", err)
	}
	defer stmt.Finalize()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute vacuum statement: %w", err)
	}
	return nil
}

// compressFile reads a source file, compresses it with gzip, and writes
// it to destPath.
func (h *BackupLocalHandler) compressFile(sourcePath, destPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file for compression: %w", err)
	}
	defer func() {
		if err := sourceFile.Close(); err != nil {
			h.logger.Error("error closing source file", "error", err)
		}
	}()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file for compression: %w", err)
	}
	defer func() {
		if err := destFile.Close(); err != nil {
			h.logger.Error("error closing destination file", "error", err)
		}
	}()

	gzipWriter := gzip.NewWriter(destFile)
	defer func() {
		if err := gzipWriter.Close(); err != nil {
			h.logger.Error("error closing gzip writer", "error", err)
		}
	}()

	if _, err := io.Copy(gzipWriter, sourceFile); err != nil {
		return fmt.Errorf("failed to copy and compress data: %w", err)
	}

	return nil
}

// pruneOld keeps the newest `keep` backups for the given prefix and
// removes the rest.
func (h *BackupLocalHandler) pruneOld(dir, prefix string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix+"-") && strings.HasSuffix(name, ".bck.gz") {
			backups = append(backups, name)
		}
	}

	if len(backups) <= keep {
		return nil
	}

	// Timestamps in the names sort lexicographically.
	sort.Strings(backups)
	for _, name := range backups[:len(backups)-keep] {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			h.logger.Error("failed to remove old backup", "path", path, "error", err)
			continue
		}
		h.logger.Info("removed old backup", "path", path)
	}

	return nil
}
