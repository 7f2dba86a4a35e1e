package handlers

import (
	"compress/gzip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/folio-sh/folio/config"
)

func newBackupHandler(t *testing.T) *BackupLocalHandler {
	t.Helper()
	provider := config.NewProvider(config.NewDefaultConfig())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBackupLocalHandler(provider, logger)
}

func TestCompressFileRoundTrip(t *testing.T) {
	h := newBackupHandler(t)
	dir := t.TempDir()

	source := filepath.Join(dir, "data.db")
	content := []byte("database contents to back up")
	if err := os.WriteFile(source, content, 0o600); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "data.bck.gz")
	if err := h.compressFile(source, dest); err != nil {
		t.Fatalf("compressFile() error = %v", err)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("backup is not valid gzip: %v", err)
	}
	defer gz.Close()

	got, err := io.ReadAll(gz)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("decompressed content differs: got %q, want %q", got, content)
	}
}

func TestPruneOldKeepsNewest(t *testing.T) {
	h := newBackupHandler(t)
	dir := t.TempDir()

	names := []string{
		"app-2024-01-01T00-00-00Z.bck.gz",
		"app-2024-01-02T00-00-00Z.bck.gz",
		"app-2024-01-03T00-00-00Z.bck.gz",
		"app-2024-01-04T00-00-00Z.bck.gz",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files must survive pruning.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := h.pruneOld(dir, "app", 2); err != nil {
		t.Fatalf("pruneOld() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	remaining := make(map[string]bool)
	for _, e := range entries {
		remaining[e.Name()] = true
	}

	for _, want := range []string{names[2], names[3], "notes.txt"} {
		if !remaining[want] {
			t.Errorf("expected %q to survive pruning", want)
		}
	}
	for _, gone := range []string{names[0], names[1]} {
		if remaining[gone] {
			t.Errorf("expected %q to be pruned", gone)
		}
	}
}

func TestPruneOldUnderLimit(t *testing.T) {
	h := newBackupHandler(t)
	dir := t.TempDir()

	name := "app-2024-01-01T00-00-00Z.bck.gz"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := h.pruneOld(dir, "app", 3); err != nil {
		t.Fatalf("pruneOld() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("expected the single backup to remain: %v", err)
	}
}
