package storage

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"

	"github.com/google/uuid"
)

var sqliteHeader = []byte("SQLite format 3\x00")

// BackupFileName is the default name for a snapshot taken at now.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("expenses_backup_%s_%s.db", now.Format("20060102_150405"), uuid.NewString()[:8])
}

// ResolveBackupPath turns a user-chosen destination into a file path. An
// empty dest means fallbackDir; a directory gets a generated file name.
func ResolveBackupPath(dest, fallbackDir string, now time.Time) string {
	if dest == "" {
		dest = fallbackDir
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return filepath.Join(dest, BackupFileName(now))
	}
	if dest == fallbackDir {
		return filepath.Join(dest, BackupFileName(now))
	}
	return dest
}

// Backup writes a point-in-time copy of the database to dest. Pending
// writes are made durable with VACUUM and the handle is closed before the
// file is copied.
func (r *SQLiteRepository) Backup(ctx context.Context, dest string) error {
	err := r.withDB(ctx, "backup flush", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, "VACUUM")
		return err
	})
	if err != nil {
		return err
	}

	if err := CopyFileAtomic(r.dbPath, dest); err != nil {
		return &core.StorageError{Op: "backup copy", Err: err}
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Database backup written", "source", r.dbPath, "destination", dest)
	return nil
}

// Verify checks that src can be restored without touching the live file.
func (r *SQLiteRepository) Verify(ctx context.Context, src string) error {
	if err := VerifySnapshot(ctx, src); err != nil {
		return &core.StorageError{Op: "restore verify", Err: err}
	}
	return nil
}

// Restore overwrites the live database with the snapshot at src and brings
// its schema up to date. The live file is untouched if src is missing,
// unreadable or not a ledger database.
func (r *SQLiteRepository) Restore(ctx context.Context, src string) error {
	if err := r.Verify(ctx, src); err != nil {
		return err
	}

	if err := CopyFileAtomic(src, r.dbPath); err != nil {
		return &core.StorageError{Op: "restore copy", Err: err}
	}
	// a journal left by the replaced file must not be replayed onto the snapshot
	if err := os.Remove(r.dbPath + "-journal"); err != nil && !os.IsNotExist(err) {
		return &core.StorageError{Op: "restore cleanup", Err: err}
	}

	if err := RunMigrations(r.dbPath); err != nil {
		return &core.StorageError{Op: "restore migrate", Err: err}
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Database restored from backup", "source", src, "destination", r.dbPath)
	return nil
}

// VerifySnapshot checks that path is a readable, intact SQLite database
// holding an entries table.
func VerifySnapshot(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	header := make([]byte, len(sqliteHeader))
	_, err = io.ReadFull(f, header)
	f.Close()
	if err != nil {
		return fmt.Errorf("read snapshot header: %w", err)
	}
	if !bytes.Equal(header, sqliteHeader) {
		return fmt.Errorf("%s is not an SQLite database", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open snapshot database: %w", err)
	}
	defer db.Close()

	var check string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&check); err != nil {
		return fmt.Errorf("check snapshot integrity: %w", err)
	}
	if check != "ok" {
		return fmt.Errorf("snapshot integrity check failed: %s", check)
	}

	var tables int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'entries'").Scan(&tables)
	if err != nil {
		return fmt.Errorf("inspect snapshot schema: %w", err)
	}
	if tables == 0 {
		return fmt.Errorf("%s holds no ledger entries table", path)
	}
	return nil
}
