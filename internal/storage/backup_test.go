package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
)

func TestBackupFileName(t *testing.T) {
	now := time.Date(2024, 6, 5, 14, 3, 9, 0, time.UTC)
	name := BackupFileName(now)
	require.True(t, strings.HasPrefix(name, "expenses_backup_20240605_140309_"), name)
	require.True(t, strings.HasSuffix(name, ".db"), name)
	require.Len(t, name, len("expenses_backup_20240605_140309_")+8+len(".db"))
	require.NotEqual(t, name, BackupFileName(now))
}

func TestResolveBackupPath(t *testing.T) {
	now := time.Date(2024, 6, 5, 14, 3, 9, 0, time.UTC)
	dir := t.TempDir()
	fallback := filepath.Join(dir, "backups")

	got := ResolveBackupPath("", fallback, now)
	require.Equal(t, fallback, filepath.Dir(got))

	got = ResolveBackupPath(dir, fallback, now)
	require.Equal(t, dir, filepath.Dir(got))
	require.Contains(t, filepath.Base(got), "expenses_backup_")

	explicit := filepath.Join(dir, "mine.db")
	require.Equal(t, explicit, ResolveBackupPath(explicit, fallback, now))
}

func TestSQLiteRepository_BackupRestore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.InsertEntry(ctx, entry("Food", 12000, core.NewDate(2024, 6, 4)))
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, core.NewDate(2024, 6, 3), core.Money{Cents: 50000}))

	dest := filepath.Join(t.TempDir(), "nested", "snap.db")
	require.NoError(t, repo.Backup(ctx, dest))
	require.NoError(t, VerifySnapshot(ctx, dest))

	_, err = repo.InsertEntry(ctx, entry("Food", 999, core.NewDate(2024, 6, 5)))
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, core.NewDate(2024, 6, 3), core.Money{Cents: 1}))

	require.NoError(t, repo.Restore(ctx, dest))

	n, err := repo.CountEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	amount, ok, err := repo.Get(ctx, core.NewDate(2024, 6, 3))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(50000), amount.Cents)
}

func TestSQLiteRepository_RestoreRejectsBadSource(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, err := repo.InsertEntry(ctx, entry("Food", 100, core.NewDate(2024, 6, 4)))
	require.NoError(t, err)

	dir := t.TempDir()
	notSQLite := filepath.Join(dir, "notes.db")
	require.NoError(t, os.WriteFile(notSQLite, []byte("definitely not a database, just some text"), 0644))
	truncated := filepath.Join(dir, "short.db")
	require.NoError(t, os.WriteFile(truncated, []byte("SQLite"), 0644))

	// a valid SQLite file without the ledger schema
	foreign := filepath.Join(dir, "foreign.db")
	other := &SQLiteRepository{dbPath: foreign}
	require.NoError(t, other.withDB(ctx, "seed", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, "CREATE TABLE things (id INTEGER)")
		return err
	}))

	for _, src := range []string{filepath.Join(dir, "missing.db"), notSQLite, truncated, foreign} {
		t.Run(filepath.Base(src), func(t *testing.T) {
			err := repo.Restore(ctx, src)
			require.ErrorIs(t, err, core.ErrStorage)

			n, err := repo.CountEntries(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(1), n, "live store untouched")
		})
	}
}

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "out", "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0644))

	require.NoError(t, CopyFileAtomic(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	require.Error(t, CopyFileAtomic(filepath.Join(dir, "missing"), dst))
	require.Error(t, CopyFileAtomic(dir, dst), "directories are not copied")

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}
