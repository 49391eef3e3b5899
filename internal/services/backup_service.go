package services

import (
	"context"
	"fmt"
	"time"

	applog "budgetbook/internal/log"
	"budgetbook/internal/storage"
)

// SnapshotTarget is one persisted artifact taking part in backup and
// restore. Its copy lives at the backup path plus Suffix.
type SnapshotTarget struct {
	Name   string
	Suffix string
	Store  Snapshotter
}

// BackupService copies the live stores out to a backup and back again.
type BackupService struct {
	targets   []SnapshotTarget
	ledger    *LedgerService
	backupDir string
	clock     Clock
	events    *applog.StructuredLogger
}

func NewBackupService(ledger *LedgerService, backupDir string, clock Clock, logger *applog.Logger, targets ...SnapshotTarget) *BackupService {
	if clock == nil {
		clock = time.Now
	}
	return &BackupService{
		targets:   targets,
		ledger:    ledger,
		backupDir: backupDir,
		clock:     clock,
		events:    applog.NewStructuredLogger(logger),
	}
}

// Backup writes every target to dest (plus the target's suffix) and
// returns the main backup path. An empty dest, or one naming a directory,
// gets a timestamped file name.
func (s *BackupService) Backup(ctx context.Context, dest string) (string, error) {
	path := storage.ResolveBackupPath(dest, s.backupDir, s.clock())
	for _, t := range s.targets {
		if err := t.Store.Backup(ctx, path+t.Suffix); err != nil {
			s.events.LogError(ctx, "Backup failed", err, applog.OpBackup,
				applog.NewFields().WithPath(path+t.Suffix))
			return "", fmt.Errorf("backup %s: %w", t.Name, err)
		}
	}
	s.events.LogFileOperation(ctx, applog.OpBackup, path)
	return path, nil
}

// Restore replaces every target with its copy at src (plus suffix) and
// returns the dashboard re-read from the restored data. All copies are
// verified before any live file is replaced.
func (s *BackupService) Restore(ctx context.Context, src string) (Dashboard, error) {
	for _, t := range s.targets {
		if err := t.Store.Verify(ctx, src+t.Suffix); err != nil {
			s.events.LogError(ctx, "Restore rejected", err, applog.OpRestore,
				applog.NewFields().WithPath(src+t.Suffix))
			return Dashboard{}, fmt.Errorf("verify %s: %w", t.Name, err)
		}
	}
	for _, t := range s.targets {
		if err := t.Store.Restore(ctx, src+t.Suffix); err != nil {
			s.events.LogError(ctx, "Restore failed", err, applog.OpRestore,
				applog.NewFields().WithPath(src+t.Suffix))
			return Dashboard{}, fmt.Errorf("restore %s: %w", t.Name, err)
		}
	}
	s.events.LogFileOperation(ctx, applog.OpRestore, src)

	return s.ledger.Snapshot(ctx)
}
