package backend

import (
	"context"
	"fmt"

	applog "budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
	"budgetbook/internal/storage/flatfile"
)

// BudgetFileSuffix is appended to a backup path for the copy of the budget
// file when budgets live outside the ledger database.
const BudgetFileSuffix = ".budgets.csv"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger database: %w", err)
	}
	targets := []services.SnapshotTarget{{Name: "ledger", Store: repo}}

	var budgets services.BudgetStore
	switch config.Type {
	case SQLiteBackend:
		budgets = repo
	case FileBackend:
		store := flatfile.New(config.BudgetFilePath)
		budgets = store
		targets = append(targets, services.SnapshotTarget{Name: "budget file", Suffix: BudgetFileSuffix, Store: store})
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	manager := services.NewBudgetManager(budgets, repo, config.Clock, f.logger.WithComponent(applog.ComponentBudget))
	ledger := services.NewLedgerService(repo, manager, f.logger.WithComponent(applog.ComponentLedger))
	backups := services.NewBackupService(ledger, config.BackupDir, config.Clock,
		f.logger.WithComponent(applog.ComponentBackup), targets...)

	f.logger.InfoContext(ctx, "Initialized backend",
		"db_path", config.DBPath,
		"budget_backend", config.Type.String(),
		"budget_file", config.BudgetFilePath)

	return &BackendResult{
		Ledger:  ledger,
		Budgets: manager,
		Backups: backups,
		Cleanup: repo.Close,
	}, nil
}
