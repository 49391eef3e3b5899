package backend

import (
	"context"

	"budgetbook/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the wired services and an optional cleanup function
type BackendResult struct {
	Ledger  *services.LedgerService
	Budgets *services.BudgetManager
	Backups *services.BackupService
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the stores named by config and wires the services on top
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Where weekly budgets live
	Type BackendType

	// Ledger database, always SQLite
	DBPath string

	// File backend specific
	BudgetFilePath string

	// Default destination for backups without an explicit path
	BackupDir string

	// Clock decides which week is current. Nil means time.Now.
	Clock services.Clock
}

// BackendType represents where weekly budgets are stored
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend:
		return true
	default:
		return false
	}
}
