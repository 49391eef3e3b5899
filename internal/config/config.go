package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// Ledger
	DBPath string

	// Weekly budget storage
	BudgetBackend  string
	BudgetFilePath string

	// Backup
	BackupDir string

	// Presentation
	CurrencySymbol string
	RecentLimit    int

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		DBPath: getEnv("LEDGER_DB_PATH", "./data/expenses.db"),

		BudgetBackend:  getEnv("BUDGET_BACKEND", "sqlite"),
		BudgetFilePath: getEnv("BUDGET_FILE_PATH", "./data/weekly_budget.csv"),

		BackupDir: getEnv("BACKUP_DIR", "./backups"),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),
		RecentLimit:    getEnvInt("RECENT_LIMIT", 20),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate ledger database path
	if c.DBPath == "" {
		errors = append(errors, "ledger database path cannot be empty")
	} else {
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create ledger database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate budget backend
	validBackends := []string{"sqlite", "file"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.BudgetBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid budget backend '%s': must be one of %v", c.BudgetBackend, validBackends))
	}

	if c.BudgetBackend == "file" && c.BudgetFilePath == "" {
		errors = append(errors, "budget file path cannot be empty when using file backend")
	}

	if c.BackupDir == "" {
		errors = append(errors, "backup directory cannot be empty")
	}

	if c.RecentLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid recent limit %d: must be zero (all) or positive", c.RecentLimit))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
