package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores entries and weekly budgets in a single SQLite
// file. It holds no open handle between calls: each method opens the file,
// does its work and closes it again, so the file can be copied or replaced
// safely between calls.
type SQLiteRepository struct {
	dbPath string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &core.StorageError{Op: "create db directory", Err: err}
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, &core.StorageError{Op: "migrate", Err: err}
	}

	return &SQLiteRepository{dbPath: dbPath}, nil
}

// Path returns the location of the live database file.
func (r *SQLiteRepository) Path() string {
	return r.dbPath
}

// Close exists for symmetry with other stores; no handle outlives a call.
func (r *SQLiteRepository) Close() error {
	return nil
}

func (r *SQLiteRepository) withDB(ctx context.Context, op string, fn func(*sql.DB) error) error {
	db, err := sql.Open("sqlite", r.dbPath)
	if err != nil {
		return &core.StorageError{Op: op, Err: fmt.Errorf("open database: %w", err)}
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return &core.StorageError{Op: op, Err: fmt.Errorf("ping database: %w", err)}
	}
	if err := fn(db); err != nil {
		return &core.StorageError{Op: op, Err: err}
	}
	return nil
}

// InsertEntry persists e and returns its new id. Kind and category are
// stored trimmed.
func (r *SQLiteRepository) InsertEntry(ctx context.Context, e core.Entry) (int64, error) {
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.withDB(ctx, "insert entry", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, insertEntry,
			e.Kind,
			e.Category,
			e.Amount.Cents,
			e.OccurredOn.String(),
			e.Notes,
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Entry saved to SQLite",
		applog.FieldEntryID, id,
		applog.FieldKind, e.Kind,
		applog.FieldCategory, e.Category,
		applog.FieldAmountCents, e.Amount.Cents,
		applog.FieldOccurredOn, e.OccurredOn.String())

	return id, nil
}

// ListRecent returns entries newest date first. Entries sharing a date are
// ordered by id descending, so the most recently inserted comes first. A
// limit of zero or less returns every entry.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]core.Entry, error) {
	query := listEntries
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var entries []core.Entry
	err := r.withDB(ctx, "list entries", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (core.Entry, error) {
	var (
		e          core.Entry
		occurredOn string
		createdAt  string
	)
	if err := rows.Scan(&e.ID, &e.Kind, &e.Category, &e.Amount.Cents, &occurredOn, &e.Notes, &createdAt); err != nil {
		return core.Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	d, err := time.Parse(core.DateLayout, occurredOn)
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry %d has malformed date %q: %w", e.ID, occurredOn, err)
	}
	e.OccurredOn = core.Date{Time: d}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = ts
	}
	return e, nil
}

// SumInRange totals entries dated from start to end, both inclusive.
// Entries of the reserved budget kind are not spending and are skipped.
func (r *SQLiteRepository) SumInRange(ctx context.Context, start, end core.Date) (core.Money, error) {
	var cents int64
	err := r.withDB(ctx, "sum range", func(db *sql.DB) error {
		return db.QueryRowContext(ctx, sumEntriesInRange,
			start.String(), end.String(), core.ReservedBudgetKind).Scan(&cents)
	})
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// SumInMonth totals entries whose date falls in the given calendar month.
func (r *SQLiteRepository) SumInMonth(ctx context.Context, year, month int) (core.Money, error) {
	first, last, err := core.MonthRange(year, month)
	if err != nil {
		return core.Money{}, err
	}

	var cents int64
	err = r.withDB(ctx, "sum month", func(db *sql.DB) error {
		return db.QueryRowContext(ctx, sumEntriesInMonth, first.String(), last.String()).Scan(&cents)
	})
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// CountEntries returns the number of stored entries.
func (r *SQLiteRepository) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	err := r.withDB(ctx, "count entries", func(db *sql.DB) error {
		return db.QueryRowContext(ctx, countEntries).Scan(&n)
	})
	return n, err
}

// Get implements services.BudgetStore
func (r *SQLiteRepository) Get(ctx context.Context, weekStart core.Date) (core.Money, bool, error) {
	var (
		cents int64
		found bool
	)
	err := r.withDB(ctx, "get budget", func(db *sql.DB) error {
		err := db.QueryRowContext(ctx, getWeeklyBudget, weekStart.String()).Scan(&cents)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return core.Money{}, false, err
	}
	return core.Money{Cents: cents}, found, nil
}

// Exists implements services.BudgetStore
func (r *SQLiteRepository) Exists(ctx context.Context, weekStart core.Date) (bool, error) {
	var n int64
	err := r.withDB(ctx, "check budget", func(db *sql.DB) error {
		return db.QueryRowContext(ctx, countWeeklyBudget, weekStart.String()).Scan(&n)
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Put implements services.BudgetStore. Any existing row for the week is
// replaced in the same transaction.
func (r *SQLiteRepository) Put(ctx context.Context, weekStart core.Date, amount core.Money) error {
	err := r.withDB(ctx, "set budget", func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, deleteWeeklyBudget, weekStart.String()); err != nil {
			return fmt.Errorf("delete previous budget: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertWeeklyBudget, weekStart.String(), amount.Cents); err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return err
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Weekly budget saved to SQLite",
		applog.FieldWeekStart, weekStart.String(),
		applog.FieldAmountCents, amount.Cents)
	return nil
}

// Delete implements services.BudgetStore. Deleting a missing week is not
// an error.
func (r *SQLiteRepository) Delete(ctx context.Context, weekStart core.Date) error {
	var affected int64
	err := r.withDB(ctx, "clear budget", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, deleteWeeklyBudget, weekStart.String())
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Weekly budget removed from SQLite",
		applog.FieldWeekStart, weekStart.String(),
		"removed", affected > 0)
	return nil
}

// List implements services.BudgetStore
func (r *SQLiteRepository) List(ctx context.Context) ([]core.WeeklyBudget, error) {
	var budgets []core.WeeklyBudget
	err := r.withDB(ctx, "list budgets", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, listWeeklyBudgets)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				weekStart string
				cents     int64
			)
			if err := rows.Scan(&weekStart, &cents); err != nil {
				return fmt.Errorf("scan budget: %w", err)
			}
			d, err := time.Parse(core.DateLayout, weekStart)
			if err != nil {
				return fmt.Errorf("budget has malformed week start %q: %w", weekStart, err)
			}
			budgets = append(budgets, core.WeeklyBudget{
				WeekStart: core.Date{Time: d},
				Amount:    core.Money{Cents: cents},
			})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return budgets, nil
}
