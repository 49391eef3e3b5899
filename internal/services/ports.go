package services

import (
	"context"
	"time"

	"budgetbook/internal/core"
)

// Ports for the stores the services depend on.
type (
	// EntryStore persists ledger entries and answers sum queries over them.
	EntryStore interface {
		InsertEntry(ctx context.Context, e core.Entry) (id int64, err error)
		// ListRecent returns entries newest date first; limit <= 0 means all.
		ListRecent(ctx context.Context, limit int) ([]core.Entry, error)
		// SumInRange totals entries dated start..end inclusive.
		SumInRange(ctx context.Context, start, end core.Date) (core.Money, error)
		SumInMonth(ctx context.Context, year, month int) (core.Money, error)
		CountEntries(ctx context.Context) (int64, error)
	}

	// BudgetStore keeps at most one allocation per week start.
	BudgetStore interface {
		Get(ctx context.Context, weekStart core.Date) (amount core.Money, found bool, err error)
		Exists(ctx context.Context, weekStart core.Date) (bool, error)
		// Put replaces any allocation for the week.
		Put(ctx context.Context, weekStart core.Date, amount core.Money) error
		// Delete is a no-op when the week has no allocation.
		Delete(ctx context.Context, weekStart core.Date) error
		List(ctx context.Context) ([]core.WeeklyBudget, error)
	}

	// Snapshotter copies a persisted artifact out to, and back from, a file.
	Snapshotter interface {
		Backup(ctx context.Context, dest string) error
		Verify(ctx context.Context, src string) error
		Restore(ctx context.Context, src string) error
	}

	// Clock returns the current time. It decides which week is "this week".
	Clock func() time.Time
)
