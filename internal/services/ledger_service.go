package services

import (
	"context"
	"fmt"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
)

// EntryInput is what a caller collects for a new entry. Amount is the text
// the user typed; a zero OccurredOn means today.
type EntryInput struct {
	Kind       string
	OtherKind  string
	Category   string
	Amount     string
	OccurredOn core.Date
	Notes      string
}

// Dashboard holds the four figures a caller shows for today. Budget and
// Remaining are only meaningful when HasBudget is true.
type Dashboard struct {
	Today      core.Date
	WeekStart  core.Date
	WeekEnd    core.Date
	MonthTotal core.Money
	WeekTotal  core.Money
	HasBudget  bool
	Budget     core.Money
	Remaining  core.Money
}

// LedgerService records entries and answers the aggregate queries.
type LedgerService struct {
	entries EntryStore
	budgets *BudgetManager
	events  *applog.StructuredLogger
}

func NewLedgerService(entries EntryStore, budgets *BudgetManager, logger *applog.Logger) *LedgerService {
	return &LedgerService{
		entries: entries,
		budgets: budgets,
		events:  applog.NewStructuredLogger(logger),
	}
}

// Insert stores e as given after checking its labels and date. It applies
// no sign rule and no budget gate; AddExpense and SubtractAmount do.
func (s *LedgerService) Insert(ctx context.Context, e core.Entry) (core.Entry, error) {
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	id, err := s.entries.InsertEntry(ctx, e)
	if err != nil {
		s.events.LogError(ctx, "Failed to record entry", err, applog.OpInsert,
			applog.NewFields().WithEntry(0, e.Kind, e.Category, e.Amount.Cents, e.OccurredOn.String()))
		return core.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	e.ID = id

	s.events.LogEntryRecorded(ctx, e)
	return e, nil
}

// AddExpense records a positive amount. An entry dated in the current week
// is refused with a BudgetRequiredError until that week has a budget.
func (s *LedgerService) AddExpense(ctx context.Context, in EntryInput) (core.Entry, error) {
	e := s.entryFromInput(in)
	if err := s.budgets.CheckInsertAllowed(ctx, e.OccurredOn); err != nil {
		s.events.LogError(ctx, "Expense refused", err, applog.OpInsert,
			applog.NewFields().WithWeek(core.WeekStartFor(e.OccurredOn).String()))
		return core.Entry{}, err
	}

	amount, err := core.ParsePositiveAmount(in.Amount)
	if err != nil {
		return core.Entry{}, err
	}
	e.Amount = amount
	return s.Insert(ctx, e)
}

// SubtractAmount records a credit: the caller types a positive magnitude
// and the stored amount is its negation. Credits are not budget-gated.
func (s *LedgerService) SubtractAmount(ctx context.Context, in EntryInput) (core.Entry, error) {
	e := s.entryFromInput(in)
	amount, err := core.ParsePositiveAmount(in.Amount)
	if err != nil {
		return core.Entry{}, err
	}
	e.Amount = amount.Negate()
	return s.Insert(ctx, e)
}

func (s *LedgerService) entryFromInput(in EntryInput) core.Entry {
	occurredOn := in.OccurredOn
	if occurredOn.IsZero() {
		occurredOn = s.budgets.Today()
	}
	return core.Entry{
		Kind:       core.ResolveKind(in.Kind, in.OtherKind),
		Category:   in.Category,
		OccurredOn: occurredOn,
		Notes:      in.Notes,
	}
}

// ListRecent returns up to limit entries, newest date first. limit <= 0
// returns everything.
func (s *LedgerService) ListRecent(ctx context.Context, limit int) ([]core.Entry, error) {
	entries, err := s.entries.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// SumInRange totals entries dated start..end inclusive.
func (s *LedgerService) SumInRange(ctx context.Context, start, end core.Date) (core.Money, error) {
	if end.Before(start.Time) {
		return core.Money{}, &core.ValidationError{Field: "range", Err: core.ErrInvalidDate}
	}
	total, err := s.entries.SumInRange(ctx, start, end)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum range: %w", err)
	}
	return total, nil
}

// SumInMonth totals entries dated in the given calendar month.
func (s *LedgerService) SumInMonth(ctx context.Context, year, month int) (core.Money, error) {
	total, err := s.entries.SumInMonth(ctx, year, month)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum month: %w", err)
	}
	return total, nil
}

// CountEntries returns the number of stored entries.
func (s *LedgerService) CountEntries(ctx context.Context) (int64, error) {
	n, err := s.entries.CountEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Snapshot reads the monthly total, weekly total, budget and remaining
// balance for today straight from the stores.
func (s *LedgerService) Snapshot(ctx context.Context) (Dashboard, error) {
	today := s.budgets.Today()
	weekStart := core.WeekStartFor(today)
	d := Dashboard{
		Today:     today,
		WeekStart: weekStart,
		WeekEnd:   core.WeekEndFor(weekStart),
	}

	var err error
	if d.MonthTotal, err = s.SumInMonth(ctx, today.Year(), int(today.Month())); err != nil {
		return Dashboard{}, err
	}
	if d.WeekTotal, err = s.budgets.WeekTotal(ctx, weekStart); err != nil {
		return Dashboard{}, err
	}
	if d.Budget, d.HasBudget, err = s.budgets.GetBudget(ctx, weekStart); err != nil {
		return Dashboard{}, err
	}
	if d.HasBudget {
		d.Remaining = d.Budget.Sub(d.WeekTotal)
	}
	return d, nil
}
