package services

import (
	"context"
	"fmt"
	"time"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
)

// BudgetManager owns the Monday-Sunday week arithmetic and the one
// allocation per week. It keeps no copy of any allocation: every read goes
// to the store, and remaining balances are derived on each call.
type BudgetManager struct {
	budgets BudgetStore
	ledger  EntryStore
	clock   Clock
	events  *applog.StructuredLogger
}

func NewBudgetManager(budgets BudgetStore, ledger EntryStore, clock Clock, logger *applog.Logger) *BudgetManager {
	if clock == nil {
		clock = time.Now
	}
	return &BudgetManager{
		budgets: budgets,
		ledger:  ledger,
		clock:   clock,
		events:  applog.NewStructuredLogger(logger),
	}
}

// Today returns the current calendar day according to the manager's clock.
func (m *BudgetManager) Today() core.Date {
	return core.DateOf(m.clock())
}

// WeekStartFor returns the Monday on or before d.
func (m *BudgetManager) WeekStartFor(d core.Date) core.Date {
	return core.WeekStartFor(d)
}

// CurrentWeekStart returns the Monday of the week containing today.
func (m *BudgetManager) CurrentWeekStart() core.Date {
	return core.WeekStartFor(m.Today())
}

// HasBudget reports whether the week containing weekStart has an
// allocation.
func (m *BudgetManager) HasBudget(ctx context.Context, weekStart core.Date) (bool, error) {
	ok, err := m.budgets.Exists(ctx, core.WeekStartFor(weekStart))
	if err != nil {
		return false, fmt.Errorf("check budget: %w", err)
	}
	return ok, nil
}

// SetBudget replaces the allocation for the week containing weekStart.
// Repeated calls overwrite; they never add up. Zero is a valid allocation,
// a negative one is not.
func (m *BudgetManager) SetBudget(ctx context.Context, weekStart core.Date, amount core.Money) error {
	if err := weekStart.Validate(); err != nil {
		return err
	}
	if amount.Cents < 0 {
		return &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}
	monday := core.WeekStartFor(weekStart)
	if err := m.budgets.Put(ctx, monday, amount); err != nil {
		m.events.LogError(ctx, "Failed to set weekly budget", err,
			applog.OpSet, applog.NewFields().WithWeek(monday.String()))
		return fmt.Errorf("set budget: %w", err)
	}
	m.events.LogBudgetSet(ctx, monday, amount)
	return nil
}

// ClearBudget removes the allocation for the week containing weekStart.
// Clearing a week without one is a no-op.
func (m *BudgetManager) ClearBudget(ctx context.Context, weekStart core.Date) error {
	if err := weekStart.Validate(); err != nil {
		return err
	}
	monday := core.WeekStartFor(weekStart)
	if err := m.budgets.Delete(ctx, monday); err != nil {
		m.events.LogError(ctx, "Failed to clear weekly budget", err,
			applog.OpClear, applog.NewFields().WithWeek(monday.String()))
		return fmt.Errorf("clear budget: %w", err)
	}
	m.events.LogBudgetCleared(ctx, monday)
	return nil
}

// GetBudget returns the allocation for the week containing weekStart. The
// boolean is false when none is set.
func (m *BudgetManager) GetBudget(ctx context.Context, weekStart core.Date) (core.Money, bool, error) {
	amount, ok, err := m.budgets.Get(ctx, core.WeekStartFor(weekStart))
	if err != nil {
		return core.Money{}, false, fmt.Errorf("get budget: %w", err)
	}
	return amount, ok, nil
}

// ListBudgets returns every allocation, newest week first.
func (m *BudgetManager) ListBudgets(ctx context.Context) ([]core.WeeklyBudget, error) {
	budgets, err := m.budgets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// WeekTotal sums the entries dated within the week containing weekStart.
func (m *BudgetManager) WeekTotal(ctx context.Context, weekStart core.Date) (core.Money, error) {
	monday := core.WeekStartFor(weekStart)
	total, err := m.ledger.SumInRange(ctx, monday, core.WeekEndFor(monday))
	if err != nil {
		return core.Money{}, fmt.Errorf("sum week: %w", err)
	}
	return total, nil
}

// RemainingForWeek returns the allocation minus the week's entries. When
// the week has no allocation the boolean is false and the amount carries no
// meaning; callers render that as blank, not as zero.
func (m *BudgetManager) RemainingForWeek(ctx context.Context, weekStart core.Date) (core.Money, bool, error) {
	budget, ok, err := m.GetBudget(ctx, weekStart)
	if err != nil || !ok {
		return core.Money{}, false, err
	}
	spent, err := m.WeekTotal(ctx, weekStart)
	if err != nil {
		return core.Money{}, false, err
	}
	return budget.Sub(spent), true, nil
}

// CheckInsertAllowed applies the budget gate: an entry dated in the
// current week or later may only be recorded once the current week has an
// allocation. Backdated entries into earlier weeks are not gated.
func (m *BudgetManager) CheckInsertAllowed(ctx context.Context, occurredOn core.Date) error {
	current := m.CurrentWeekStart()
	if core.WeekStartFor(occurredOn).Before(current.Time) {
		return nil
	}
	ok, err := m.HasBudget(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		return &core.BudgetRequiredError{WeekStart: current}
	}
	return nil
}
