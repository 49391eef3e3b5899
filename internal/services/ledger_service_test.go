package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
	"budgetbook/internal/storage/memory"
)

func newTestLedger(t *testing.T) (*LedgerService, *BudgetManager, *memory.Store) {
	t.Helper()
	store := memory.New()
	budgets := NewBudgetManager(store, store, fixedClock, applog.Discard())
	return NewLedgerService(store, budgets, applog.Discard()), budgets, store
}

func TestLedgerService_AddExpenseRequiresBudget(t *testing.T) {
	ledger, _, store := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.AddExpense(ctx, EntryInput{Kind: "Food", Category: "Lunch", Amount: "12.50"})
	require.ErrorIs(t, err, core.ErrBudgetRequired)

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestLedgerService_AddExpenseBackdatedBypassesGate(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	e, err := ledger.AddExpense(context.Background(), EntryInput{
		Kind:       "Food",
		Category:   "Lunch",
		Amount:     "12.50",
		OccurredOn: core.NewDate(2024, 5, 20),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1250), e.Amount.Cents)
}

func TestLedgerService_AddExpense(t *testing.T) {
	ledger, budgets, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, budgets.SetBudget(ctx, core.NewDate(2024, 6, 3), core.Money{Cents: 50000}))

	e, err := ledger.AddExpense(ctx, EntryInput{
		Kind:      "Others",
		OtherKind: "Gym",
		Category:  "Health",
		Amount:    "120",
		Notes:     "monthly pass",
	})
	require.NoError(t, err)
	require.Equal(t, "Others:Gym", e.Kind)
	require.Equal(t, "2024-06-05", e.OccurredOn.String(), "a zero date means today")
	require.Equal(t, int64(12000), e.Amount.Cents)
	require.NotZero(t, e.ID)
}

func TestLedgerService_AddExpenseValidation(t *testing.T) {
	ledger, budgets, store := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, budgets.SetBudget(ctx, core.NewDate(2024, 6, 3), core.Money{Cents: 50000}))

	cases := []struct {
		name string
		in   EntryInput
		want error
	}{
		{"zero amount", EntryInput{Kind: "Food", Category: "Lunch", Amount: "0"}, core.ErrInvalidAmount},
		{"negative amount", EntryInput{Kind: "Food", Category: "Lunch", Amount: "-5"}, core.ErrInvalidAmount},
		{"unparseable amount", EntryInput{Kind: "Food", Category: "Lunch", Amount: "ten"}, core.ErrInvalidAmount},
		{"empty kind", EntryInput{Kind: " ", Category: "Lunch", Amount: "5"}, core.ErrEmptyKind},
		{"others without label", EntryInput{Kind: "Others", Category: "Lunch", Amount: "5"}, core.ErrEmptyKind},
		{"empty category", EntryInput{Kind: "Food", Category: "", Amount: "5"}, core.ErrEmptyCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.AddExpense(ctx, tc.in)
			require.ErrorIs(t, err, tc.want)
			require.True(t, core.IsValidation(err))
		})
	}

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	require.Zero(t, n, "rejected input must not write")
}

func TestLedgerService_SubtractAmountStoresNegative(t *testing.T) {
	ledger, _, store := newTestLedger(t)
	ctx := context.Background()

	e, err := ledger.SubtractAmount(ctx, EntryInput{Kind: "Refund", Category: "Shop", Amount: "30.00"})
	require.NoError(t, err)
	require.Equal(t, int64(-3000), e.Amount.Cents)

	list, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(-3000), list[0].Amount.Cents)

	_, err = ledger.SubtractAmount(ctx, EntryInput{Kind: "Refund", Category: "Shop", Amount: "-30"})
	require.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestLedgerService_SumInMonth(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Insert(ctx, core.Entry{Kind: "Food", Category: "Lunch", Amount: core.Money{Cents: 5000}, OccurredOn: core.NewDate(2024, 6, 1)})
	require.NoError(t, err)
	_, err = ledger.Insert(ctx, core.Entry{Kind: "Food", Category: "Lunch", Amount: core.Money{Cents: 7500}, OccurredOn: core.NewDate(2024, 7, 1)})
	require.NoError(t, err)

	june, err := ledger.SumInMonth(ctx, 2024, 6)
	require.NoError(t, err)
	require.Equal(t, "50.00", june.String())

	july, err := ledger.SumInMonth(ctx, 2024, 7)
	require.NoError(t, err)
	require.Equal(t, "75.00", july.String())

	empty, err := ledger.SumInRange(ctx, core.NewDate(2023, 1, 1), core.NewDate(2023, 1, 31))
	require.NoError(t, err)
	require.True(t, empty.IsZero())

	_, err = ledger.SumInRange(ctx, core.NewDate(2023, 1, 31), core.NewDate(2023, 1, 1))
	require.True(t, core.IsValidation(err))
}

func TestLedgerService_Snapshot(t *testing.T) {
	ledger, budgets, _ := newTestLedger(t)
	ctx := context.Background()

	d, err := ledger.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, d.HasBudget)
	require.True(t, d.MonthTotal.IsZero())

	require.NoError(t, budgets.SetBudget(ctx, core.NewDate(2024, 6, 3), core.Money{Cents: 50000}))
	_, err = ledger.AddExpense(ctx, EntryInput{Kind: "Food", Category: "Lunch", Amount: "120.00", OccurredOn: core.NewDate(2024, 6, 4)})
	require.NoError(t, err)
	_, err = ledger.AddExpense(ctx, EntryInput{Kind: "Food", Category: "Lunch", Amount: "10.00", OccurredOn: core.NewDate(2024, 6, 1)})
	require.NoError(t, err)

	d, err = ledger.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "2024-06-03", d.WeekStart.String())
	require.Equal(t, "2024-06-09", d.WeekEnd.String())
	require.Equal(t, "130.00", d.MonthTotal.String())
	require.Equal(t, "120.00", d.WeekTotal.String())
	require.True(t, d.HasBudget)
	require.Equal(t, "500.00", d.Budget.String())
	require.Equal(t, "380.00", d.Remaining.String())
}

func TestLedgerService_StorageFailureSurfaces(t *testing.T) {
	ledger, _, store := newTestLedger(t)
	store.FailWith = errors.New("disk full")

	_, err := ledger.SubtractAmount(context.Background(), EntryInput{Kind: "Refund", Category: "Shop", Amount: "1"})
	require.ErrorIs(t, err, core.ErrStorage)

	_, err = ledger.Snapshot(context.Background())
	require.ErrorIs(t, err, core.ErrStorage)
}
