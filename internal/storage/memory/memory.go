// Package memory is a map-backed ledger used where a database file is not
// wanted, mainly in tests. It follows the same ordering and sum rules as
// the SQLite repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"budgetbook/internal/core"
)

type Store struct {
	mu      sync.Mutex
	nextID  int64
	items   []core.Entry
	budgets map[string]core.Money
	// FailWith, when set, is returned by every call. Tests use it to
	// simulate a broken disk.
	FailWith error
}

func New() *Store {
	return &Store{budgets: map[string]core.Money{}}
}

// InsertEntry implements services.EntryStore
func (s *Store) InsertEntry(_ context.Context, e core.Entry) (int64, error) {
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, &core.StorageError{Op: "insert entry", Err: s.FailWith}
	}
	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = time.Now().UTC()
	s.items = append(s.items, e)
	return e.ID, nil
}

// ListRecent implements services.EntryStore
func (s *Store) ListRecent(_ context.Context, limit int) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, &core.StorageError{Op: "list entries", Err: s.FailWith}
	}
	out := append([]core.Entry(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn.Time) {
			return out[i].OccurredOn.After(out[j].OccurredOn.Time)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SumInRange implements services.EntryStore
func (s *Store) SumInRange(_ context.Context, start, end core.Date) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return core.Money{}, &core.StorageError{Op: "sum range", Err: s.FailWith}
	}
	var total int64
	for _, e := range s.items {
		if e.Kind == core.ReservedBudgetKind {
			continue
		}
		if e.OccurredOn.Before(start.Time) || e.OccurredOn.After(end.Time) {
			continue
		}
		total += e.Amount.Cents
	}
	return core.Money{Cents: total}, nil
}

// SumInMonth implements services.EntryStore
func (s *Store) SumInMonth(_ context.Context, year, month int) (core.Money, error) {
	first, last, err := core.MonthRange(year, month)
	if err != nil {
		return core.Money{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return core.Money{}, &core.StorageError{Op: "sum month", Err: s.FailWith}
	}
	var total int64
	for _, e := range s.items {
		if e.OccurredOn.Before(first.Time) || e.OccurredOn.After(last.Time) {
			continue
		}
		total += e.Amount.Cents
	}
	return core.Money{Cents: total}, nil
}

// CountEntries implements services.EntryStore
func (s *Store) CountEntries(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, &core.StorageError{Op: "count entries", Err: s.FailWith}
	}
	return int64(len(s.items)), nil
}

// Get implements services.BudgetStore
func (s *Store) Get(_ context.Context, weekStart core.Date) (core.Money, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return core.Money{}, false, &core.StorageError{Op: "get budget", Err: s.FailWith}
	}
	m, ok := s.budgets[weekStart.String()]
	return m, ok, nil
}

// Exists implements services.BudgetStore
func (s *Store) Exists(ctx context.Context, weekStart core.Date) (bool, error) {
	_, ok, err := s.Get(ctx, weekStart)
	return ok, err
}

// Put implements services.BudgetStore
func (s *Store) Put(_ context.Context, weekStart core.Date, amount core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return &core.StorageError{Op: "set budget", Err: s.FailWith}
	}
	s.budgets[weekStart.String()] = amount
	return nil
}

// Delete implements services.BudgetStore
func (s *Store) Delete(_ context.Context, weekStart core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return &core.StorageError{Op: "clear budget", Err: s.FailWith}
	}
	delete(s.budgets, weekStart.String())
	return nil
}

// List implements services.BudgetStore
func (s *Store) List(_ context.Context) ([]core.WeeklyBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, &core.StorageError{Op: "list budgets", Err: s.FailWith}
	}
	keys := make([]string, 0, len(s.budgets))
	for k := range s.budgets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	out := make([]core.WeeklyBudget, 0, len(keys))
	for _, k := range keys {
		d, _ := time.Parse(core.DateLayout, k)
		out = append(out, core.WeeklyBudget{WeekStart: core.Date{Time: d}, Amount: s.budgets[k]})
	}
	return out, nil
}
