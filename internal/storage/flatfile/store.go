// Package flatfile keeps weekly budgets in a plain delimited text file,
// one "yyyy-MM-dd,amount" line per week.
package flatfile

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
	"budgetbook/internal/storage"
)

const header = "# week_start,amount"

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the budget file.
func (s *Store) Path() string {
	return s.path
}

// Get implements services.BudgetStore
func (s *Store) Get(_ context.Context, weekStart core.Date) (core.Money, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readFile(s.path)
	if err != nil {
		return core.Money{}, false, err
	}
	m, ok := rows[weekStart.String()]
	return m, ok, nil
}

// Exists implements services.BudgetStore
func (s *Store) Exists(ctx context.Context, weekStart core.Date) (bool, error) {
	_, ok, err := s.Get(ctx, weekStart)
	return ok, err
}

// Put implements services.BudgetStore. The whole file is rewritten, so a
// week never has more than one line.
func (s *Store) Put(ctx context.Context, weekStart core.Date, amount core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readFile(s.path)
	if err != nil {
		return err
	}
	rows[weekStart.String()] = amount
	if err := writeFile(s.path, rows); err != nil {
		return err
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Weekly budget saved to file",
		applog.FieldPath, s.path,
		applog.FieldWeekStart, weekStart.String(),
		applog.FieldAmountCents, amount.Cents)
	return nil
}

// Delete implements services.BudgetStore. A missing week is not an error
// and leaves the file untouched.
func (s *Store) Delete(ctx context.Context, weekStart core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readFile(s.path)
	if err != nil {
		return err
	}
	if _, ok := rows[weekStart.String()]; !ok {
		return nil
	}
	delete(rows, weekStart.String())
	if err := writeFile(s.path, rows); err != nil {
		return err
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Weekly budget removed from file", applog.FieldPath, s.path, applog.FieldWeekStart, weekStart.String())
	return nil
}

// List implements services.BudgetStore
func (s *Store) List(_ context.Context) ([]core.WeeklyBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readFile(s.path)
	if err != nil {
		return nil, err
	}
	keys := sortedKeys(rows)
	out := make([]core.WeeklyBudget, 0, len(keys))
	// newest week first, matching the SQLite listing
	for i := len(keys) - 1; i >= 0; i-- {
		d, _ := time.Parse(core.DateLayout, keys[i])
		out = append(out, core.WeeklyBudget{WeekStart: core.Date{Time: d}, Amount: rows[keys[i]]})
	}
	return out, nil
}

// Backup copies the budget file to dest. A store that has never been
// written produces a header-only file so a later restore finds it.
func (s *Store) Backup(ctx context.Context, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := writeFile(dest, map[string]core.Money{}); err != nil {
			return err
		}
	} else if err := storage.CopyFileAtomic(s.path, dest); err != nil {
		return &core.StorageError{Op: "backup budget file", Err: err}
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Budget file backup written", "source", s.path, "destination", dest)
	return nil
}

// Verify checks that src exists and every line of it parses.
func (s *Store) Verify(_ context.Context, src string) error {
	if _, err := os.Stat(src); err != nil {
		return &core.StorageError{Op: "restore budget file", Err: err}
	}
	_, err := readFile(src)
	return err
}

// Restore replaces the budget file with src once src verifies.
func (s *Store) Restore(ctx context.Context, src string) error {
	if err := s.Verify(ctx, src); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.CopyFileAtomic(src, s.path); err != nil {
		return &core.StorageError{Op: "restore budget file", Err: err}
	}

	applog.ForComponent(ctx, applog.ComponentStorage).InfoContext(ctx, "Budget file restored from backup", "source", src, "destination", s.path)
	return nil
}

// readFile parses the budget file. A missing file is an empty store; a
// malformed line is corruption and fails the read. When a week appears on
// more than one line the last one wins.
func readFile(path string) (map[string]core.Money, error) {
	rows := map[string]core.Money{}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return rows, nil
	}
	if err != nil {
		return nil, &core.StorageError{Op: "read budget file", Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		week, amount, ok := strings.Cut(line, ",")
		if !ok {
			return nil, corrupt(path, lineNo, "missing delimiter")
		}
		d, err := core.ParseDate(week)
		if err != nil {
			return nil, corrupt(path, lineNo, "bad week start")
		}
		if !core.WeekStartFor(d).Equal(d.Time) {
			return nil, corrupt(path, lineNo, "week start is not a Monday")
		}
		m, err := core.ParseAmount(amount)
		if err != nil {
			return nil, corrupt(path, lineNo, "bad amount")
		}
		rows[d.String()] = m
	}
	if err := sc.Err(); err != nil {
		return nil, &core.StorageError{Op: "read budget file", Err: err}
	}
	return rows, nil
}

func corrupt(path string, line int, reason string) error {
	return &core.StorageError{
		Op:  "read budget file",
		Err: fmt.Errorf("%s line %d: %s", path, line, reason),
	}
}

func writeFile(path string, rows map[string]core.Money) error {
	var buf bytes.Buffer
	buf.WriteString(header + "\n")
	for _, key := range sortedKeys(rows) {
		fmt.Fprintf(&buf, "%s,%s\n", key, rows[key].String())
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &core.StorageError{Op: "write budget file", Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &core.StorageError{Op: "write budget file", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &core.StorageError{Op: "write budget file", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &core.StorageError{Op: "write budget file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &core.StorageError{Op: "write budget file", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &core.StorageError{Op: "write budget file", Err: err}
	}
	return nil
}

func sortedKeys(rows map[string]core.Money) []string {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
