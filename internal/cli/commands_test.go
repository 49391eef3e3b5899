package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"budgetbook/internal/backend"
	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
	"budgetbook/internal/middleware/trace"
)

func newTestApp(t *testing.T, typ backend.BackendType) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	res, err := backend.NewFactory(applog.Discard()).CreateBackend(context.Background(), backend.Config{
		Type:           typ,
		DBPath:         filepath.Join(dir, "expenses.db"),
		BudgetFilePath: filepath.Join(dir, "weekly_budget.csv"),
		BackupDir:      filepath.Join(dir, "backups"),
		Clock: func() time.Time {
			return time.Date(2024, 6, 5, 18, 30, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	return &App{Backend: res, Out: NewRenderer(&out, "$"), RecentLimit: 10}, &out
}

func TestApp_Usage(t *testing.T) {
	app, _ := newTestApp(t, backend.SQLiteBackend)
	ctx := context.Background()

	require.ErrorIs(t, app.Run(ctx, nil), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"frobnicate"}), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"list", "-bogus"}), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"budget"}), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"restore"}), ErrUsage)
	require.NoError(t, app.Run(ctx, []string{"help"}))
}

func TestApp_AddRequiresBudgetThisWeek(t *testing.T) {
	app, _ := newTestApp(t, backend.SQLiteBackend)
	ctx := context.Background()

	err := app.Run(ctx, []string{"add", "-kind", "Food", "-category", "Lunch", "-amount", "12"})
	require.ErrorIs(t, err, core.ErrBudgetRequired)

	err = app.Run(ctx, []string{"add", "-kind", "Food", "-category", "Lunch", "-amount", "12", "-date", "2024-06-20"})
	require.ErrorIs(t, err, core.ErrBudgetRequired, "future-dated entries are gated too")

	err = app.Run(ctx, []string{"add", "-kind", "Food", "-category", "Lunch", "-amount", "12", "-date", "2024-05-28"})
	require.NoError(t, err)
}

func TestApp_TracedRunStampsEveryRecord(t *testing.T) {
	app, _ := newTestApp(t, backend.SQLiteBackend)
	var logs bytes.Buffer
	app.Trace = trace.NewMiddleware(applog.New(applog.Config{
		Output:    &logs,
		Level:     slog.LevelDebug,
		Component: applog.ComponentCLI,
	}))

	require.NoError(t, app.Run(context.Background(), []string{"budget", "set", "-amount", "500"}))

	completed := lineWith(t, logs.String(), "Command completed")
	runID := ""
	for _, field := range strings.Fields(completed) {
		if v, ok := strings.CutPrefix(field, "run_id="); ok {
			runID = v
		}
	}
	require.NotEmpty(t, runID)

	for _, msg := range []string{"Weekly budget saved to SQLite", "Weekly budget set"} {
		line := lineWith(t, logs.String(), msg)
		require.Contains(t, line, "run_id="+runID, msg)
		require.Contains(t, line, "command=budget", msg)
		require.Equal(t, 1, strings.Count(line, "component="), "component key repeated in %q", line)
	}
	require.Contains(t, lineWith(t, logs.String(), "Weekly budget set"), "component="+applog.ComponentBudget)
	require.Contains(t, lineWith(t, logs.String(), "Weekly budget saved to SQLite"), "component="+applog.ComponentStorage)
}

func TestApp_SummaryFlow(t *testing.T) {
	for _, typ := range backend.GetBackendTypes() {
		t.Run(typ.String(), func(t *testing.T) {
			app, out := newTestApp(t, typ)
			ctx := context.Background()

			require.NoError(t, app.Run(ctx, []string{"summary"}))
			budgetLine := lineWith(t, out.String(), "Weekly budget:")
			require.NotContains(t, budgetLine, "$", "an unset budget renders blank")
			out.Reset()

			require.NoError(t, app.Run(ctx, []string{"budget", "set", "-amount", "500"}))
			require.Contains(t, out.String(), "2024-06-03")
			require.NoError(t, app.Run(ctx, []string{"add", "-kind", "Others", "-other", "Gym", "-category", "Health", "-amount", "120.00", "-date", "2024-06-04"}))
			require.NoError(t, app.Run(ctx, []string{"subtract", "-kind", "Refund", "-category", "Shop", "-amount", "30"}))
			out.Reset()

			require.NoError(t, app.Run(ctx, []string{"summary"}))
			s := out.String()
			require.Contains(t, s, "$90.00")
			require.Contains(t, s, "$500.00")
			require.Contains(t, s, "$410.00")
			out.Reset()

			require.NoError(t, app.Run(ctx, []string{"list", "-limit", "0"}))
			s = out.String()
			require.Contains(t, s, "Others:Gym")
			require.Contains(t, s, "-$30.00")
			require.Less(t, strings.Index(s, "Refund"), strings.Index(s, "Others:Gym"), "newest date first")
		})
	}
}

func TestApp_BudgetShowBlankWhenUnset(t *testing.T) {
	app, out := newTestApp(t, backend.SQLiteBackend)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"budget", "show", "-week", "2024-06-07"}))
	require.Contains(t, out.String(), "2024-06-03 .. 2024-06-09")
	require.Contains(t, out.String(), "Budget:    \n")
	require.Contains(t, out.String(), "Remaining: \n")
	out.Reset()

	require.NoError(t, app.Run(ctx, []string{"budget", "set", "-week", "2024-06-07", "-amount", "75.5"}))
	require.NoError(t, app.Run(ctx, []string{"budget", "show", "-all"}))
	require.Contains(t, out.String(), "$75.50")
	out.Reset()

	require.NoError(t, app.Run(ctx, []string{"budget", "clear", "-week", "2024-06-03"}))
	require.NoError(t, app.Run(ctx, []string{"budget", "show", "-all"}))
	require.Contains(t, out.String(), "No weekly budgets.")

	err := app.Run(ctx, []string{"budget", "set", "-amount", "-1"})
	require.True(t, core.IsValidation(err))
}

func TestApp_BackupAndRestore(t *testing.T) {
	app, out := newTestApp(t, backend.FileBackend)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"budget", "set", "-amount", "500"}))
	require.NoError(t, app.Run(ctx, []string{"add", "-kind", "Food", "-category", "Lunch", "-amount", "120"}))

	dest := filepath.Join(t.TempDir(), "snap.db")
	require.NoError(t, app.Run(ctx, []string{"backup", "-to", dest}))

	require.NoError(t, app.Run(ctx, []string{"budget", "set", "-amount", "900"}))
	require.NoError(t, app.Run(ctx, []string{"add", "-kind", "Food", "-category", "Dinner", "-amount", "40"}))
	out.Reset()

	require.NoError(t, app.Run(ctx, []string{"restore", "-from", dest}))
	s := out.String()
	require.Contains(t, s, "$500.00")
	require.Contains(t, s, "$380.00")
	require.NotContains(t, s, "$900.00")

	err := app.Run(ctx, []string{"restore", "-from", filepath.Join(t.TempDir(), "missing.db")})
	require.ErrorIs(t, err, core.ErrStorage)
}

func lineWith(t *testing.T, s, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, prefix) {
			return line
		}
	}
	t.Fatalf("no line containing %q in:\n%s", prefix, s)
	return ""
}
