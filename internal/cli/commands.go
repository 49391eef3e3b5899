package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"budgetbook/internal/backend"
	"budgetbook/internal/core"
	"budgetbook/internal/middleware/trace"
	"budgetbook/internal/services"
)

// ErrUsage marks a malformed command line. Callers exit with status 2.
var ErrUsage = errors.New("usage")

const usage = `usage: budgetbook <command> [flags]

commands:
  add       record an expense         -kind -other -category -amount [-date] [-notes]
  subtract  record a credit           -kind -other -category -amount [-date] [-notes]
  list      show recent entries       [-limit n]
  summary   show this month and week
  budget    set|clear|show weekly budgets
  backup    copy the ledger out       [-to path]
  restore   replace the ledger        -from path
`

// App runs one command against a wired backend.
type App struct {
	Backend     *backend.BackendResult
	Out         *Renderer
	RecentLimit int
	// Trace, when set, wraps each run with a run id and timing records.
	Trace *trace.Middleware
}

// Run dispatches args (without the program name) to a command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usageError("missing command")
	}
	if a.Trace == nil {
		return a.dispatch(ctx, args[0], args[1:])
	}
	return a.Trace.Wrap(args[0], func(ctx context.Context) error {
		return a.dispatch(ctx, args[0], args[1:])
	})(ctx)
}

func (a *App) dispatch(ctx context.Context, cmd string, rest []string) error {
	switch cmd {
	case "add":
		return a.record(ctx, cmd, rest, a.Backend.Ledger.AddExpense)
	case "subtract":
		return a.record(ctx, cmd, rest, a.Backend.Ledger.SubtractAmount)
	case "list":
		return a.list(ctx, rest)
	case "summary":
		return a.summary(ctx)
	case "budget":
		return a.budget(ctx, rest)
	case "backup":
		return a.backup(ctx, rest)
	case "restore":
		return a.restore(ctx, rest)
	case "help", "-h", "--help":
		a.Out.Line("%s", strings.TrimRight(usage, "\n"))
		return nil
	default:
		return a.usageError("unknown command %q", cmd)
	}
}

func (a *App) usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s\n%s", ErrUsage, fmt.Sprintf(format, args...), usage)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return a.usageError("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return a.usageError("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	return nil
}

// optionalDate parses s as yyyy-MM-dd; empty means the zero date.
func optionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func (a *App) record(ctx context.Context, name string, args []string, fn func(context.Context, services.EntryInput) (core.Entry, error)) error {
	fs := newFlagSet(name)
	kind := fs.String("kind", "", "expense kind; \"Others\" takes -other")
	other := fs.String("other", "", "custom kind label when -kind is Others")
	category := fs.String("category", "", "category")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	date := fs.String("date", "", "date as yyyy-MM-dd (default today)")
	notes := fs.String("notes", "", "free-form notes")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	occurredOn, err := optionalDate(*date)
	if err != nil {
		return err
	}
	e, err := fn(ctx, services.EntryInput{
		Kind:       *kind,
		OtherKind:  *other,
		Category:   *category,
		Amount:     *amount,
		OccurredOn: occurredOn,
		Notes:      *notes,
	})
	if err != nil {
		return err
	}
	a.Out.Entry(e)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	limit := fs.Int("limit", a.RecentLimit, "number of entries, 0 for all")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	entries, err := a.Backend.Ledger.ListRecent(ctx, *limit)
	if err != nil {
		return err
	}
	a.Out.Entries(entries)
	return nil
}

func (a *App) summary(ctx context.Context) error {
	d, err := a.Backend.Ledger.Snapshot(ctx)
	if err != nil {
		return err
	}
	a.Out.Dashboard(d)
	return nil
}

func (a *App) budget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usageError("budget: missing subcommand (set, clear or show)")
	}
	sub, rest := args[0], args[1:]
	fs := newFlagSet("budget " + sub)
	week := fs.String("week", "", "any day of the week, yyyy-MM-dd (default this week)")

	switch sub {
	case "set":
		amount := fs.String("amount", "", "weekly allocation, e.g. 500")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		weekStart, err := a.weekArg(*week)
		if err != nil {
			return err
		}
		m, err := core.ParseAmount(*amount)
		if err != nil {
			return err
		}
		if err := a.Backend.Budgets.SetBudget(ctx, weekStart, m); err != nil {
			return err
		}
		a.Out.Line("Budget for week of %s set to %s", core.WeekStartFor(weekStart), m.Format(a.Out.symbol))
		return nil

	case "clear":
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		weekStart, err := a.weekArg(*week)
		if err != nil {
			return err
		}
		if err := a.Backend.Budgets.ClearBudget(ctx, weekStart); err != nil {
			return err
		}
		a.Out.Line("Budget for week of %s cleared", core.WeekStartFor(weekStart))
		return nil

	case "show":
		all := fs.Bool("all", false, "list every week")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		if *all {
			budgets, err := a.Backend.Budgets.ListBudgets(ctx)
			if err != nil {
				return err
			}
			a.Out.Budgets(budgets)
			return nil
		}
		weekStart, err := a.weekArg(*week)
		if err != nil {
			return err
		}
		monday := core.WeekStartFor(weekStart)
		budget, ok, err := a.Backend.Budgets.GetBudget(ctx, monday)
		if err != nil {
			return err
		}
		remaining, _, err := a.Backend.Budgets.RemainingForWeek(ctx, monday)
		if err != nil {
			return err
		}
		a.Out.Line("Week:      %s .. %s", monday, core.WeekEndFor(monday))
		a.Out.Line("Budget:    %s", a.Out.Optional(budget, ok))
		a.Out.Line("Remaining: %s", a.Out.Optional(remaining, ok))
		return nil

	default:
		return a.usageError("budget: unknown subcommand %q", sub)
	}
}

func (a *App) weekArg(s string) (core.Date, error) {
	d, err := optionalDate(s)
	if err != nil {
		return core.Date{}, err
	}
	if d.IsZero() {
		return a.Backend.Budgets.CurrentWeekStart(), nil
	}
	return d, nil
}

func (a *App) backup(ctx context.Context, args []string) error {
	fs := newFlagSet("backup")
	to := fs.String("to", "", "destination file or directory (default the backup directory)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	path, err := a.Backend.Backups.Backup(ctx, *to)
	if err != nil {
		return err
	}
	a.Out.Line("Backup written to %s", path)
	return nil
}

func (a *App) restore(ctx context.Context, args []string) error {
	fs := newFlagSet("restore")
	from := fs.String("from", "", "backup file to restore")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*from) == "" {
		return a.usageError("restore: -from is required")
	}
	d, err := a.Backend.Backups.Restore(ctx, *from)
	if err != nil {
		return err
	}
	a.Out.Line("Restored from %s", *from)
	a.Out.Dashboard(d)
	return nil
}
