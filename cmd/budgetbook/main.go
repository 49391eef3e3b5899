package main

import (
	"errors"
	"fmt"
	"os"

	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
	"budgetbook/internal/middleware/trace"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg, logger, err := cli.Bootstrap()
	if err != nil {
		return 1
	}

	ctx, stop := cli.CommandContext()
	defer stop()

	res, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		return 1
	}
	defer func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Cleanup failed", applog.FieldError, err)
			}
		}
	}()

	app := &cli.App{
		Backend:     res,
		Out:         cli.NewRenderer(os.Stdout, cfg.CurrencySymbol),
		RecentLimit: cfg.RecentLimit,
		Trace:       trace.NewMiddleware(logger),
	}
	return exitCode(app.Run(ctx, os.Args[1:]), logger, cfg)
}

func exitCode(err error, logger *applog.Logger, cfg *config.Config) int {
	if err == nil {
		return 0
	}

	var budgetErr *core.BudgetRequiredError
	switch {
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		return 2
	case errors.As(err, &budgetErr):
		fmt.Fprintf(os.Stderr, "No budget set for the week of %s. Set one first: budgetbook budget set -amount <amount>\n",
			budgetErr.WeekStart)
		return 1
	case core.IsValidation(err):
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		return 1
	default:
		logger.Error("Command failed", applog.FieldError, err, applog.FieldErrorType, applog.ErrorType(err), "db_path", cfg.DBPath)
		return 1
	}
}
