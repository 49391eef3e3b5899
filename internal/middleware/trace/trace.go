// Package trace stamps each command run with an id and logs its start,
// outcome and duration.
package trace

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
)

// CommandFunc is one unit of traced work.
type CommandFunc func(ctx context.Context) error

// Middleware wraps commands with run tracing
type Middleware struct {
	logger *applog.Logger
	now    func() time.Time
}

// NewMiddleware creates a new trace middleware. A nil logger discards.
func NewMiddleware(logger *applog.Logger) *Middleware {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Middleware{logger: logger, now: time.Now}
}

// Wrap returns next with a run-scoped logger in its context, carrying the
// run id and command name, and start and completion records around it.
func (m *Middleware) Wrap(command string, next CommandFunc) CommandFunc {
	return func(ctx context.Context) error {
		start := m.now()
		runID := GenerateRunID()
		logger := m.logger.With("run_id", runID, "command", command)
		ctx = applog.IntoContext(ctx, logger)

		logger.DebugContext(ctx, "Command started")

		err := next(ctx)

		duration := m.now().Sub(start)
		attrs := []any{
			"duration_ms", duration.Milliseconds(),
			"success", err == nil,
		}
		if err != nil {
			attrs = append(attrs, applog.FieldError, err.Error(), applog.FieldErrorType, applog.ErrorType(err))
		}
		logger.Log(ctx, levelFor(err), "Command completed", attrs...)
		return err
	}
}

// levelFor picks the record level from the outcome: caller mistakes are
// warnings, anything else that failed is an error.
func levelFor(err error) slog.Level {
	switch {
	case err == nil:
		return slog.LevelInfo
	case core.IsValidation(err), errors.Is(err, core.ErrBudgetRequired):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// GenerateRunID creates a short unique id for a command run
func GenerateRunID() string {
	return "run_" + uuid.NewString()[:8]
}
