package log

import (
	"context"
	"errors"

	"budgetbook/internal/core"
)

// StructuredLogger logs ledger events with consistent fields. A logger
// carried in the context (see IntoContext) takes precedence, restamped with
// this logger's component, so per-run attributes reach every event.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	if logger == nil {
		logger = Discard()
	}
	return &StructuredLogger{
		logger: logger,
	}
}

func (sl *StructuredLogger) from(ctx context.Context) *Logger {
	if logger, ok := contextLogger(ctx); ok {
		return logger.WithComponent(sl.logger.Component())
	}
	return sl.logger
}

// LogEntryRecorded logs a successful insert
func (sl *StructuredLogger) LogEntryRecorded(ctx context.Context, e core.Entry) {
	fields := NewFields().
		WithEntry(e.ID, e.Kind, e.Category, e.Amount.Cents, e.OccurredOn.String()).
		WithOperation(OpInsert)

	sl.from(ctx).InfoContext(ctx, "Entry recorded", fields.ToSlice()...)
}

// LogBudgetSet logs a weekly budget upsert
func (sl *StructuredLogger) LogBudgetSet(ctx context.Context, weekStart core.Date, amount core.Money) {
	fields := NewFields().
		WithWeek(weekStart.String()).
		WithAmount(amount.Cents).
		WithOperation(OpSet)

	sl.from(ctx).InfoContext(ctx, "Weekly budget set", fields.ToSlice()...)
}

// LogBudgetCleared logs a weekly budget removal
func (sl *StructuredLogger) LogBudgetCleared(ctx context.Context, weekStart core.Date) {
	fields := NewFields().
		WithWeek(weekStart.String()).
		WithOperation(OpClear)

	sl.from(ctx).InfoContext(ctx, "Weekly budget cleared", fields.ToSlice()...)
}

// LogFileOperation logs a completed backup or restore
func (sl *StructuredLogger) LogFileOperation(ctx context.Context, op string, path string) {
	fields := NewFields().
		WithPath(path).
		WithOperation(op)

	sl.from(ctx).InfoContext(ctx, "Ledger file operation completed", fields.ToSlice()...)
}

// LogError logs an error with structured context. Validation and budget
// gate refusals are expected outcomes and go out at warn level.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	logger := sl.from(ctx)
	errorType := ErrorType(err)
	allFields := fields.
		WithError(err).
		WithErrorType(errorType).
		WithOperation(operation)

	if errorType == ErrorTypeValidation || errorType == ErrorTypeBudgetRequired {
		logger.WarnContext(ctx, msg, allFields.ToSlice()...)
		return
	}
	logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}

// ErrorType classifies err into one of the ErrorType constants.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsValidation(err):
		return ErrorTypeValidation
	case errors.Is(err, core.ErrBudgetRequired):
		return ErrorTypeBudgetRequired
	case errors.Is(err, core.ErrStorage):
		return ErrorTypeStorage
	default:
		return ErrorTypeInternal
	}
}
