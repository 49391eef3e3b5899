package core

import (
	"strings"
	"time"
)

// DateLayout is the on-disk and command-line form of a calendar date.
const DateLayout = "2006-01-02"

// ReservedBudgetKind is the entry kind older ledgers used to record a
// weekly allocation as a transaction. Such rows never count toward a week's
// spending.
const ReservedBudgetKind = "Weekly Budget"

// OthersKind is the kind a caller selects when it supplies its own label.
const OthersKind = "Others"

type (
	// Date is a calendar day. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	// Money is a signed amount in cents.
	Money struct {
		Cents int64
	}

	// Entry is one recorded monetary event. Positive amounts are expenses,
	// negative amounts are credits.
	Entry struct {
		ID         int64
		Kind       string
		Category   string
		Amount     Money
		OccurredOn Date
		Notes      string
		CreatedAt  time.Time
	}

	// WeeklyBudget is the allocation for the week starting on WeekStart.
	WeeklyBudget struct {
		WeekStart Date
		Amount    Money
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a yyyy-MM-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

// String renders the date as yyyy-MM-dd.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return nil
}

// Negate returns the amount with its sign flipped.
func (m Money) Negate() Money {
	return Money{Cents: -m.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Validate checks the fields a caller supplies on insert. Kind and
// Category are checked after trimming.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Kind) == "" {
		return &ValidationError{Field: "kind", Err: ErrEmptyKind}
	}
	if strings.TrimSpace(e.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if err := e.OccurredOn.Validate(); err != nil {
		return err
	}
	return nil
}

// Normalized returns a copy with trimmed labels.
func (e Entry) Normalized() Entry {
	e.Kind = strings.TrimSpace(e.Kind)
	e.Category = strings.TrimSpace(e.Category)
	return e
}

// ResolveKind maps a selected kind and an optional custom label to the
// stored kind. Selecting "Others" stores "Others:<custom>".
func ResolveKind(selected, custom string) string {
	selected = strings.TrimSpace(selected)
	custom = strings.TrimSpace(custom)
	if strings.EqualFold(selected, OthersKind) {
		if custom == "" {
			return ""
		}
		return OthersKind + ":" + custom
	}
	return selected
}
