package core

import "time"

// DaysPerWeek is the length of a budget week, Monday through Sunday.
const DaysPerWeek = 7

// WeekStartFor returns the Monday on or before d.
func WeekStartFor(d Date) Date {
	offset := (DaysPerWeek + int(d.Weekday()-time.Monday)) % DaysPerWeek
	return d.AddDays(-offset)
}

// WeekEndFor returns the Sunday closing the week that contains d.
func WeekEndFor(d Date) Date {
	return WeekStartFor(d).AddDays(DaysPerWeek - 1)
}

// MonthRange returns the first and last day of the given calendar month.
func MonthRange(year, month int) (Date, Date, error) {
	if month < 1 || month > 12 {
		return Date{}, Date{}, &ValidationError{Field: "month", Err: ErrInvalidMonth}
	}
	first := NewDate(year, month, 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last, nil
}
