// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from caller
// text and rendering cents back as currency strings.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxWholeUnits = decimal.New(math.MaxInt64/100, 0)

// ParseAmount converts a decimal string to signed cents.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. When
// both appear, commas are thousands separators and must group by three
// (1,234.50). A lone comma is a decimal separator only when one or two
// digits follow it; "1,234" could be either reading and is rejected, as is
// more than one comma without a dot. Values with more than two fractional
// digits are rounded half away from zero.
//
// Examples:
//
//	ParseAmount("12.34")    -> 1234
//	ParseAmount("-12,34")   -> -1234
//	ParseAmount("12,5")     -> 1250
//	ParseAmount("12.345")   -> 1235
//	ParseAmount("1,234.50") -> 123450
//	ParseAmount("1,234")    -> error
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	s, ok := normalizeSeparators(s)
	if !ok {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if strings.ContainsAny(s, "eE") {
		// exponent notation is never typed by a person
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	d = d.Round(2)
	if d.Abs().GreaterThan(maxWholeUnits) {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return Money{Cents: d.Shift(2).IntPart()}, nil
}

// normalizeSeparators rewrites s to use a single dot as the decimal
// separator, reporting false for comma placements that are ambiguous.
func normalizeSeparators(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	if whole, _, found := strings.Cut(s, "."); found {
		groups := strings.Split(whole, ",")
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return "", false
			}
		}
		return strings.ReplaceAll(s, ",", ""), true
	}
	whole, frac, _ := strings.Cut(s, ",")
	if strings.Contains(frac, ",") || len(frac) == 0 || len(frac) > 2 {
		return "", false
	}
	return whole + "." + frac, true
}

// ParsePositiveAmount is ParseAmount restricted to values greater than zero.
// Both the add and the subtract paths take a positive magnitude.
func ParsePositiveAmount(s string) (Money, error) {
	m, err := ParseAmount(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents <= 0 {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return m, nil
}

// Decimal returns the amount in whole currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two fractional digits and no symbol.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the amount as a currency string, e.g. "$380.00" or
// "-$30.00".
func (m Money) Format(symbol string) string {
	abs := m.Decimal().Abs().StringFixed(2)
	if m.Cents < 0 {
		return "-" + symbol + abs
	}
	return symbol + abs
}
