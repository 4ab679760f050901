// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents so sums and comparisons are exact;
// shopspring/decimal does the parsing, rounding and formatting.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Remaining balances may be negative; stored
// amounts never are.
type Money struct {
	Cents int64
}

// maxMoney is the largest single amount accepted, in units. Sums of many
// such amounts still fit in int64 cents.
var maxMoney = decimal.New(1, 13)

// ParseMoney converts a decimal string to Money with half-up rounding to
// two fraction digits.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative values are rejected.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents. Negative or oversized values are
// rejected.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() || d.GreaterThan(maxMoney) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// NewMoney returns units.cents as Money, e.g. NewMoney(12, 34).
func NewMoney(units, cents int64) Money {
	return Money{Cents: units*100 + cents}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m+o, saturating at the int64 bounds instead of wrapping.
func (m Money) Add(o Money) Money {
	switch {
	case o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents < 0 && m.Cents < math.MinInt64-o.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m-o, saturating at the int64 bounds instead of wrapping.
func (m Money) Sub(o Money) Money {
	switch {
	case o.Cents < 0 && m.Cents > math.MaxInt64+o.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents > 0 && m.Cents < math.MinInt64+o.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: m.Cents - o.Cents}
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	switch {
	case m.Cents == math.MinInt64:
		return Money{Cents: math.MaxInt64}
	case m.Cents < 0:
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// String formats m with exactly two fraction digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the value as a float64 for display purposes only.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}
