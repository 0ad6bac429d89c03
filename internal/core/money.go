// Package core holds the ledger's domain types.
//
// Amounts are kept as integer cents. Decimal input is parsed through
// shopspring/decimal so that rounding happens exactly once, at entry.
package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money is a currency-agnostic amount in cents.
type Money struct {
	Cents int64
}

var (
	ErrMissingAmount  = errors.New("missing amount")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountOverflow = errors.New("amount overflow")
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Cents is shorthand for Money{Cents: c}.
func Cents(c int64) Money {
	return Money{Cents: c}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m+o, or ErrAmountOverflow if the sum does not fit in int64.
func (m Money) Add(o Money) (Money, error) {
	s := m.Cents + o.Cents
	if (o.Cents > 0 && s < m.Cents) || (o.Cents < 0 && s > m.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: s}, nil
}

// Sub returns m-o, or ErrAmountOverflow.
func (m Money) Sub(o Money) (Money, error) {
	if o.Cents == math.MinInt64 {
		return Money{}, ErrAmountOverflow
	}
	return m.Add(Money{Cents: -o.Cents})
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 is for display and spreadsheet export only.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// ParseAmount converts a user-entered decimal string to Money.
//
// Both "12.34" and "12,34" are accepted. A third decimal rounds half-up
// ("1.005" -> 1.01). Zero, negative and out-of-range values are rejected.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrMissingAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not numeric", ErrInvalidAmount, s)
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents. Only positive amounts are valid.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(maxCents) {
		return Money{}, ErrAmountOverflow
	}
	m := Money{Cents: cents.IntPart()}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func (m Money) split() (neg bool, whole, frac uint64) {
	u := uint64(m.Cents)
	if m.Cents < 0 {
		neg = true
		u = ^u + 1
	}
	return neg, u / 100, u % 100
}

// String renders the amount as a plain decimal, e.g. "-12.50".
func (m Money) String() string {
	neg, whole, frac := m.split()
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
}

// MarshalJSON encodes Money as an unquoted decimal number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// Grouping selects how the integer part of a displayed amount is split.
type Grouping int

const (
	// GroupIndian keeps the last three digits together and pairs the rest,
	// as en-IN does: 12,34,567.89.
	GroupIndian Grouping = iota
	// GroupWestern groups in threes: 1,234,567.89.
	GroupWestern
)

// ParseGrouping maps "indian" or "western" to a Grouping. Empty means indian.
func ParseGrouping(s string) (Grouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "indian", "en-in":
		return GroupIndian, nil
	case "western", "en-us":
		return GroupWestern, nil
	}
	return GroupIndian, fmt.Errorf("unknown digit grouping %q", s)
}

// Format renders the amount for display with en-IN grouping,
// e.g. Format("Rs") -> "Rs 1,00,000.00". An empty symbol omits the prefix.
func (m Money) Format(symbol string) string {
	return m.FormatGrouped(symbol, GroupIndian)
}

func (m Money) FormatGrouped(symbol string, g Grouping) string {
	neg, whole, frac := m.split()
	var digits string
	if g == GroupWestern {
		digits = humanize.Comma(int64(whole))
	} else {
		digits = groupIndian(whole)
	}
	out := fmt.Sprintf("%s.%02d", digits, frac)
	if symbol != "" {
		out = symbol + " " + out
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupIndian(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	lead := len(head) % 2
	if lead == 1 {
		b.WriteString(head[:1])
	}
	for i := lead; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}
