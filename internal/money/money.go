// Package money converts between decimal amounts as they cross the API and the integer minor
// units (cents) the ledger stores. Nothing inside the ledger holds a decimal.
package money

import (
	"encoding/json"
	"fmt"

	"shopledger-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// MaxMinor is the largest amount accepted, in cents. It keeps a record's field sums and the
// per-range totals well inside int64 and float64 precision.
const MaxMinor int64 = 1_000_000_000_000_000

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(MaxMinor)
)

// ToMinor converts d to cents as round(d * 100). Negative amounts and amounts above MaxMinor
// are rejected.
func ToMinor(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", domain.ErrInvalidAmount, d.String())
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s is out of range", domain.ErrInvalidAmount, d.String())
	}
	return cents.IntPart(), nil
}

// FromMinor converts cents back to a two-decimal amount.
func FromMinor(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders an amount with exactly two fraction digits, e.g. 123.4 -> "123.40".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Number renders an amount as a JSON number with two fraction digits.
func Number(d decimal.Decimal) json.Number {
	return json.Number(Format(d))
}

// Amount is a decimal input that remembers whether it was supplied at all, so that an explicit
// zero can be told apart from an omitted field. Malformed input is kept as invalid instead of
// failing the whole decode, letting the ledger report it as ErrInvalidAmount.
type Amount struct {
	Value   decimal.Decimal
	Set     bool
	Invalid bool
	raw     string
}

// NewAmount returns a supplied amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d, Set: true}
}

// AmountOf parses s into a supplied amount; malformed text yields an invalid one.
func AmountOf(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Set: true, Invalid: true, raw: s}
	}
	return NewAmount(d)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = Amount{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		*a = Amount{Set: true, Invalid: true, raw: string(b)}
		return nil
	}
	*a = NewAmount(d)
	return nil
}

// Minor converts a supplied amount to cents.
func (a Amount) Minor() (int64, error) {
	switch {
	case !a.Set:
		return 0, fmt.Errorf("%w: missing", domain.ErrInvalidAmount)
	case a.Invalid:
		return 0, fmt.Errorf("%w: %s is not a number", domain.ErrInvalidAmount, a.raw)
	}
	return ToMinor(a.Value)
}
