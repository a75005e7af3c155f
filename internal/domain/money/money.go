// Package money provides the fixed-precision monetary value used for all
// account balances and transaction amounts. Values carry exactly two decimal
// places and are backed by exact decimal arithmetic, never binary floats.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every Money value carries.
const Scale = 2

var ErrInvalidMoney = errors.New("invalid monetary value")

// Money is an immutable fixed-scale decimal amount.
type Money struct {
	value decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{value: decimal.Zero}
}

// Parse converts a decimal string (e.g. "100.50") into a Money value,
// rounding half-up to the fixed scale.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return fromDecimal(d), nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise
// and is intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts an arbitrary decimal into a Money value at the
// fixed scale.
func FromDecimal(d decimal.Decimal) Money {
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{value: d.Round(Scale)}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{value: m.value.Add(other.value)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{value: m.value.Sub(other.value)}
}

// Cmp compares two amounts: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.value.Cmp(other.value)
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.value.Equal(other.value)
}

// GreaterThan reports m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.value.GreaterThan(other.value)
}

// LessThan reports m < other.
func (m Money) LessThan(other Money) bool {
	return m.value.LessThan(other.value)
}

// IsPositive reports m > 0. All caller-supplied amounts must satisfy this.
func (m Money) IsPositive() bool {
	return m.value.IsPositive()
}

// IsNegative reports m < 0.
func (m Money) IsNegative() bool {
	return m.value.IsNegative()
}

// String formats the amount canonically with exactly two decimal places.
func (m Money) String() string {
	return m.value.StringFixed(Scale)
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.value
}

// MarshalJSON encodes the amount as a canonical decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner so Money maps directly from NUMERIC columns.
func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMoney, err)
	}
	*m = fromDecimal(d)
	return nil
}

// Value implements driver.Valuer, emitting the canonical string form.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
