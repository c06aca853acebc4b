// Package money provides fixed-point currency arithmetic for billing documents.
//
// Amounts are stored as int64 paise (hundredths of a rupee) so that line-item
// sums and payment allocations accumulate without floating-point drift. The
// only operation that can produce a fraction of a paisa is the tax-percentage
// division; that single division is performed with shopspring/decimal and
// rounded half-up to the paisa. Everything else is exact integer arithmetic.
//
// Wire Format:
//   - Monetary values are serialized as plain JSON numbers in major units
//     with two decimal places (e.g. 2920.00), matching the backend contract.
//   - Inputs carrying more than two decimal places are rejected at parse
//     time rather than silently rounded.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in paise. The zero value is zero rupees.
type Amount int64

// FromPaise returns an Amount holding the given number of paise.
func FromPaise(paise int64) Amount {
	return Amount(paise)
}

// FromRupees returns an Amount for a whole number of rupees.
func FromRupees(rupees int64) Amount {
	return Amount(rupees * 100)
}

// Parse converts a decimal string in major units ("2500", "1234.50") into an
// Amount. Values with more than two decimal places are rejected.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return fromDecimal(d)
}

// MustParse is Parse for trusted literals, typically in tests. It panics on
// malformed input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func fromDecimal(d decimal.Decimal) (Amount, error) {
	paise := d.Shift(2)
	if !paise.IsInteger() {
		return 0, fmt.Errorf("money: %w: %s has more than two decimal places", ErrTooPrecise, d)
	}
	return Amount(paise.IntPart()), nil
}

// Decimal returns the amount in major units as an exact decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String formats the amount in major units with two decimal places.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool { return a < 0 }

// IsPositive reports whether the amount is above zero.
func (a Amount) IsPositive() bool { return a > 0 }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a == 0 }

// MarshalJSON encodes the amount as a plain JSON number in major units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a plain JSON number (or a quoted number, which some
// backends emit for large values) in major units.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Min returns the smaller of two amounts.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}
