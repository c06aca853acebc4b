package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a tax percentage, e.g. 18 for 18% GST or 12.5 for 12.5%.
// Rates serialize as plain JSON numbers, the same convention as Amount.
type Rate struct {
	d decimal.Decimal
}

// RateFromInt returns a Rate for a whole percentage.
func RateFromInt(percent int64) Rate {
	return Rate{d: decimal.NewFromInt(percent)}
}

// ParseRate converts a decimal percentage string into a Rate.
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, fmt.Errorf("money: invalid rate %q: %w", s, err)
	}
	return Rate{d: d}, nil
}

// Decimal returns the percentage as an exact decimal.
func (r Rate) Decimal() decimal.Decimal { return r.d }

// String formats the rate the way it was entered (18, 12.5).
func (r Rate) String() string { return r.d.String() }

// IsNegative reports whether the rate is below zero.
func (r Rate) IsNegative() bool { return r.d.IsNegative() }

// IsZero reports whether the rate is exactly zero.
func (r Rate) IsZero() bool { return r.d.IsZero() }

// Equal reports whether two rates represent the same percentage.
func (r Rate) Equal(other Rate) bool { return r.d.Equal(other.d) }

// Half returns the rate divided by two, used for the CGST/SGST split.
func (r Rate) Half() Rate {
	return Rate{d: r.d.Div(decimal.NewFromInt(2))}
}

// MarshalJSON encodes the rate as a plain JSON number.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.d.String()), nil
}

// UnmarshalJSON accepts a plain or quoted JSON number.
func (r *Rate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseRate(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
