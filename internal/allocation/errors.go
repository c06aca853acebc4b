package allocation

import "errors"

// Common allocation errors
var (
	// ErrNonPositiveAmount is returned when the amount available for
	// allocation is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)
