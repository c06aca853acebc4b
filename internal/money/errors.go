package money

import "errors"

// Common money parsing errors
var (
	// ErrTooPrecise is returned when a monetary input carries more than two
	// decimal places. Sub-paisa amounts are rejected, never silently rounded.
	ErrTooPrecise = errors.New("amount has sub-paisa precision")
)
