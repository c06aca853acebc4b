package money

import "github.com/shopspring/decimal"

// LineAmount returns quantity × rate for a single billable row.
// Quantity validation (positive integer) happens at the document layer;
// the primitive itself is a pure multiplication.
func LineAmount(quantity int64, rate Amount) Amount {
	return Amount(quantity) * rate
}

// LineTax returns amount × taxRate / 100, rounded half-up to the paisa.
// This is the only place a monetary value is divided.
func LineTax(amount Amount, taxRate Rate) Amount {
	tax := amount.Decimal().Mul(taxRate.Decimal()).Div(decimal.NewFromInt(100))
	return Amount(tax.Round(2).Shift(2).IntPart())
}

// LineTotal returns amount + tax.
func LineTotal(amount, tax Amount) Amount {
	return amount + tax
}
