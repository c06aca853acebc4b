// Package allocation distributes a received payment across a customer's
// outstanding invoices.
//
// Two entry points exist:
//   - Auto: oldest-first greedy allocation over the selected invoices, with
//     invoice number as the deterministic tie-break for equal dates.
//   - ValidateManual: checks user-entered allocations without modifying them.
//     Over-allocation is rejected, never silently clamped; truncating a user's
//     figure would hide the error from them.
//
// Both return a Result whose Unapplied amount is never negative: Auto never
// assigns more than the available amount, and ValidateManual fails before
// producing a Result when the allocations exceed it.
//
// The engine is pure and synchronous. The status transitions it predicts
// (Paid, PartiallyPaid) are applied by the backend when the receipt is
// created; the console only submits the computed allocations.
package allocation

import (
	"fmt"
	"sort"

	"rmsbilling/internal/money"
	"rmsbilling/internal/validation"
	"rmsbilling/pkg/models"
)

// Result is the outcome of an allocation run.
type Result struct {
	Allocations    []models.Allocation
	TotalAllocated money.Amount

	// Unapplied is the part of the available amount not assigned to any
	// invoice. Never negative.
	Unapplied money.Amount
}

// Auto distributes available greedily across the selected invoices, oldest
// invoice date first, ties broken by invoice number ascending. Each invoice
// receives min(remaining, outstanding); invoices reached after the amount is
// exhausted receive nothing and are omitted from the result.
//
// Auto is deterministic: the same amount and invoice set always produce the
// same allocations, regardless of input order.
func Auto(available money.Amount, invoices []models.OutstandingInvoice) (Result, error) {
	if !available.IsPositive() {
		return Result{}, fmt.Errorf("allocation: %w: available amount %s", ErrNonPositiveAmount, available)
	}
	for _, inv := range invoices {
		if inv.Outstanding.IsNegative() {
			return Result{}, fmt.Errorf("allocation: invoice %s has negative outstanding balance %s", inv.InvoiceNumber, inv.Outstanding)
		}
	}

	ordered := make([]models.OutstandingInvoice, len(invoices))
	copy(ordered, invoices)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].InvoiceDate.Equal(ordered[j].InvoiceDate) {
			return ordered[i].InvoiceDate.Before(ordered[j].InvoiceDate)
		}
		return ordered[i].InvoiceNumber < ordered[j].InvoiceNumber
	})

	result := Result{Unapplied: available}
	remaining := available
	for _, inv := range ordered {
		if remaining.IsZero() {
			break
		}
		assign := money.Min(remaining, inv.Outstanding)
		if !assign.IsPositive() {
			continue
		}
		result.Allocations = append(result.Allocations, models.Allocation{
			InvoiceID:       inv.ID,
			AmountAllocated: assign,
		})
		result.TotalAllocated += assign
		remaining -= assign
	}
	result.Unapplied = available - result.TotalAllocated
	return result, nil
}

// ValidateManual checks user-entered allocations against the available
// amount and the outstanding balances of the referenced invoices. The check
// per invoice is cumulative: several allocations naming the same invoice must
// not together exceed its outstanding balance. Every violation is reported as
// a field error keyed by allocation index; valid input is returned unchanged
// in the Result.
func ValidateManual(available money.Amount, allocs []models.Allocation, invoices []models.OutstandingInvoice) (Result, error) {
	byID := make(map[string]models.OutstandingInvoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	var errs validation.Errors
	var total money.Amount
	perInvoice := make(map[string]money.Amount, len(allocs))
	for i, a := range allocs {
		field := func(name string) string {
			return fmt.Sprintf("allocations[%d].%s", i, name)
		}
		if a.InvoiceID == "" {
			errs.Add(field("invoiceId"), nil, "invoice reference is required")
			continue
		}
		inv, ok := byID[a.InvoiceID]
		if !ok {
			errs.Add(field("invoiceId"), a.InvoiceID, "invoice is not in the selected outstanding set")
			continue
		}
		if !a.AmountAllocated.IsPositive() {
			errs.Add(field("amountAllocated"), a.AmountAllocated.String(), "allocation must be greater than zero")
			continue
		}
		cumulative := perInvoice[a.InvoiceID] + a.AmountAllocated
		if cumulative > inv.Outstanding {
			if perInvoice[a.InvoiceID].IsPositive() {
				errs.Add(field("amountAllocated"), a.AmountAllocated.String(),
					fmt.Sprintf("allocations to invoice %s total %s, exceeding its outstanding balance %s", inv.InvoiceNumber, cumulative, inv.Outstanding))
			} else {
				errs.Add(field("amountAllocated"), a.AmountAllocated.String(),
					fmt.Sprintf("allocation exceeds outstanding balance %s of invoice %s", inv.Outstanding, inv.InvoiceNumber))
			}
			continue
		}
		perInvoice[a.InvoiceID] = cumulative
		total += a.AmountAllocated
	}

	if err := errs.OrNil(); err != nil {
		return Result{}, err
	}
	if total > available {
		return Result{}, validation.Errors{validation.NewFieldError(
			"allocations", total.String(),
			fmt.Sprintf("total allocated %s exceeds amount available %s", total, available))}
	}

	return Result{
		Allocations:    allocs,
		TotalAllocated: total,
		Unapplied:      available - total,
	}, nil
}

// ExpectedStatus predicts the invoice status the backend will apply once the
// given allocation is recorded against the invoice's outstanding balance.
// A zero allocation leaves the status unchanged.
func ExpectedStatus(inv models.OutstandingInvoice, allocated money.Amount) models.InvoiceStatus {
	switch {
	case allocated >= inv.Outstanding && allocated.IsPositive():
		return models.StatusPaid
	case allocated.IsPositive():
		return models.StatusPartiallyPaid
	default:
		return inv.Status
	}
}
