// Package creditnote computes and validates credit notes issued against
// paid invoices.
//
// The GST rate of a credit note defaults to the tax rate of the first line
// item of the referenced invoice but remains user-editable. The credited
// base amount must not exceed the referenced invoice's total; the check is
// enforced uniformly here, before submission.
package creditnote

import (
	"fmt"

	"rmsbilling/internal/money"
	"rmsbilling/internal/validation"
	"rmsbilling/pkg/models"
)

// Calculation holds the derived figures of a credit note.
type Calculation struct {
	GSTAmount   money.Amount `json:"gstAmount"`
	TotalCredit money.Amount `json:"totalCredit"`
}

// Calculate derives gstAmount = amount × gstRate / 100 and
// totalCredit = amount + gstAmount.
func Calculate(amount money.Amount, gstRate money.Rate) Calculation {
	gst := money.LineTax(amount, gstRate)
	return Calculation{
		GSTAmount:   gst,
		TotalCredit: money.LineTotal(amount, gst),
	}
}

// DefaultRate returns the tax rate of the invoice's first line item, the
// seed value for a credit note referencing that invoice. An invoice without
// line items yields the zero rate.
func DefaultRate(inv *models.Invoice) money.Rate {
	if inv == nil || len(inv.LineItems) == 0 {
		return money.Rate{}
	}
	return inv.LineItems[0].TaxRate
}

// ValidateDraft checks a credit-note draft against its source invoice.
// source may be nil when the referenced invoice could not be loaded, in
// which case the reference itself is reported as invalid.
func ValidateDraft(d *models.CreditNoteDraft, source *models.Invoice) error {
	var errs validation.Errors

	if d.CreditNoteID == "" {
		errs.Add("creditNoteId", nil, "credit note ID is required")
	}
	if d.CreditNoteDate.IsZero() {
		errs.Add("creditNoteDate", nil, "credit note date is required")
	}
	if d.CustomerID == "" {
		errs.Add("customerId", nil, "customer is required")
	}
	if !d.Reason.Valid() {
		errs.Add("reason", string(d.Reason), "reason must be one of discount, return, correction, cancellation, goodwill")
	}
	if !d.Amount.IsPositive() {
		errs.Add("amount", d.Amount.String(), "amount must be greater than zero")
	}
	if d.GSTRate.IsNegative() {
		errs.Add("gstRate", d.GSTRate.String(), "GST rate must not be negative")
	}

	switch {
	case d.InvoiceID == "":
		errs.Add("invoiceId", nil, "invoice reference is required")
	case source == nil:
		errs.Add("invoiceId", d.InvoiceID, "referenced invoice not found")
	case source.CustomerID != d.CustomerID:
		errs.Add("invoiceId", d.InvoiceID, "referenced invoice belongs to a different customer")
	case d.Amount > source.Total:
		errs.Add("amount", d.Amount.String(),
			fmt.Sprintf("credit amount exceeds invoice total %s", source.Total))
	}

	return errs.OrNil()
}
