package billing

import (
	"fmt"

	"rmsbilling/internal/validation"
	"rmsbilling/pkg/models"
)

// ValidateDraft checks an invoice draft before submission. Every violation
// is reported as a field error; nothing is clamped or defaulted. The policy
// for quantity is uniform: a quantity below one is rejected.
func ValidateDraft(d *models.InvoiceDraft) error {
	var errs validation.Errors

	if d.InvoiceNumber == "" {
		errs.Add("invoiceNumber", nil, "invoice number is required")
	}
	if d.CustomerID == "" {
		errs.Add("customerId", nil, "customer is required")
	}
	if d.InvoiceDate.IsZero() {
		errs.Add("invoiceDate", nil, "invoice date is required")
	}
	if !d.DueDate.IsZero() && d.DueDate.Before(d.InvoiceDate) {
		errs.Add("dueDate", d.DueDate.String(), "due date is before invoice date")
	}

	if d.DocumentGST != nil && d.DocumentGST.Rate.IsNegative() {
		errs.Add("documentGst.rate", d.DocumentGST.Rate.String(), "document GST rate must not be negative")
	}

	if len(d.LineItems) == 0 {
		errs.Add("lineItems", nil, "at least one line item is required")
	}
	for i, item := range d.LineItems {
		errs = append(errs, validateLineItem(i, item)...)
	}

	return errs.OrNil()
}

func validateLineItem(index int, item models.LineItem) validation.Errors {
	var errs validation.Errors
	field := func(name string) string {
		return fmt.Sprintf("lineItems[%d].%s", index, name)
	}

	if item.ServiceTypeID == "" {
		errs.Add(field("serviceTypeId"), nil, "service type is required")
	}
	if item.Quantity < 1 {
		errs.Add(field("quantity"), item.Quantity, "quantity must be a positive integer")
	}
	if item.Rate.IsNegative() {
		errs.Add(field("rate"), item.Rate.String(), "rate must not be negative")
	}
	if item.TaxRate.IsNegative() {
		errs.Add(field("taxRate"), item.TaxRate.String(), "tax rate must not be negative")
	}
	return errs
}
