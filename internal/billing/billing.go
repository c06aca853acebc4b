// Package billing computes invoice line and document totals.
//
// The package is the single authority for invoice arithmetic: line amounts,
// per-line tax, and document totals are always derived here from quantity,
// rate and tax rate, never stored or edited independently. All arithmetic is
// fixed-point via the money package.
//
// Two tax modes exist:
//   - TaxPerLine: each line item carries its own tax rate (the default; this
//     is what the backend's invoice payload stores per line).
//   - TaxDocumentSplit: the subtotal is taxed at a single document-level rate,
//     reported either as equal CGST/SGST halves (intra-state supply) or as one
//     IGST figure (inter-state supply).
//
// The caller selects the mode per document; nothing here defaults silently
// to a hardcoded rate.
package billing

import (
	"rmsbilling/internal/money"
	"rmsbilling/pkg/models"
)

// TaxMode selects how document tax is computed.
type TaxMode int

const (
	// TaxPerLine derives document tax from each line item's own tax rate.
	TaxPerLine TaxMode = iota

	// TaxDocumentSplit taxes the subtotal at one document-level rate,
	// split as CGST/SGST or reported as IGST.
	TaxDocumentSplit
)

// DocumentTax configures TaxDocumentSplit mode.
type DocumentTax struct {
	// Rate is the combined document GST rate (e.g. 18 for 9% CGST + 9% SGST).
	Rate money.Rate

	// Interstate selects a single IGST figure instead of the CGST/SGST split.
	Interstate bool
}

// Totals are the derived document-level figures.
type Totals struct {
	Subtotal money.Amount `json:"subtotal"`
	TaxTotal money.Amount `json:"taxTotal"`
	Total    money.Amount `json:"total"`

	// Populated only in TaxDocumentSplit mode.
	CGST money.Amount `json:"cgst,omitempty"`
	SGST money.Amount `json:"sgst,omitempty"`
	IGST money.Amount `json:"igst,omitempty"`
}

// ComputeLine fills the derived fields of a line item from its quantity,
// rate and tax rate. The input is returned with Amount, TaxAmount and Total
// overwritten; any previously stored values are discarded.
func ComputeLine(item models.LineItem) models.LineItem {
	item.Amount = money.LineAmount(item.Quantity, item.Rate)
	item.TaxAmount = money.LineTax(item.Amount, item.TaxRate)
	item.Total = money.LineTotal(item.Amount, item.TaxAmount)
	return item
}

// ComputeLines recomputes the derived fields of every line item.
func ComputeLines(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		out[i] = ComputeLine(item)
	}
	return out
}

// ComputeBaseLines fills only the line amounts, for documents taxed at a
// single document-level rate. Per-line tax fields are zeroed; the tax lives
// in the document totals.
func ComputeBaseLines(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		item.Amount = money.LineAmount(item.Quantity, item.Rate)
		item.TaxRate = money.Rate{}
		item.TaxAmount = 0
		item.Total = item.Amount
		out[i] = item
	}
	return out
}

// ComputeTotals sums recomputed line items into document totals using
// per-line tax. An empty list yields all-zero totals; whether an empty
// document is submittable is decided by ValidateDraft, not here.
func ComputeTotals(items []models.LineItem) Totals {
	var t Totals
	for _, item := range items {
		line := ComputeLine(item)
		t.Subtotal += line.Amount
		t.TaxTotal += line.TaxAmount
	}
	t.Total = t.Subtotal + t.TaxTotal
	return t
}

// ComputeTotalsWithDocumentTax sums line amounts into a subtotal and taxes
// the subtotal at the configured document rate. In the intra-state split,
// CGST is the half-rate tax on the subtotal and SGST is the remainder of the
// full tax, so the two halves always reconcile to the tax total even when
// the half-rate division leaves an odd paisa.
func ComputeTotalsWithDocumentTax(items []models.LineItem, tax DocumentTax) Totals {
	var t Totals
	for _, item := range items {
		t.Subtotal += money.LineAmount(item.Quantity, item.Rate)
	}
	t.TaxTotal = money.LineTax(t.Subtotal, tax.Rate)
	t.Total = t.Subtotal + t.TaxTotal
	if tax.Interstate {
		t.IGST = t.TaxTotal
		return t
	}
	t.CGST = money.LineTax(t.Subtotal, tax.Rate.Half())
	t.SGST = t.TaxTotal - t.CGST
	return t
}
