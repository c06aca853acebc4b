package billing_test

import (
	"fmt"

	"rmsbilling/internal/billing"
	"rmsbilling/internal/money"
	"rmsbilling/pkg/models"
)

// Example demonstrates computing invoice totals from raw line inputs.
func Example() {
	items := []models.LineItem{
		{ServiceTypeID: "svc-audit", Quantity: 2, Rate: money.MustParse("1000"), TaxRate: money.RateFromInt(18)},
		{ServiceTypeID: "svc-filing", Quantity: 1, Rate: money.MustParse("500"), TaxRate: money.RateFromInt(12)},
	}

	totals := billing.ComputeTotals(items)

	fmt.Printf("Subtotal: %s\n", totals.Subtotal)
	fmt.Printf("Tax:      %s\n", totals.TaxTotal)
	fmt.Printf("Total:    %s\n", totals.Total)
	// Output:
	// Subtotal: 2500.00
	// Tax:      420.00
	// Total:    2920.00
}

// Example_documentSplit demonstrates the document-level CGST/SGST split used
// for intra-state supply.
func Example_documentSplit() {
	items := []models.LineItem{
		{ServiceTypeID: "svc-audit", Quantity: 1, Rate: money.MustParse("1000.01")},
	}

	totals := billing.ComputeTotalsWithDocumentTax(items, billing.DocumentTax{
		Rate: money.RateFromInt(18),
	})

	fmt.Printf("CGST: %s\n", totals.CGST)
	fmt.Printf("SGST: %s\n", totals.SGST)
	fmt.Printf("Tax:  %s\n", totals.TaxTotal)
	// Output:
	// CGST: 90.00
	// SGST: 90.00
	// Tax:  180.00
}
