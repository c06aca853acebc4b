package creditnote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmsbilling/internal/money"
	"rmsbilling/internal/validation"
	"rmsbilling/pkg/models"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		rate        string
		gstAmount   string
		totalCredit string
	}{
		{name: "18 percent", amount: "2500", rate: "18", gstAmount: "450.00", totalCredit: "2950.00"},
		{name: "12 percent", amount: "1000", rate: "12", gstAmount: "120.00", totalCredit: "1120.00"},
		{name: "zero rate", amount: "500", rate: "0", gstAmount: "0.00", totalCredit: "500.00"},
		{name: "fractional rounds to paisa", amount: "333.33", rate: "18", gstAmount: "60.00", totalCredit: "393.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := money.ParseRate(tt.rate)
			require.NoError(t, err)

			calc := Calculate(money.MustParse(tt.amount), rate)
			assert.Equal(t, tt.gstAmount, calc.GSTAmount.String())
			assert.Equal(t, tt.totalCredit, calc.TotalCredit.String())
		})
	}
}

func TestDefaultRate(t *testing.T) {
	inv := &models.Invoice{
		LineItems: []models.LineItem{
			{TaxRate: money.RateFromInt(18)},
			{TaxRate: money.RateFromInt(12)},
		},
	}

	assert.True(t, DefaultRate(inv).Equal(money.RateFromInt(18)))
	assert.True(t, DefaultRate(nil).IsZero())
	assert.True(t, DefaultRate(&models.Invoice{}).IsZero())
}

func TestValidateDraft(t *testing.T) {
	source := &models.Invoice{
		ID:         "inv-1",
		CustomerID: "cust-1",
		Total:      money.MustParse("2950"),
	}

	valid := func() *models.CreditNoteDraft {
		return &models.CreditNoteDraft{
			CreditNoteID:   "CN-2024-001",
			CreditNoteDate: models.NewDate(2024, 6, 1),
			CustomerID:     "cust-1",
			InvoiceID:      "inv-1",
			Reason:         models.ReasonDiscount,
			Amount:         money.MustParse("2500"),
			GSTRate:        money.RateFromInt(18),
		}
	}

	t.Run("valid draft passes", func(t *testing.T) {
		require.NoError(t, ValidateDraft(valid(), source))
	})

	t.Run("amount equal to invoice total passes", func(t *testing.T) {
		d := valid()
		d.Amount = source.Total
		require.NoError(t, ValidateDraft(d, source))
	})

	tests := []struct {
		name   string
		mutate func(*models.CreditNoteDraft)
		source *models.Invoice
		field  string
	}{
		{
			name:   "amount above invoice total",
			mutate: func(d *models.CreditNoteDraft) { d.Amount = money.MustParse("2950.01") },
			source: source,
			field:  "amount",
		},
		{
			name:   "zero amount",
			mutate: func(d *models.CreditNoteDraft) { d.Amount = 0 },
			source: source,
			field:  "amount",
		},
		{
			name:   "unknown reason",
			mutate: func(d *models.CreditNoteDraft) { d.Reason = "writeoff" },
			source: source,
			field:  "reason",
		},
		{
			name:   "missing invoice reference",
			mutate: func(d *models.CreditNoteDraft) { d.InvoiceID = "" },
			source: source,
			field:  "invoiceId",
		},
		{
			name:   "referenced invoice not found",
			mutate: func(d *models.CreditNoteDraft) {},
			source: nil,
			field:  "invoiceId",
		},
		{
			name:   "invoice belongs to another customer",
			mutate: func(d *models.CreditNoteDraft) { d.CustomerID = "cust-2" },
			source: source,
			field:  "invoiceId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)

			err := ValidateDraft(d, tt.source)
			require.Error(t, err)

			fields, ok := validation.Fields(err)
			require.True(t, ok, "expected field errors, got %v", err)

			names := make([]string, len(fields))
			for i, fe := range fields {
				names[i] = fe.Field
			}
			assert.Contains(t, names, tt.field)
		})
	}

	t.Run("zero GST rate is allowed", func(t *testing.T) {
		d := valid()
		d.GSTRate = money.Rate{}
		require.NoError(t, ValidateDraft(d, source))
	})
}
