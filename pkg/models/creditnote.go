package models

import "rmsbilling/internal/money"

// CreditReason classifies why a credit note was issued.
type CreditReason string

const (
	ReasonDiscount     CreditReason = "discount"
	ReasonReturn       CreditReason = "return"
	ReasonCorrection   CreditReason = "correction"
	ReasonCancellation CreditReason = "cancellation"
	ReasonGoodwill     CreditReason = "goodwill"
)

// CreditReasons lists the accepted credit reasons in display order.
var CreditReasons = []CreditReason{
	ReasonDiscount,
	ReasonReturn,
	ReasonCorrection,
	ReasonCancellation,
	ReasonGoodwill,
}

// Valid reports whether the reason is one of the accepted values.
func (r CreditReason) Valid() bool {
	for _, known := range CreditReasons {
		if r == known {
			return true
		}
	}
	return false
}

// CreditNoteDraft is a credit note being assembled in a console session.
//
// GSTRate defaults to the tax rate of the first line item of the referenced
// invoice but stays user-editable. GSTAmount and TotalCredit are derived by
// the credit-note calculator and sent alongside the base amount. An empty
// CreditNoteID is filled from the per-year credit note sequence (CN-YYYY-NNN)
// at submission.
type CreditNoteDraft struct {
	CreditNoteID   string       `json:"creditNoteId"`
	CreditNoteDate Date         `json:"creditNoteDate"`
	CustomerID     string       `json:"customerId" validate:"required"`
	InvoiceID      string       `json:"invoiceId" validate:"required"`
	Reason         CreditReason `json:"reason"`
	Amount         money.Amount `json:"amount"`
	GSTRate        money.Rate   `json:"gstRate"`
	Notes          string       `json:"notes,omitempty"`
}

// CreditNote is a stored credit note as returned by the backend.
type CreditNote struct {
	ID             string       `json:"id"`
	CreditNoteID   string       `json:"creditNoteId"`
	CreditNoteDate Date         `json:"creditNoteDate"`
	CustomerID     string       `json:"customerId"`
	CustomerName   string       `json:"customerName,omitempty"`
	InvoiceID      string       `json:"invoiceId"`
	InvoiceNumber  string       `json:"invoiceNumber,omitempty"`
	Reason         CreditReason `json:"reason"`
	Amount         money.Amount `json:"amount"`
	GSTRate        money.Rate   `json:"gstRate"`
	GSTAmount      money.Amount `json:"gstAmount"`
	TotalCredit    money.Amount `json:"totalCredit"`
	Notes          string       `json:"notes,omitempty"`
}
