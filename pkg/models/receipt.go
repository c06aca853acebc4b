package models

import "rmsbilling/internal/money"

// PaymentMethod is how a customer payment was received.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentCheque       PaymentMethod = "Cheque"
)

// PaymentMethods lists the accepted payment methods in display order.
var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentBankTransfer,
	PaymentUPI,
	PaymentCheque,
}

// Valid reports whether the method is one of the accepted values.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// Allocation assigns a portion of a received payment to one outstanding
// invoice. AmountAllocated must be positive and must not exceed the invoice's
// outstanding balance; the allocation engine rejects violations instead of
// clamping.
type Allocation struct {
	InvoiceID       string       `json:"invoiceId" validate:"required"`
	AmountAllocated money.Amount `json:"amountAllocated"`
}

// ChequeDetails carries the extra fields required when a receipt is paid by
// cheque.
type ChequeDetails struct {
	ChequeNumber string `json:"chequeNo"`
	BankName     string `json:"bankName"`
	ChequeDate   Date   `json:"chequeDate"`
}

// ReceiptDraft is a payment receipt being assembled in a console session.
//
// TDSAmount is tax deducted at source by the customer; the amount available
// for allocation is the net payment (AmountReceived − TDSAmount). The sum of
// allocations must not exceed the net payment; any leftover is reported as
// the unapplied amount.
type ReceiptDraft struct {
	ReceiptID      string         `json:"receiptId"`
	ReceiptDate    Date           `json:"receiptDate"`
	CompanyID      string         `json:"companyId" validate:"required"`
	CustomerID     string         `json:"customerId" validate:"required"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod"`
	TDSAmount      money.Amount   `json:"tdsAmount"`
	AmountReceived money.Amount   `json:"amountReceived"`
	Cheque         *ChequeDetails `json:"cheque,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Allocations    []Allocation   `json:"allocations"`
}

// NetPayment returns the amount available for allocation after TDS.
func (d *ReceiptDraft) NetPayment() money.Amount {
	return d.AmountReceived - d.TDSAmount
}

// Receipt is a stored receipt as returned by the backend.
type Receipt struct {
	ID             string        `json:"id"`
	ReceiptID      string        `json:"receiptId"`
	ReceiptDate    Date          `json:"receiptDate"`
	CustomerID     string        `json:"customerId"`
	CustomerName   string        `json:"customerName,omitempty"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	TDSAmount      money.Amount  `json:"tdsAmount"`
	AmountReceived money.Amount  `json:"amountReceived"`
	NetPayment     money.Amount  `json:"netPayment"`
	Allocations    []Allocation  `json:"allocations"`
}
