package api

import (
	"rmsbilling/internal/money"
	"rmsbilling/pkg/models"
)

// Request payloads are the normalized shapes sent to the backend: dates as
// YYYY-MM-DD, money as plain numbers, client-only draft identifiers
// stripped, and derived totals included exactly as the calculation core
// produced them.

// LineItemRequest is one invoice line on the wire. It carries no client-side
// row ID.
type LineItemRequest struct {
	ServiceTypeID string       `json:"serviceTypeId"`
	Description   string       `json:"description"`
	Quantity      int64        `json:"quantity"`
	Rate          money.Amount `json:"rate"`
	TaxRate       money.Rate   `json:"taxRate"`
	Amount        money.Amount `json:"amount"`
	TaxAmount     money.Amount `json:"taxAmount"`
	Total         money.Amount `json:"total"`
}

// InvoiceRequest is the body of POST /invoices and PUT /invoices/{id}.
type InvoiceRequest struct {
	InvoiceNumber   string            `json:"invoiceNumber"`
	InvoiceDate     models.Date       `json:"invoiceDate"`
	DueDate         models.Date       `json:"dueDate"`
	CustomerID      string            `json:"customerId"`
	ReferenceNumber string            `json:"referenceNumber,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	LineItems       []LineItemRequest `json:"lineItems"`
	Subtotal        money.Amount      `json:"subtotal"`
	TaxTotal        money.Amount      `json:"taxTotal"`
	Total           money.Amount      `json:"total"`

	// Populated only for documents taxed at a single document-level rate.
	CGST money.Amount `json:"cgst,omitempty"`
	SGST money.Amount `json:"sgst,omitempty"`
	IGST money.Amount `json:"igst,omitempty"`
}

// ReceiptRequest is the body of POST /receipts.
type ReceiptRequest struct {
	ReceiptID      string               `json:"receiptId"`
	ReceiptDate    models.Date          `json:"receiptDate"`
	CompanyID      string               `json:"companyId"`
	CustomerID     string               `json:"customerId"`
	PaymentMethod  models.PaymentMethod `json:"paymentMethod"`
	TDSAmount      money.Amount         `json:"tdsAmount"`
	AmountReceived money.Amount         `json:"amountReceived"`
	NetPayment     money.Amount         `json:"netPayment"`
	ChequeNumber   string               `json:"chequeNo,omitempty"`
	BankName       string               `json:"bankName,omitempty"`
	ChequeDate     models.Date          `json:"chequeDate,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Allocations    []models.Allocation  `json:"allocations"`
}

// CreditNoteRequest is the body of POST /credit-notes.
type CreditNoteRequest struct {
	CreditNoteID   string              `json:"creditNoteId"`
	CreditNoteDate models.Date         `json:"creditNoteDate"`
	CustomerID     string              `json:"customerId"`
	InvoiceID      string              `json:"invoiceId"`
	Reason         models.CreditReason `json:"reason"`
	Amount         money.Amount        `json:"amount"`
	GSTRate        money.Rate          `json:"gstRate"`
	GSTAmount      money.Amount        `json:"gstAmount"`
	TotalCredit    money.Amount        `json:"totalCredit"`
	Notes          string              `json:"notes,omitempty"`
}
