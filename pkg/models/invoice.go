package models

import (
	"time"

	"rmsbilling/internal/money"
)

// InvoiceStatus is the backend-driven lifecycle state of an invoice.
// Transitions to PartiallyPaid/Paid are performed by the backend when a
// receipt allocates against the invoice; the console only computes the
// allocations it sends.
type InvoiceStatus string

const (
	StatusPending       InvoiceStatus = "Pending"
	StatusOverdue       InvoiceStatus = "Overdue"
	StatusPartiallyPaid InvoiceStatus = "PartiallyPaid"
	StatusPaid          InvoiceStatus = "Paid"
)

// LineItem is one billable row on an invoice.
//
// Amount, TaxAmount and Total are derived fields: they are always recomputed
// from Quantity, Rate and TaxRate by the calculation core and never mutated
// independently. ID is a client-side identifier used to address rows while a
// draft is being edited; it is stripped from submission payloads.
type LineItem struct {
	ID            string       `json:"id,omitempty"`
	ServiceTypeID string       `json:"serviceTypeId" validate:"required"`
	Description   string       `json:"description"`
	Quantity      int64        `json:"quantity"`
	Rate          money.Amount `json:"rate"`
	TaxRate       money.Rate   `json:"taxRate"`

	// Derived, recomputed by the calculation core.
	Amount    money.Amount `json:"amount"`
	TaxAmount money.Amount `json:"taxAmount"`
	Total     money.Amount `json:"total"`
}

// DocumentGST taxes the invoice subtotal at a single document-level rate
// instead of the per-line rates. The tax is reported as equal CGST/SGST
// halves for intra-state supply, or as one IGST figure when Interstate is
// set.
type DocumentGST struct {
	Rate       money.Rate `json:"rate"`
	Interstate bool       `json:"interstate,omitempty"`
}

// InvoiceDraft is an invoice being assembled in a console session. The draft
// is owned by the session until submission succeeds; afterwards the backend
// is the owner of record and the local draft is discarded.
//
// DocumentGST selects the tax mode per document: nil means each line item's
// own tax rate applies.
type InvoiceDraft struct {
	InvoiceNumber   string       `json:"invoiceNumber" validate:"required"`
	InvoiceDate     Date         `json:"invoiceDate"`
	DueDate         Date         `json:"dueDate"`
	CustomerID      string       `json:"customerId" validate:"required"`
	ReferenceNumber string       `json:"referenceNumber,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	DocumentGST     *DocumentGST `json:"documentGst,omitempty"`
	LineItems       []LineItem   `json:"lineItems"`
}

// Invoice is a stored invoice as returned by the backend.
type Invoice struct {
	ID              string        `json:"id"`
	InvoiceNumber   string        `json:"invoiceNumber"`
	InvoiceDate     Date          `json:"invoiceDate"`
	DueDate         Date          `json:"dueDate"`
	CustomerID      string        `json:"customerId"`
	CustomerName    string        `json:"customerName,omitempty"`
	ReferenceNumber string        `json:"referenceNumber,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	LineItems       []LineItem    `json:"lineItems"`
	Subtotal        money.Amount  `json:"subtotal"`
	TaxTotal        money.Amount  `json:"taxTotal"`
	Total           money.Amount  `json:"total"`
	Status          InvoiceStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// OutstandingInvoice is the read model the backend supplies for receipt
// allocation: an invoice of the selected customer that still carries an
// outstanding balance (total minus amounts allocated by prior receipts).
type OutstandingInvoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	CustomerID    string        `json:"customerId"`
	InvoiceDate   Date          `json:"invoiceDate"`
	TotalAmount   money.Amount  `json:"totalAmount"`
	Outstanding   money.Amount  `json:"outstandingAmount"`
	Status        InvoiceStatus `json:"status"`
}

// EmailRequest is the payload for transactional invoice email dispatch.
type EmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	CC      string `json:"cc,omitempty" validate:"omitempty,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message"`
}
