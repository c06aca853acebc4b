package controller

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"rmsbilling/internal/allocation"
	"rmsbilling/internal/api"
	"rmsbilling/internal/logger"
	"rmsbilling/internal/validation"
	"rmsbilling/pkg/models"
)

// ReceiptSequence issues per-company receipt numbers. It is an explicit
// dependency passed to the controller so numbering never lives in a
// module-level counter shared across concurrent sessions. A nil sequence
// means receipt IDs must arrive pre-filled on the draft (server-assigned or
// user-entered).
type ReceiptSequence interface {
	Next(companyID string) (string, error)
}

// ReceiptController submits receipt drafts with their payment allocations.
type ReceiptController struct {
	api      *api.Client
	seq      ReceiptSequence
	validate *validator.Validate
	guard    submitGuard
	log      zerolog.Logger
}

// NewReceiptController creates a ReceiptController. seq may be nil.
func NewReceiptController(client *api.Client, seq ReceiptSequence) *ReceiptController {
	return &ReceiptController{
		api:      client,
		seq:      seq,
		validate: validator.New(),
		log:      logger.WithComponent("receipt-controller"),
	}
}

// SubmitOptions selects how the receipt's allocations are produced.
type SubmitOptions struct {
	// AutoAllocate distributes the net payment oldest-first across the
	// selected invoices instead of using the draft's explicit allocations.
	AutoAllocate bool

	// SelectedInvoiceIDs narrows auto-allocation to these invoices. Empty
	// means every outstanding invoice of the customer is eligible.
	SelectedInvoiceIDs []string
}

// SubmitResult reports what was created and what the backend will do to the
// allocated invoices.
type SubmitResult struct {
	Receipt    *models.Receipt
	Allocation allocation.Result

	// ExpectedStatuses predicts the per-invoice status transitions the
	// backend applies on receipt creation (Paid / PartiallyPaid), keyed by
	// invoice ID.
	ExpectedStatuses map[string]models.InvoiceStatus
}

// Submit validates the draft, produces or validates its allocations against
// the customer's outstanding invoices, and creates the receipt. The draft is
// never mutated: auto-allocation results travel in the returned SubmitResult
// and the request payload only.
func (c *ReceiptController) Submit(ctx context.Context, draft *models.ReceiptDraft, opts SubmitOptions) (*SubmitResult, error) {
	if err := c.guard.begin(); err != nil {
		return nil, err
	}
	defer c.guard.end()

	if err := checkTags(c.validate, draft); err != nil {
		return nil, err
	}
	if err := validateReceiptFields(draft); err != nil {
		return nil, err
	}
	if !opts.AutoAllocate && len(opts.SelectedInvoiceIDs) > 0 {
		// Refused rather than ignored: a selection that has no effect would
		// hide the user's mistake.
		return nil, validation.Errors{validation.NewFieldError(
			"invoices", opts.SelectedInvoiceIDs, "invoice selection only applies with auto-allocation")}
	}

	receiptID := draft.ReceiptID
	if receiptID == "" {
		if c.seq == nil {
			return nil, validation.Errors{validation.NewFieldError("receiptId", nil, "receipt ID is required")}
		}
		id, err := c.seq.Next(draft.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("receipt controller: failed to issue receipt number: %w", err)
		}
		receiptID = id
	}

	outstanding, err := c.api.OutstandingInvoices(ctx, draft.CustomerID)
	if err != nil {
		return nil, err
	}

	net := draft.NetPayment()
	var result allocation.Result
	if opts.AutoAllocate {
		selected := selectInvoices(outstanding, opts.SelectedInvoiceIDs)
		result, err = allocation.Auto(net, selected)
	} else {
		result, err = allocation.ValidateManual(net, draft.Allocations, outstanding)
	}
	if err != nil {
		return nil, err
	}

	payload := api.ReceiptRequest{
		ReceiptID:      receiptID,
		ReceiptDate:    draft.ReceiptDate,
		CompanyID:      draft.CompanyID,
		CustomerID:     draft.CustomerID,
		PaymentMethod:  draft.PaymentMethod,
		TDSAmount:      draft.TDSAmount,
		AmountReceived: draft.AmountReceived,
		NetPayment:     net,
		Notes:          draft.Notes,
		Allocations:    result.Allocations,
	}
	if draft.Cheque != nil {
		payload.ChequeNumber = draft.Cheque.ChequeNumber
		payload.BankName = draft.Cheque.BankName
		payload.ChequeDate = draft.Cheque.ChequeDate
	}

	c.log.Info().
		Str("receipt_id", receiptID).
		Str("customer_id", draft.CustomerID).
		Str("amount_received", draft.AmountReceived.String()).
		Str("total_allocated", result.TotalAllocated.String()).
		Str("unapplied", result.Unapplied.String()).
		Int("allocations", len(result.Allocations)).
		Msg("Submitting receipt")

	if result.Unapplied.IsPositive() {
		c.log.Warn().
			Str("unapplied", result.Unapplied.String()).
			Msg("Part of the received amount is not applied to any invoice")
	}

	receipt, err := c.api.CreateReceipt(ctx, payload)
	if err != nil {
		c.log.Error().Err(err).Str("receipt_id", receiptID).Msg("Receipt submission failed")
		return nil, err
	}

	return &SubmitResult{
		Receipt:          receipt,
		Allocation:       result,
		ExpectedStatuses: predictStatuses(outstanding, result.Allocations),
	}, nil
}

func validateReceiptFields(draft *models.ReceiptDraft) error {
	var errs validation.Errors

	if draft.ReceiptDate.IsZero() {
		errs.Add("receiptDate", nil, "receipt date is required")
	}
	if !draft.AmountReceived.IsPositive() {
		errs.Add("amountReceived", draft.AmountReceived.String(), "amount received must be greater than zero")
	}
	if draft.TDSAmount.IsNegative() {
		errs.Add("tdsAmount", draft.TDSAmount.String(), "TDS amount must not be negative")
	}
	if !draft.TDSAmount.IsNegative() && draft.AmountReceived.IsPositive() && !draft.NetPayment().IsPositive() {
		errs.Add("tdsAmount", draft.TDSAmount.String(), "TDS amount leaves no net payment to allocate")
	}
	if !draft.PaymentMethod.Valid() {
		errs.Add("paymentMethod", string(draft.PaymentMethod), "payment method must be one of Cash, Bank Transfer, UPI, Cheque")
	}
	if draft.PaymentMethod == models.PaymentCheque {
		switch {
		case draft.Cheque == nil:
			errs.Add("cheque", nil, "cheque details are required for cheque payments")
		default:
			if draft.Cheque.ChequeNumber == "" {
				errs.Add("cheque.chequeNo", nil, "cheque number is required")
			}
			if draft.Cheque.BankName == "" {
				errs.Add("cheque.bankName", nil, "bank name is required")
			}
			if draft.Cheque.ChequeDate.IsZero() {
				errs.Add("cheque.chequeDate", nil, "cheque date is required")
			}
		}
	}

	return errs.OrNil()
}

func selectInvoices(outstanding []models.OutstandingInvoice, ids []string) []models.OutstandingInvoice {
	if len(ids) == 0 {
		return outstanding
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var selected []models.OutstandingInvoice
	for _, inv := range outstanding {
		if wanted[inv.ID] {
			selected = append(selected, inv)
		}
	}
	return selected
}

func predictStatuses(outstanding []models.OutstandingInvoice, allocs []models.Allocation) map[string]models.InvoiceStatus {
	byID := make(map[string]models.OutstandingInvoice, len(outstanding))
	for _, inv := range outstanding {
		byID[inv.ID] = inv
	}
	statuses := make(map[string]models.InvoiceStatus, len(allocs))
	for _, a := range allocs {
		if inv, ok := byID[a.InvoiceID]; ok {
			statuses[a.InvoiceID] = allocation.ExpectedStatus(inv, a.AmountAllocated)
		}
	}
	return statuses
}
