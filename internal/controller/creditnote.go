package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"rmsbilling/internal/api"
	"rmsbilling/internal/creditnote"
	"rmsbilling/internal/logger"
	"rmsbilling/internal/validation"
	"rmsbilling/pkg/models"
)

// CreditNoteSequence issues per-year credit note numbers (CN-YYYY-NNN). A
// nil sequence means credit note IDs must arrive pre-filled on the draft.
type CreditNoteSequence interface {
	Next(year int) (string, error)
}

// CreditNoteController submits credit-note drafts.
type CreditNoteController struct {
	api      *api.Client
	seq      CreditNoteSequence
	validate *validator.Validate
	guard    submitGuard
	log      zerolog.Logger
}

// NewCreditNoteController creates a CreditNoteController. seq may be nil.
func NewCreditNoteController(client *api.Client, seq CreditNoteSequence) *CreditNoteController {
	return &CreditNoteController{
		api:      client,
		seq:      seq,
		validate: validator.New(),
		log:      logger.WithComponent("creditnote-controller"),
	}
}

// Submit validates the draft against its referenced invoice, derives the
// GST figures, and creates the credit note. When inheritRate is set the
// draft's GST rate is replaced by the rate of the invoice's first line item
// before calculation, mirroring the form behaviour of selecting an invoice.
// A draft without a credit note ID gets one from the per-year sequence,
// scoped to the credit note date's year.
func (c *CreditNoteController) Submit(ctx context.Context, draft *models.CreditNoteDraft, inheritRate bool) (*models.CreditNote, error) {
	if err := c.guard.begin(); err != nil {
		return nil, err
	}
	defer c.guard.end()

	if err := checkTags(c.validate, draft); err != nil {
		return nil, err
	}

	// A missing invoice is a validation outcome, not a fatal client error:
	// the draft keeps its reference and the user corrects it.
	source, err := c.api.Invoice(ctx, draft.InvoiceID)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return nil, err
	}

	rate := draft.GSTRate
	if inheritRate {
		rate = creditnote.DefaultRate(source)
	}
	working := *draft
	working.GSTRate = rate

	if working.CreditNoteID == "" {
		if c.seq == nil {
			return nil, validation.Errors{validation.NewFieldError("creditNoteId", nil, "credit note ID is required")}
		}
		if working.CreditNoteDate.IsZero() {
			return nil, validation.Errors{validation.NewFieldError("creditNoteDate", nil, "credit note date is required")}
		}
		id, err := c.seq.Next(working.CreditNoteDate.Time().Year())
		if err != nil {
			return nil, fmt.Errorf("creditnote controller: failed to issue credit note number: %w", err)
		}
		working.CreditNoteID = id
	}

	if err := creditnote.ValidateDraft(&working, source); err != nil {
		return nil, err
	}

	calc := creditnote.Calculate(working.Amount, working.GSTRate)

	payload := api.CreditNoteRequest{
		CreditNoteID:   working.CreditNoteID,
		CreditNoteDate: working.CreditNoteDate,
		CustomerID:     working.CustomerID,
		InvoiceID:      working.InvoiceID,
		Reason:         working.Reason,
		Amount:         working.Amount,
		GSTRate:        working.GSTRate,
		GSTAmount:      calc.GSTAmount,
		TotalCredit:    calc.TotalCredit,
		Notes:          working.Notes,
	}

	c.log.Info().
		Str("credit_note_id", working.CreditNoteID).
		Str("invoice_id", working.InvoiceID).
		Str("amount", working.Amount.String()).
		Str("gst_rate", working.GSTRate.String()).
		Str("total_credit", calc.TotalCredit.String()).
		Msg("Submitting credit note")

	note, err := c.api.CreateCreditNote(ctx, payload)
	if err != nil {
		c.log.Error().Err(err).Str("credit_note_id", working.CreditNoteID).Msg("Credit note submission failed")
		return nil, err
	}
	return note, nil
}
