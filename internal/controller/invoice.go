package controller

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"rmsbilling/internal/api"
	"rmsbilling/internal/billing"
	"rmsbilling/internal/logger"
	"rmsbilling/pkg/models"
)

// InvoiceController submits invoice drafts.
type InvoiceController struct {
	api      *api.Client
	validate *validator.Validate
	guard    submitGuard
	log      zerolog.Logger
}

// NewInvoiceController creates an InvoiceController.
func NewInvoiceController(client *api.Client) *InvoiceController {
	return &InvoiceController{
		api:      client,
		validate: validator.New(),
		log:      logger.WithComponent("invoice-controller"),
	}
}

// Submit validates the draft, derives its totals, and creates the invoice.
// The draft is not modified; on failure the caller retries with the same
// draft.
func (c *InvoiceController) Submit(ctx context.Context, draft *models.InvoiceDraft) (*models.Invoice, error) {
	if err := c.guard.begin(); err != nil {
		return nil, err
	}
	defer c.guard.end()

	payload, totals, err := c.prepare(draft)
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("invoice_number", draft.InvoiceNumber).
		Str("customer_id", draft.CustomerID).
		Int("line_items", len(draft.LineItems)).
		Str("total", totals.Total.String()).
		Msg("Submitting invoice")

	inv, err := c.api.CreateInvoice(ctx, payload)
	if err != nil {
		c.log.Error().Err(err).Str("invoice_number", draft.InvoiceNumber).Msg("Invoice submission failed")
		return nil, err
	}
	return inv, nil
}

// Update validates the draft and replaces an existing invoice.
func (c *InvoiceController) Update(ctx context.Context, id string, draft *models.InvoiceDraft) (*models.Invoice, error) {
	if err := c.guard.begin(); err != nil {
		return nil, err
	}
	defer c.guard.end()

	payload, _, err := c.prepare(draft)
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("invoice_id", id).
		Str("invoice_number", draft.InvoiceNumber).
		Msg("Updating invoice")

	return c.api.UpdateInvoice(ctx, id, payload)
}

// Delete removes an invoice.
func (c *InvoiceController) Delete(ctx context.Context, id string) error {
	c.log.Info().Str("invoice_id", id).Msg("Deleting invoice")
	return c.api.DeleteInvoice(ctx, id)
}

// SendEmail dispatches a transactional email for an invoice.
func (c *InvoiceController) SendEmail(ctx context.Context, id string, req models.EmailRequest) error {
	if err := checkTags(c.validate, req); err != nil {
		return err
	}
	c.log.Info().Str("invoice_id", id).Str("to", req.To).Msg("Sending invoice email")
	return c.api.SendInvoiceEmail(ctx, id, req)
}

// DownloadPDF fetches the server-rendered PDF for an invoice.
func (c *InvoiceController) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	return c.api.InvoicePDF(ctx, id)
}

// prepare runs both validation layers and builds the normalized payload.
func (c *InvoiceController) prepare(draft *models.InvoiceDraft) (api.InvoiceRequest, billing.Totals, error) {
	if err := checkTags(c.validate, draft); err != nil {
		return api.InvoiceRequest{}, billing.Totals{}, err
	}
	if err := billing.ValidateDraft(draft); err != nil {
		return api.InvoiceRequest{}, billing.Totals{}, err
	}

	var lines []models.LineItem
	var totals billing.Totals
	if draft.DocumentGST != nil {
		lines = billing.ComputeBaseLines(draft.LineItems)
		totals = billing.ComputeTotalsWithDocumentTax(draft.LineItems, billing.DocumentTax{
			Rate:       draft.DocumentGST.Rate,
			Interstate: draft.DocumentGST.Interstate,
		})
	} else {
		lines = billing.ComputeLines(draft.LineItems)
		totals = billing.ComputeTotals(draft.LineItems)
	}

	payload := api.InvoiceRequest{
		InvoiceNumber:   draft.InvoiceNumber,
		InvoiceDate:     draft.InvoiceDate,
		DueDate:         draft.DueDate,
		CustomerID:      draft.CustomerID,
		ReferenceNumber: draft.ReferenceNumber,
		Notes:           draft.Notes,
		LineItems:       make([]api.LineItemRequest, len(lines)),
		Subtotal:        totals.Subtotal,
		TaxTotal:        totals.TaxTotal,
		Total:           totals.Total,
		CGST:            totals.CGST,
		SGST:            totals.SGST,
		IGST:            totals.IGST,
	}
	for i, line := range lines {
		// Client-side row IDs are draft-session state, not wire data.
		payload.LineItems[i] = api.LineItemRequest{
			ServiceTypeID: line.ServiceTypeID,
			Description:   line.Description,
			Quantity:      line.Quantity,
			Rate:          line.Rate,
			TaxRate:       line.TaxRate,
			Amount:        line.Amount,
			TaxAmount:     line.TaxAmount,
			Total:         line.Total,
		}
	}
	return payload, totals, nil
}
