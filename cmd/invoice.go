package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rmsbilling/internal/api"
	"rmsbilling/internal/controller"
	"rmsbilling/internal/logger"
	"rmsbilling/pkg/models"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create, list and manage invoices",
	Long: `Work with invoices on the billing backend.

Drafts are JSON files matching the invoice draft shape: invoice number,
customer, dates, and line items with quantity, rate and tax rate. Line
amounts, tax amounts and document totals are always computed locally from
those inputs before submission; any totals present in the draft file are
ignored and recomputed.

By default each line item's own tax rate applies. A draft may instead carry
a "documentGst" object ({"rate": 18} or {"rate": 18, "interstate": true})
to tax the subtotal at one document-level rate, reported as equal CGST/SGST
halves or as a single IGST figure.`,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, optionally filtered by customer and status",
	Example: `  # All invoices
  billing invoice list

  # Unpaid invoices of one customer
  billing invoice list --customer cust-42 --status Pending`,
	RunE: runInvoiceList,
}

var invoiceGetCmd = &cobra.Command{
	Use:   "get [invoice-id]",
	Short: "Fetch one invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceGet,
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create [draft-file]",
	Short: "Validate a draft file and create the invoice",
	Example: `  # Create from a draft file
  billing invoice create invoice-draft.json

  # Save the created invoice to a file
  billing invoice create invoice-draft.json -o created.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceCreate,
}

var invoiceUpdateCmd = &cobra.Command{
	Use:   "update [invoice-id] [draft-file]",
	Short: "Validate a draft file and replace an existing invoice",
	Args:  cobra.ExactArgs(2),
	RunE:  runInvoiceUpdate,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete [invoice-id]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

var invoicePDFCmd = &cobra.Command{
	Use:   "pdf [invoice-id]",
	Short: "Download the server-rendered PDF for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicePDF,
}

var invoiceEmailCmd = &cobra.Command{
	Use:   "send-email [invoice-id]",
	Short: "Send a transactional email for an invoice",
	Example: `  billing invoice send-email inv-17 \
    --to accounts@client.example \
    --cc manager@client.example \
    --subject "Invoice INV-2024-017" \
    --message "Please find your invoice attached."`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceEmail,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceGetCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd)
	invoiceCmd.AddCommand(invoiceUpdateCmd)
	invoiceCmd.AddCommand(invoiceDeleteCmd)
	invoiceCmd.AddCommand(invoicePDFCmd)
	invoiceCmd.AddCommand(invoiceEmailCmd)

	invoiceListCmd.Flags().String("customer", "", "Filter by customer ID")
	invoiceListCmd.Flags().String("status", "", "Filter by status (Pending, Overdue, PartiallyPaid, Paid)")
	invoiceListCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	invoiceListCmd.Flags().Int("timeout", 30, "Request timeout in seconds")

	invoiceGetCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	invoiceGetCmd.Flags().Int("timeout", 30, "Request timeout in seconds")

	invoiceCreateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	invoiceCreateCmd.Flags().Int("timeout", 60, "Request timeout in seconds")

	invoiceUpdateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	invoiceUpdateCmd.Flags().Int("timeout", 60, "Request timeout in seconds")

	invoiceDeleteCmd.Flags().Int("timeout", 30, "Request timeout in seconds")

	invoicePDFCmd.Flags().StringP("output", "o", "", "Output PDF path (default: <invoice-id>.pdf)")
	invoicePDFCmd.Flags().Int("timeout", 60, "Request timeout in seconds")

	invoiceEmailCmd.Flags().String("to", "", "Recipient email address")
	invoiceEmailCmd.Flags().String("cc", "", "CC email address")
	invoiceEmailCmd.Flags().String("subject", "", "Email subject")
	invoiceEmailCmd.Flags().String("message", "", "Email body")
	invoiceEmailCmd.Flags().Int("timeout", 60, "Request timeout in seconds")
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-list")

	customerID, _ := cmd.Flags().GetString("customer")
	status, _ := cmd.Flags().GetString("status")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	invoices, err := client.Invoices(ctx, api.InvoiceFilter{
		CustomerID: customerID,
		Status:     models.InvoiceStatus(status),
	})
	if err != nil {
		return handleSubmitError(err, log)
	}

	log.Info().Int("count", len(invoices)).Msg("Invoices fetched")
	return outputJSON(invoices, outputPath, log)
}

func runInvoiceGet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-get")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	inv, err := client.Invoice(ctx, args[0])
	if err != nil {
		return handleSubmitError(err, log)
	}
	return outputJSON(inv, outputPath, log)
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-create")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var draft models.InvoiceDraft
	if err := readDraftFile(args[0], &draft); err != nil {
		return err
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}
	ctrl := controller.NewInvoiceController(client)

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	log.Info().
		Str("file", args[0]).
		Str("invoice_number", draft.InvoiceNumber).
		Msg("Creating invoice from draft")

	inv, err := ctrl.Submit(ctx, &draft)
	if err != nil {
		return handleSubmitError(err, log)
	}

	log.Info().
		Str("invoice_id", inv.ID).
		Str("total", inv.Total.String()).
		Msg("Invoice created")
	return outputJSON(inv, outputPath, log)
}

func runInvoiceUpdate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-update")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var draft models.InvoiceDraft
	if err := readDraftFile(args[1], &draft); err != nil {
		return err
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}
	ctrl := controller.NewInvoiceController(client)

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	inv, err := ctrl.Update(ctx, args[0], &draft)
	if err != nil {
		return handleSubmitError(err, log)
	}
	return outputJSON(inv, outputPath, log)
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-delete")

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}
	ctrl := controller.NewInvoiceController(client)

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	if err := ctrl.Delete(ctx, args[0]); err != nil {
		return handleSubmitError(err, log)
	}

	fmt.Printf("Invoice %s deleted.\n", args[0])
	return nil
}

func runInvoicePDF(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-pdf")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if outputPath == "" {
		outputPath = args[0] + ".pdf"
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}
	ctrl := controller.NewInvoiceController(client)

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	pdf, err := ctrl.DownloadPDF(ctx, args[0])
	if err != nil {
		return handleSubmitError(err, log)
	}
	if err := os.WriteFile(outputPath, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write PDF file: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(pdf)).
		Msg("Invoice PDF downloaded")
	fmt.Printf("PDF written to %s\n", outputPath)
	return nil
}

func runInvoiceEmail(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-email")

	to, _ := cmd.Flags().GetString("to")
	cc, _ := cmd.Flags().GetString("cc")
	subject, _ := cmd.Flags().GetString("subject")
	message, _ := cmd.Flags().GetString("message")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}
	ctrl := controller.NewInvoiceController(client)

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	req := models.EmailRequest{To: to, CC: cc, Subject: subject, Message: message}
	if err := ctrl.SendEmail(ctx, args[0], req); err != nil {
		return handleSubmitError(err, log)
	}

	fmt.Printf("Email for invoice %s sent to %s.\n", args[0], to)
	return nil
}
