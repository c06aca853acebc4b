package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rmsbilling/internal/controller"
	"rmsbilling/internal/logger"
	"rmsbilling/internal/sequence"
	"rmsbilling/pkg/models"
)

var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Record payment receipts with invoice allocations",
	Long: `Record customer payments against outstanding invoices.

The amount available for allocation is the net payment: amount received
minus TDS. With --auto-allocate the net payment is distributed across the
customer's outstanding invoices oldest first; otherwise the draft file's
explicit allocations are validated against the outstanding balances. Any
leftover is reported as the unapplied amount.

When the draft carries no receipt ID, one is issued locally from a
per-company sequence (<PREFIX>-RCT-NNN) using the company's prefix.`,
}

var receiptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List receipts",
	RunE:  runReceiptList,
}

var receiptCreateCmd = &cobra.Command{
	Use:   "create [draft-file]",
	Short: "Validate a draft file and record the receipt",
	Example: `  # Use the draft's explicit allocations
  billing receipt create receipt-draft.json

  # Distribute the net payment oldest-first across all outstanding invoices
  billing receipt create receipt-draft.json --auto-allocate

  # Auto-allocate across selected invoices only
  billing receipt create receipt-draft.json --auto-allocate --invoices inv-1,inv-2`,
	Args: cobra.ExactArgs(1),
	RunE: runReceiptCreate,
}

func init() {
	rootCmd.AddCommand(receiptCmd)
	receiptCmd.AddCommand(receiptListCmd)
	receiptCmd.AddCommand(receiptCreateCmd)

	receiptListCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	receiptListCmd.Flags().Int("timeout", 30, "Request timeout in seconds")

	receiptCreateCmd.Flags().Bool("auto-allocate", false, "Distribute the net payment oldest-first instead of using the draft's allocations")
	receiptCreateCmd.Flags().StringSlice("invoices", nil, "Restrict auto-allocation to these invoice IDs")
	receiptCreateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	receiptCreateCmd.Flags().Int("timeout", 60, "Request timeout in seconds")
}

func runReceiptList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("receipt-list")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	receipts, err := client.Receipts(ctx)
	if err != nil {
		return handleSubmitError(err, log)
	}

	log.Info().Int("count", len(receipts)).Msg("Receipts fetched")
	return outputJSON(receipts, outputPath, log)
}

func runReceiptCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("receipt-create")

	autoAllocate, _ := cmd.Flags().GetBool("auto-allocate")
	invoiceIDs, _ := cmd.Flags().GetStringSlice("invoices")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var draft models.ReceiptDraft
	if err := readDraftFile(args[0], &draft); err != nil {
		return err
	}

	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	seq := sequence.NewFileSequence(
		filepath.Join(filepath.Dir(cfg.TokenFile), "sequences.json"),
		companyPrefixLookup(ctx, client),
	)
	ctrl := controller.NewReceiptController(client, seq)

	log.Info().
		Str("file", args[0]).
		Str("customer_id", draft.CustomerID).
		Bool("auto_allocate", autoAllocate).
		Msg("Recording receipt from draft")

	result, err := ctrl.Submit(ctx, &draft, controller.SubmitOptions{
		AutoAllocate:       autoAllocate,
		SelectedInvoiceIDs: invoiceIDs,
	})
	if err != nil {
		return handleSubmitError(err, log)
	}

	if result.Allocation.Unapplied.IsPositive() {
		fmt.Fprintf(os.Stderr, "Warning: %s of the net payment was not applied to any invoice.\n",
			result.Allocation.Unapplied)
	}
	for invoiceID, status := range result.ExpectedStatuses {
		log.Info().
			Str("invoice_id", invoiceID).
			Str("expected_status", string(status)).
			Msg("Invoice status will change")
	}

	return outputJSON(result, outputPath, log)
}

// companyPrefixLookup resolves receipt number prefixes from the backend's
// company list.
func companyPrefixLookup(ctx context.Context, client companyLister) sequence.PrefixFunc {
	return func(companyID string) (string, error) {
		companies, err := client.Companies(ctx)
		if err != nil {
			return "", err
		}
		for _, company := range companies {
			if company.ID == companyID && company.Prefix != "" {
				return company.Prefix, nil
			}
		}
		return "", fmt.Errorf("no receipt prefix configured for company %s", companyID)
	}
}

type companyLister interface {
	Companies(ctx context.Context) ([]models.Company, error)
}
