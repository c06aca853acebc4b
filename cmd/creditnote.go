package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"rmsbilling/internal/controller"
	"rmsbilling/internal/logger"
	"rmsbilling/internal/sequence"
	"rmsbilling/pkg/models"
)

var creditNoteCmd = &cobra.Command{
	Use:   "creditnote",
	Short: "Issue and list GST credit notes",
	Long: `Issue credit notes against existing invoices.

The GST amount and total credit are computed locally from the base amount
and GST rate. With --inherit-rate the rate is taken from the first line
item of the referenced invoice instead of the draft file. The base amount
must not exceed the referenced invoice's total.

When the draft carries no credit note ID, one is issued locally from a
per-year sequence (CN-YYYY-NNN) scoped to the credit note date's year.`,
}

var creditNoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List credit notes",
	RunE:  runCreditNoteList,
}

var creditNoteCreateCmd = &cobra.Command{
	Use:   "create [draft-file]",
	Short: "Validate a draft file and issue the credit note",
	Example: `  # Issue with the draft's GST rate
  billing creditnote create creditnote-draft.json

  # Take the GST rate from the referenced invoice
  billing creditnote create creditnote-draft.json --inherit-rate`,
	Args: cobra.ExactArgs(1),
	RunE: runCreditNoteCreate,
}

func init() {
	rootCmd.AddCommand(creditNoteCmd)
	creditNoteCmd.AddCommand(creditNoteListCmd)
	creditNoteCmd.AddCommand(creditNoteCreateCmd)

	creditNoteListCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	creditNoteListCmd.Flags().Int("timeout", 30, "Request timeout in seconds")

	creditNoteCreateCmd.Flags().Bool("inherit-rate", false, "Take the GST rate from the referenced invoice's first line item")
	creditNoteCreateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	creditNoteCreateCmd.Flags().Int("timeout", 60, "Request timeout in seconds")
}

func runCreditNoteList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("creditnote-list")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	notes, err := client.CreditNotes(ctx)
	if err != nil {
		return handleSubmitError(err, log)
	}

	log.Info().Int("count", len(notes)).Msg("Credit notes fetched")
	return outputJSON(notes, outputPath, log)
}

func runCreditNoteCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("creditnote-create")

	inheritRate, _ := cmd.Flags().GetBool("inherit-rate")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var draft models.CreditNoteDraft
	if err := readDraftFile(args[0], &draft); err != nil {
		return err
	}

	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}
	seq := sequence.NewYearSequence(filepath.Join(filepath.Dir(cfg.TokenFile), "credit-note-sequences.json"))
	ctrl := controller.NewCreditNoteController(client, seq)

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	log.Info().
		Str("file", args[0]).
		Str("credit_note_id", draft.CreditNoteID).
		Str("invoice_id", draft.InvoiceID).
		Bool("inherit_rate", inheritRate).
		Msg("Issuing credit note from draft")

	note, err := ctrl.Submit(ctx, &draft, inheritRate)
	if err != nil {
		return handleSubmitError(err, log)
	}

	log.Info().
		Str("credit_note_id", note.CreditNoteID).
		Str("total_credit", note.TotalCredit.String()).
		Msg("Credit note issued")
	return outputJSON(note, outputPath, log)
}
