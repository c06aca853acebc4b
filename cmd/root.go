package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rmsbilling/internal/api"
	"rmsbilling/internal/config"
	"rmsbilling/internal/logger"
	"rmsbilling/internal/validation"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Billing console - invoices, receipts and credit notes from the command line",
	Long: `Billing console is a command-line administration tool for a hosted
billing backend. It creates invoices, records payment receipts with
automatic oldest-first allocation, and issues GST credit notes, computing
every monetary figure locally before submission.

Authenticate once with "billing login"; the bearer token is stored locally
and attached to every request.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Billing console executed")

		fmt.Println("Welcome to the billing console!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

// newAPIClient builds the backend client from the environment configuration.
func newAPIClient() (*api.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	tokens := api.NewFileTokenStore(cfg.TokenFile)
	return api.New(cfg.APIBaseURL, cfg.HTTPTimeout, tokens), cfg, nil
}

// createCommandContext creates a context with timeout and signal handling
func createCommandContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling command")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// readDraftFile loads a JSON draft document from disk.
func readDraftFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read draft file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse draft file %s: %w", path, err)
	}
	return nil
}

// outputJSON formats and outputs command results as JSON
func outputJSON(v interface{}, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		err = os.WriteFile(outputPath, jsonData, 0644)
		if err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
	} else {
		_, err = os.Stdout.Write(jsonData)
		if err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}
		// Add newline for better terminal output
		fmt.Println()
	}

	return nil
}

// handleSubmitError translates the client's error taxonomy into messages a
// console user can act on. Validation failures are listed field by field.
func handleSubmitError(err error, log zerolog.Logger) error {
	if fields, ok := validation.Fields(err); ok {
		fmt.Fprintln(os.Stderr, "The draft did not pass validation:")
		for _, fe := range fields {
			fmt.Fprintf(os.Stderr, "  - %s: %s\n", fe.Field, fe.Message)
		}
		return fmt.Errorf("draft validation failed (%d field(s)); fix the draft file and retry", len(fields))
	}

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("not authenticated. Run \"billing login\" first: %w", err)
	case errors.Is(err, api.ErrNotFound):
		return fmt.Errorf("the referenced record does not exist: %w", err)
	case errors.Is(err, api.ErrNetwork):
		return fmt.Errorf("could not reach the billing backend. Check your connection and retry; nothing was submitted: %w", err)
	default:
		log.Error().Err(err).Msg("Submission failed")
		return err
	}
}
