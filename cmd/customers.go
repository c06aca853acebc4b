package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"rmsbilling/internal/controller"
	"rmsbilling/internal/logger"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List reference data: customers, service types, client types, companies",
	Long: `Fetch the reference data the billing forms depend on. The three core
sets (customers, service types, client types) are loaded concurrently; a
set that fails to load is reported as unavailable without hiding the
others.`,
	RunE: runCustomers,
}

func init() {
	rootCmd.AddCommand(customersCmd)

	customersCmd.Flags().Bool("companies", false, "Also fetch the issuing companies")
	customersCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	customersCmd.Flags().Int("timeout", 30, "Request timeout in seconds")
}

// referenceOutput is the JSON shape of the customers command. Failed sets
// appear as error strings so the caller can tell "empty" from "unavailable".
type referenceOutput struct {
	Customers    interface{} `json:"customers"`
	ServiceTypes interface{} `json:"serviceTypes"`
	ClientTypes  interface{} `json:"clientTypes"`
	Companies    interface{} `json:"companies,omitempty"`

	Errors map[string]string `json:"errors,omitempty"`
}

func runCustomers(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("customers")

	withCompanies, _ := cmd.Flags().GetBool("companies")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}
	loader := controller.NewReferenceLoader(client)

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	data, err := loader.Load(ctx)
	if err != nil {
		if errors.Is(err, controller.ErrStaleLoad) {
			// A single CLI invocation issues one load; this cannot happen here.
			return err
		}
		return handleSubmitError(err, log)
	}

	out := referenceOutput{
		Customers:    data.Customers,
		ServiceTypes: data.ServiceTypes,
		ClientTypes:  data.ClientTypes,
		Errors:       map[string]string{},
	}
	if data.CustomersErr != nil {
		out.Errors["customers"] = data.CustomersErr.Error()
	}
	if data.ServiceTypesErr != nil {
		out.Errors["serviceTypes"] = data.ServiceTypesErr.Error()
	}
	if data.ClientTypesErr != nil {
		out.Errors["clientTypes"] = data.ClientTypesErr.Error()
	}

	if withCompanies {
		companies, err := client.Companies(ctx)
		if err != nil {
			out.Errors["companies"] = err.Error()
		} else {
			out.Companies = companies
		}
	}
	if len(out.Errors) == 0 {
		out.Errors = nil
	}

	log.Info().
		Int("customers", len(data.Customers)).
		Int("service_types", len(data.ServiceTypes)).
		Int("client_types", len(data.ClientTypes)).
		Bool("complete", data.Available()).
		Msg("Reference data fetched")
	return outputJSON(out, outputPath, log)
}
