package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"rmsbilling/internal/api"
	"rmsbilling/internal/logger"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show backend-computed financial summaries",
	Long: `Fetch the dashboard read models. All aggregates are computed
server-side; the console renders them as received.`,
}

var dashboardMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Headline financial summary",
	RunE:  dashboardRunner("dashboard-metrics", func(ctx context.Context, client *api.Client) (interface{}, error) {
		return client.DashboardMetrics(ctx)
	}),
}

var dashboardTrendCmd = &cobra.Command{
	Use:   "revenue-trend",
	Short: "Revenue over time",
	RunE: dashboardRunner("dashboard-trend", func(ctx context.Context, client *api.Client) (interface{}, error) {
		return client.RevenueTrend(ctx)
	}),
}

var dashboardAgingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Receivables aging buckets",
	RunE: dashboardRunner("dashboard-aging", func(ctx context.Context, client *api.Client) (interface{}, error) {
		return client.AgingAnalysis(ctx)
	}),
}

var dashboardRevenueCmd = &cobra.Command{
	Use:   "customer-revenue",
	Short: "Revenue grouped by customer type",
	RunE: dashboardRunner("dashboard-revenue", func(ctx context.Context, client *api.Client) (interface{}, error) {
		return client.CustomerRevenue(ctx)
	}),
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardMetricsCmd)
	dashboardCmd.AddCommand(dashboardTrendCmd)
	dashboardCmd.AddCommand(dashboardAgingCmd)
	dashboardCmd.AddCommand(dashboardRevenueCmd)

	for _, sub := range []*cobra.Command{dashboardMetricsCmd, dashboardTrendCmd, dashboardAgingCmd, dashboardRevenueCmd} {
		sub.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		sub.Flags().Int("timeout", 30, "Request timeout in seconds")
	}
}

// dashboardRunner builds the shared fetch-and-print flow of the dashboard
// subcommands.
func dashboardRunner(component string, fetch func(ctx context.Context, client *api.Client) (interface{}, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent(component)

		outputPath, _ := cmd.Flags().GetString("output")
		timeoutSecs, _ := cmd.Flags().GetInt("timeout")

		client, _, err := newAPIClient()
		if err != nil {
			return err
		}

		ctx, cancel := createCommandContext(timeoutSecs, log)
		defer cancel()

		result, err := fetch(ctx, client)
		if err != nil {
			return handleSubmitError(err, log)
		}
		return outputJSON(result, outputPath, log)
	}
}
