package commands

import (
	"context"

	"hauntops-backend/lib/restyutil"
	"hauntops-backend/lib/scrapers/passage"
	"hauntops-backend/lib/serviceutil"
	"hauntops-backend/services/hauntops"

	"github.com/spf13/cobra"
)

var (
	ticketSalesDryRun   *bool
	ticketSalesBaseUrl  *string
	ticketSalesMaxPages *int
	ticketSalesReport   *bool
)

func init() {
	ticketSalesDryRun = ticketSalesCmd.Flags().Bool("dry-run", false, "Classify rows without writing anything.")
	ticketSalesBaseUrl = ticketSalesCmd.Flags().String("base-url", "https://the-haunt.gopassage.com", "The ticketing portal's organization url.")
	ticketSalesMaxPages = ticketSalesCmd.Flags().Int("max-pages", 20, "The most listing pages to walk before giving up.")
	ticketSalesReport = ticketSalesCmd.Flags().Bool("report", false, "Scrape the sales report instead of the upcoming events table.")
	rootCmd.AddCommand(ticketSalesCmd)
}

func newPortalClient(ctx context.Context, baseUrl string) (*passage.Client, error) {
	client, err := passage.NewClient(ctx, passage.ClientOptions{BaseUrl: baseUrl})
	if err != nil {
		return nil, err
	}
	if *verbose {
		passage.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/passage"))
	}
	err = client.Login(ctx, requireEnv("GOPASSAGE_EMAIL"), requireEnv("GOPASSAGE_PASSWORD"))
	if err != nil {
		return nil, err
	}
	return client, nil
}

var ticketSalesCmd = &cobra.Command{
	Use:   "ticket-sales [--report] [--max-pages <n>]",
	Short: "Scrapes ticket sales from the ticketing portal and syncs them.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client, err := newPortalClient(ctx, *ticketSalesBaseUrl)
		if err != nil {
			serviceutil.Fatal("failed to sign in to the ticketing portal", err)
		}

		svc := openService(ctx)
		opts := hauntops.RunOptions{DryRun: *ticketSalesDryRun}

		var report hauntops.Report
		if *ticketSalesReport {
			rows, err := client.TicketSalesReport(ctx)
			if err != nil {
				serviceutil.Fatal("failed to fetch the sales report", err)
			}
			report, err = svc.LoadSalesReport(ctx, rows, opts)
			if err != nil {
				serviceutil.Fatal("run aborted", err)
			}
		} else {
			report, err = svc.FetchTicketSales(ctx, client, *ticketSalesMaxPages, opts)
			if err != nil {
				serviceutil.Fatal("run aborted", err)
			}
		}
		printReport(report)
	},
}
