package commands

import (
	"hauntops-backend/lib/restyutil"
	"hauntops-backend/lib/scrapers/ivolunteer"
	"hauntops-backend/lib/serviceutil"
	"hauntops-backend/services/hauntops"

	"github.com/spf13/cobra"
)

var (
	fetchUsersDryRun  *bool
	fetchUsersBaseUrl *string
	fetchUsersSignups *bool
)

func init() {
	fetchUsersDryRun = fetchUsersCmd.Flags().Bool("dry-run", false, "Classify rows without writing anything.")
	fetchUsersBaseUrl = fetchUsersCmd.Flags().String("base-url", "https://the-haunt.ivolunteer.com", "The volunteer portal's organization url.")
	fetchUsersSignups = fetchUsersCmd.Flags().Bool("signups", false, "Also sync each participant's signup slots.")
	rootCmd.AddCommand(fetchUsersCmd)
}

var fetchUsersCmd = &cobra.Command{
	Use:   "fetch-users [--signups]",
	Short: "Pulls the participant feed from the volunteer portal API and syncs it.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := ivolunteer.NewClient(ivolunteer.ClientOptions{
			BaseUrl: *fetchUsersBaseUrl,
			ApiKey:  requireEnv("IVOLUNTEER_API_KEY"),
		})
		if *verbose {
			ivolunteer.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/ivolunteer"))
		}

		rows, err := client.Participants(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch participants", err)
		}

		mapping := loadMapping()
		svc := openService(ctx)
		opts := hauntops.RunOptions{DryRun: *fetchUsersDryRun}

		report, err := svc.LoadUsers(ctx, mapping, rows, opts)
		if err != nil {
			serviceutil.Fatal("run aborted", err)
		}
		printReport(report)

		if *fetchUsersSignups {
			report, err := svc.LoadParticipation(ctx, mapping, rows, opts)
			if err != nil {
				serviceutil.Fatal("run aborted", err)
			}
			printReport(report)
		}
	},
}
