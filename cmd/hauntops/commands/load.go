package commands

import (
	"hauntops-backend/lib/serviceutil"
	"hauntops-backend/services/hauntops"

	"github.com/spf13/cobra"
)

var (
	loadUsersDryRun         *bool
	loadParticipationDryRun *bool
	loadGroupsDryRun        *bool
)

func init() {
	loadUsersDryRun = loadUsersCmd.Flags().Bool("dry-run", false, "Classify rows without writing anything.")
	loadParticipationDryRun = loadParticipationCmd.Flags().Bool("dry-run", false, "Classify rows without writing anything.")
	loadGroupsDryRun = loadGroupsCmd.Flags().Bool("dry-run", false, "Classify rows without writing anything.")

	rootCmd.AddCommand(loadUsersCmd)
	rootCmd.AddCommand(loadParticipationCmd)
	rootCmd.AddCommand(loadGroupsCmd)
}

var loadUsersCmd = &cobra.Command{
	Use:   "load-users <file.json|file.csv>",
	Short: "Loads a volunteer export into the database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		mapping := loadMapping()
		rows, err := readRows(args[0], mapping)
		if err != nil {
			serviceutil.Fatal("failed to read rows", err)
		}

		svc := openService(ctx)
		report, err := svc.LoadUsers(ctx, mapping, rows, hauntops.RunOptions{DryRun: *loadUsersDryRun})
		if err != nil {
			serviceutil.Fatal("run aborted", err)
		}
		printReport(report)
	},
}

var loadParticipationCmd = &cobra.Command{
	Use:   "load-participation <file.json|file.csv>",
	Short: "Loads a signup export into the database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		mapping := loadMapping()
		rows, err := readRows(args[0], mapping)
		if err != nil {
			serviceutil.Fatal("failed to read rows", err)
		}

		svc := openService(ctx)
		report, err := svc.LoadParticipation(ctx, mapping, rows, hauntops.RunOptions{DryRun: *loadParticipationDryRun})
		if err != nil {
			serviceutil.Fatal("run aborted", err)
		}
		printReport(report)
	},
}

var loadGroupsCmd = &cobra.Command{
	Use:   "load-groups <file.json|file.csv>",
	Short: "Loads a group roster export into the database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		mapping := loadMapping()
		rows, err := readRows(args[0], mapping)
		if err != nil {
			serviceutil.Fatal("failed to read rows", err)
		}

		svc := openService(ctx)
		report, err := svc.LoadGroups(ctx, mapping, rows, hauntops.RunOptions{DryRun: *loadGroupsDryRun})
		if err != nil {
			serviceutil.Fatal("run aborted", err)
		}
		printReport(report)
	},
}
