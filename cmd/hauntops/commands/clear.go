package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"hauntops-backend/cmd/hauntops/utils"
	"hauntops-backend/lib/serviceutil"
	"hauntops-backend/services/hauntops"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	clearYes        *bool
	clearDryRun     *bool
	clearKeepEmails *[]string
)

func init() {
	clearYes = clearCmd.Flags().Bool("yes", false, "Skip the confirmation prompt.")
	clearDryRun = clearCmd.Flags().Bool("dry-run", false, "Report counts without deleting anything.")
	clearKeepEmails = clearCmd.Flags().StringArray("keep-email", nil, "A user account to keep, repeatable.")
	rootCmd.AddCommand(clearCmd)
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

var clearCmd = &cobra.Command{
	Use:   "clear [--yes] [--keep-email <email>]...",
	Short: "Wipes all synced haunt data, keeping only the listed user accounts.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if !*clearDryRun && !*clearYes {
			if !confirm("This deletes every synced row. Continue?") {
				fmt.Println("aborted")
				return
			}
		}

		svc := openService(ctx)
		counts, err := svc.Clear(ctx, hauntops.ClearOptions{
			KeepEmails: *clearKeepEmails,
			DryRun:     *clearDryRun,
		})
		if err != nil {
			serviceutil.Fatal("failed to clear data", err)
		}

		header := "Deleted"
		if *clearDryRun {
			header = "Would delete"
		}
		t := utils.NewTable()
		t.AppendHeader(table.Row{"Table", header})
		for _, count := range counts {
			t.AppendRow(table.Row{count.Table, count.Rows})
		}
		t.Render()
	},
}
