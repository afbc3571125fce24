package commands

import (
	"context"
	"fmt"
	"os"

	"hauntops-backend/cmd/hauntops/utils"
	"hauntops-backend/etl/fieldmap"
	configlibsql "hauntops-backend/lib/configutil/libsql"
	"hauntops-backend/lib/serviceutil"
	"hauntops-backend/lib/telemetry"
	"hauntops-backend/services/hauntops"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	verbose     *bool
	dbFile      *string
	mappingFile *string
)

var rootCmd = &cobra.Command{
	Use:   "hauntops",
	Short: "hauntops syncs volunteer and ticketing data into the haunt database.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
		telemetry.SetupFromEnv(cmd.Context(), "hauntops-cli")
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	dbFile = rootCmd.PersistentFlags().String("db", "haunt.db", "The sqlite database to sync into.")
	mappingFile = rootCmd.PersistentFlags().String("mapping", "etl.json5", "The field mapping config file.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openService(ctx context.Context) hauntops.Service {
	database, err := configlibsql.Struct{File: *dbFile}.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	svc := hauntops.NewService(database)
	if err := svc.Init(ctx); err != nil {
		serviceutil.Fatal("failed to apply schema", err)
	}
	return svc
}

func loadMapping() fieldmap.Mapping {
	mapping, err := fieldmap.Load(*mappingFile)
	if err != nil {
		serviceutil.Fatal("failed to read field mapping", err)
	}
	return mapping
}

func printReport(report hauntops.Report) {
	t := utils.NewTable()
	t.AppendHeader(table.Row{"Processed", "Created", "Updated", "Skipped"})
	t.AppendRow(table.Row{report.Processed, report.Created, report.Updated, report.Skipped})
	t.Render()

	if len(report.Errors) > 0 {
		errs := utils.NewTable()
		errs.AppendHeader(table.Row{"Row", "Error"})
		for _, rowErr := range report.Errors {
			errs.AppendRow(table.Row{rowErr.Row, rowErr.Err.Error()})
		}
		errs.Render()
	}
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		serviceutil.Fatal(fmt.Sprintf("missing required environment variable %s", key), nil)
	}
	return value
}
