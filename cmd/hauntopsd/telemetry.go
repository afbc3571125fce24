package main

import (
	"context"
	"log/slog"

	"hauntops-backend/lib/restyutil"
	"hauntops-backend/lib/scrapers/ivolunteer"
	"hauntops-backend/lib/scrapers/passage"
	"hauntops-backend/lib/serviceutil"
	"hauntops-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "hauntopsd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	passage.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/passage"),
	)
	ivolunteer.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/ivolunteer"),
	)
}
