package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the global text logger. verbose enables
// debug level output, which also turns on request/response
// dumps in the http clients.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
