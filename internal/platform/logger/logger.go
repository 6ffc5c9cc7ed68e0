package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout, tagged with the service
// name. Level defaults to info; set LOG_LEVEL=debug to lower it.
func New(service string) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", service)
}
