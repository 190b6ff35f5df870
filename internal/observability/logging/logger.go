package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process-wide JSON logger tagged with the service
// name and installs it as the slog default, so package-level slog
// calls in middleware and infrastructure share the same output.
func Setup(service, level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// parseLevel is forgiving: unknown values mean info.
func parseLevel(level string) slog.Level {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return lv
}
