package main

import (
	"fmt"
	"log/slog"
	"os"
)

// ResolveLogLevel parses a -log flag value.
func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// InitLogger builds the process logger and installs it as the slog
// default. Debug mode adds source locations.
func InitLogger(level string, debug bool) (*slog.Logger, error) {
	logLevel, err := ResolveLogLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: debug,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
