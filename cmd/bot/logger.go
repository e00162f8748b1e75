package main

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger installs the process-wide slog handler.
func InitLogger(level, format string) *slog.Logger {
	logger := slog.New(newHandler(os.Stdout, level, format))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
