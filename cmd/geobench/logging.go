package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/brunobiangulo/geobench"
)

// LogFile is written into the results directory by commands that produce
// output there.
const LogFile = "geobench.log"

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer, c geobench.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// setupLogging points the default logger at w.
func setupLogging(c geobench.Config, w io.Writer) {
	slog.SetDefault(slog.New(newHandler(w, c)))
}

// setupLogTee configures slog to write to both w and geobench.log in dir.
// The caller closes the returned file.
func setupLogTee(c geobench.Config, w io.Writer, dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, LogFile))
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	slog.SetDefault(slog.New(newHandler(io.MultiWriter(w, f), c)))
	return f, nil
}
