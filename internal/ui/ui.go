// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package ui configures the terminal output of the sophia CLI.
//
// It sets up color output (respecting --no-color and the NO_COLOR
// environment variable) and the process-wide slog logger, whose level is
// derived from the -v/-q counts on the command line.
package ui

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// InitColors configures global color output based on the noColor flag.
// The fatih/color library already respects NO_COLOR automatically; this
// provides explicit control via the CLI flag.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// InitLogging installs the process-wide slog logger on stderr.
//
// The default level is Warn. Each -v lowers the threshold one notch
// (Info, then Debug), each -q raises it (Error, then off).
func InitLogging(verbose, quiet int) {
	level := LogLevel(verbose, quiet)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// LogLevel maps -v/-q counts to an slog level. Values beyond the known
// levels saturate.
func LogLevel(verbose, quiet int) slog.Level {
	switch v := verbose - quiet; {
	case v <= -2:
		return slog.LevelError + 4 // effectively off
	case v == -1:
		return slog.LevelError
	case v == 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
