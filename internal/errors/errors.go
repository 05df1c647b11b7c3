// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package errors provides structured error handling for the sophia CLI.
//
// It defines UserError, a type that carries what went wrong, why it
// happened, and how to fix it, together with the exit code the process
// should use. Error classes map to exit codes as follows:
//
//   - ExitSuccess (0): successful execution
//   - ExitUsage (1): pre-flight validation errors (conflicting options,
//     invalid arguments), reported before any processing starts
//   - ExitSource (2): source acquisition errors (cannot open file, network
//     error, non-2xx response) when they are fatal for the run
//   - ExitDestination (3): destination errors (cannot create file, broken
//     output pipe)
//   - ExitPipeline (4): errors parsing a piped sub-command
//   - ExitStream (5): per-item stream errors surfaced by a direct sink
//   - ExitInternal (10): internal errors (bugs, panics)
//   - ExitFalse (128): an ASK query returned false under --status; not an
//     error, but a distinguished non-zero code
package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// As delegates to the standard library, so that callers do not need to
// import both packages.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Is delegates to the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// New delegates to the standard library.
func New(text string) error { return stderrors.New(text) }

// Exit codes for the different error classes.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitUsage indicates invalid or conflicting command-line usage.
	ExitUsage = 1

	// ExitSource indicates a fatal source acquisition error.
	ExitSource = 2

	// ExitDestination indicates a destination error.
	ExitDestination = 3

	// ExitPipeline indicates a piped sub-command that failed to parse.
	ExitPipeline = 4

	// ExitStream indicates a stream error surfaced by a direct sink.
	ExitStream = 5

	// ExitInternal indicates an internal error (a bug worth reporting).
	ExitInternal = 10

	// ExitFalse is used when an ASK query evaluates to false and the
	// --status flag was given.
	ExitFalse = 128
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information: Message (what went wrong),
// Cause (why it happened), and Fix (how to resolve it), plus the exit code
// to use when terminating because of this error.
type UserError struct {
	// Message describes what went wrong in user-facing language.
	Message string

	// Cause explains why the error occurred.
	Cause string

	// Fix provides an actionable suggestion, when there is one.
	Fix string

	// ExitCode is the process exit code for this error class.
	ExitCode int

	// Err is the underlying error, if any, for errors.Is/As chains.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a pre-flight validation error with exit code
// ExitUsage. Usage errors are reported before any processing starts.
func NewUsageError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitUsage}
}

// NewSourceError creates a source acquisition error with exit code
// ExitSource.
//
// In multi-source mode the ingester logs acquisition errors instead of
// returning them; this constructor is for the single-source case, where the
// error is fatal for the whole run.
func NewSourceError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitSource, Err: err}
}

// NewDestinationError creates a destination error with exit code
// ExitDestination.
func NewDestinationError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitDestination, Err: err}
}

// NewPipelineError creates an error for a piped sub-command that failed to
// parse, with exit code ExitPipeline.
func NewPipelineError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitPipeline, Err: err}
}

// NewStreamError creates an error for a stream failure surfaced by a direct
// sink, with exit code ExitStream.
func NewStreamError(msg string, err error) *UserError {
	return &UserError{Message: msg, ExitCode: ExitStream, Err: err}
}

// NewFalseExit creates the silent, message-less error that makes the
// process exit with ExitFalse after an ASK query evaluated to false under
// --status.
func NewFalseExit() *UserError {
	return &UserError{ExitCode: ExitFalse}
}

// NewInternalError creates an internal error with exit code ExitInternal.
func NewInternalError(msg string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Fix:      "This is a bug. Please report it at github.com/pchampin/sophia-cli/issues",
		ExitCode: ExitInternal,
		Err:      err,
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display, with
// colored Error/Cause/Fix sections. Color output respects the NO_COLOR
// environment variable and the noColor parameter. Empty sections are
// omitted.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	if e.Err != nil && e.Cause == "" {
		out.WriteString(fmt.Sprintf(" (%v)", e.Err))
	}
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// FatalError prints the error to stderr and exits with the appropriate
// code. For non-UserError values it prints a plain message and exits with
// ExitInternal. This function never returns.
func FatalError(err error) {
	if err == nil {
		return
	}

	var ue *UserError
	if As(err, &ue) {
		if ue.Message != "" {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
