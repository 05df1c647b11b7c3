// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package pipeline implements deferred parsing of chained sub-commands.
//
// A stage's command line may end with a pipe marker ("!") followed by the
// name and arguments of exactly one further stage, recursively:
//
//	sophia parse data.trig ! merge --drop ! serialize -f turtle
//
// Representing this grammar as a single recursive structure is infeasible
// (unbounded nesting), so the tokens after the first pipe marker are
// captured opaquely at parse time, and only parsed into a concrete handler
// when the outer stage actually needs its successor.
package pipeline

import (
	"fmt"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// Marker is the pipe token separating chained stages on the command line.
const Marker = "!"

// Spec captures "the rest of the command line" after a pipe marker.
//
// It is created at the head of a command line, consumed exactly once by the
// stage that embeds it, and never reused.
type Spec struct {
	// Tokens are the raw arguments of the piped sub-command, starting with
	// its name.
	Tokens []string
}

// Split cuts args at the first pipe marker.
//
// It returns the stage's own arguments and, if a marker was present, the
// Spec for the piped sub-command. A trailing marker with nothing after it
// yields an empty Spec, which Build rejects.
func Split(args []string) ([]string, *Spec) {
	for i, a := range args {
		if a == Marker {
			return args[:i], &Spec{Tokens: args[i+1:]}
		}
	}
	return args, nil
}

// Builder parses a stage's arguments (which may themselves contain another
// pipe marker) into a Handler for that stage.
type Builder func(args []string) (quadstream.Handler, error)

// Registry maps stage names, including aliases, to their builders.
type Registry map[string]Builder

// Build parses the captured tokens into the concrete next-stage handler.
//
// It is invoked at most once per pipe marker encountered during a run.
// Any failure is attributed to the piped sub-command.
func (s *Spec) Build(reg Registry) (quadstream.Handler, error) {
	if len(s.Tokens) == 0 {
		return nil, errors.NewPipelineError(
			"Invalid piped sub-command",
			"Nothing follows the pipe marker",
			"Remove the trailing '!' or name a sub-command after it",
			nil,
		)
	}
	name := s.Tokens[0]
	builder, ok := reg[name]
	if !ok {
		return nil, errors.NewPipelineError(
			"Invalid piped sub-command",
			fmt.Sprintf("%q is not a known sub-command", name),
			"Run 'sophia --help' for the list of sub-commands",
			nil,
		)
	}
	handler, err := builder(s.Tokens[1:])
	if err != nil {
		return nil, errors.NewPipelineError(
			"Invalid piped sub-command",
			fmt.Sprintf("parsing %q: %v", name, err),
			"Check the piped sub-command's arguments",
			err,
		)
	}
	return handler, nil
}
