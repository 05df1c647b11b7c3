// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package stages implements the pipeline stages of the sophia command and
// the registry mapping stage names (and their short aliases) to builders.
package stages

import (
	"io"
	"log/slog"
	"os"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/spf13/pflag"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/pipeline"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// Env carries the run-wide collaborators every stage may need. One Env is
// built by the command entry point and shared by all stages of a run.
type Env struct {
	// Logger for stage events. Defaults to slog.Default().
	Logger *slog.Logger

	// ContextLoader resolves remote JSON-LD contexts for the parse stage.
	ContextLoader rdf.DocumentLoader

	// Prefixes expands prefixed names in filter, map and query terms.
	Prefixes map[string]string

	// Stdout is where terminal stages write. Defaults to os.Stdout.
	Stdout io.Writer
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

// Registry returns the stage registry for this Env, including aliases.
func (e *Env) Registry() pipeline.Registry {
	reg := pipeline.Registry{}
	add := func(builder pipeline.Builder, names ...string) {
		for _, n := range names {
			reg[n] = builder
		}
	}
	add(e.buildSerialize, "serialize", "s")
	add(e.buildMerge, "merge", "merge-default-graph", "m")
	add(e.buildFilter, "filter", "f")
	add(e.buildMap, "map")
	add(e.buildQuery, "query", "q")
	add(e.buildCanonicalize, "canonicalize", "c14n", "c")
	add(e.buildAbsolutize, "absolutize", "a")
	add(e.buildRelativize, "relativize", "r")
	add(e.buildDispatch, "dispatch", "d")
	add(e.buildNull, "null", "n", "Z")
	return reg
}

// NewSink builds the terminal consumer for a stage: the next pipeline
// stage when a trailing spec was captured, stdout rendering otherwise.
func (e *Env) NewSink(spec *pipeline.Spec) (quadstream.Sink, error) {
	if spec == nil {
		return quadstream.WriterSink{W: e.stdout()}, nil
	}
	next, err := spec.Build(e.Registry())
	if err != nil {
		return nil, err
	}
	return quadstream.ChainSink{Next: next}, nil
}

// newFlagSet returns a pflag set configured the way every stage parses:
// errors are returned, not printed, and become usage errors upstream.
func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	return flags
}

// parseStageArgs splits off the trailing pipeline spec, then parses the
// stage's own flags. Flag errors are reported as usage errors naming the
// stage.
func parseStageArgs(name string, flags *pflag.FlagSet, args []string) (*pipeline.Spec, error) {
	own, spec := pipeline.Split(args)
	if err := flags.Parse(own); err != nil {
		return nil, errors.NewUsageError(
			"Invalid arguments for "+name,
			err.Error(),
			"Run 'sophia "+name+" --help' for usage",
		)
	}
	return spec, nil
}
