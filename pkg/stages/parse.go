// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
	"github.com/pchampin/sophia-cli/pkg/source"
)

// RunParse is the source stage: it ingests one or many sources and feeds
// the resulting stream into its sink. Unlike the other stages it does not
// receive a stream, so it is not part of the registry.
func RunParse(e *Env, args []string) error {
	flags := newFlagSet("parse")
	format := flags.StringP("format", "f", "", "input format (name, extension or media type)")
	base := flags.StringP("base", "b", "", "base IRI overriding the source's own")
	inlineOnly := flags.Bool("inline-contexts-only", false, "never fetch remote JSON-LD contexts")
	files := flags.StringSlice("files", nil, "ingest several files, glob patterns or URLs")

	spec, err := parseStageArgs("parse", flags, args)
	if err != nil {
		return err
	}
	positional := flags.Args()
	if len(positional) > 1 {
		return errors.NewUsageError(
			"Too many arguments for parse",
			fmt.Sprintf("Expected at most one source, got %d", len(positional)),
			"Use --files to ingest several sources",
		)
	}
	if len(*files) > 0 && len(positional) > 0 {
		return errors.NewUsageError(
			"Cannot combine a positional source with --files",
			"",
			"Put every source in --files",
		)
	}

	var opts source.ParseOptions
	if *format != "" {
		f, err := source.ParseFormat(*format)
		if err != nil {
			return errors.NewUsageError("Unrecognized format", err.Error(), "")
		}
		opts.Format = f
	}
	opts.Base = *base
	opts.InlineContextsOnly = *inlineOnly
	opts.ContextLoader = e.ContextLoader

	ing := &source.Ingester{Options: opts, Logger: e.logger()}
	if len(*files) == 0 {
		descriptor := "-"
		if len(positional) == 1 {
			descriptor = positional[0]
		}
		main, err := source.ParseFileOrURL(descriptor)
		if err != nil {
			return errors.NewSourceError("Invalid source", err.Error(), "", err)
		}
		ing.Main = &main
	} else {
		for _, f := range *files {
			multi, err := source.ParseFilesOrURL(f)
			if err != nil {
				return errors.NewSourceError("Invalid source", err.Error(), "", err)
			}
			ing.Extra = append(ing.Extra, multi)
		}
	}

	sink, err := e.NewSink(spec)
	if err != nil {
		return err
	}
	quads, err := ing.Ingest()
	if err != nil {
		return err
	}
	return classifyStream(sink.HandleQuads(quads))
}

// classifyStream tags an error escaping a sink as a stream-processing
// failure, unless a stage already classified it.
func classifyStream(err error) error {
	if err == nil {
		return nil
	}
	var uerr *errors.UserError
	if errors.As(err, &uerr) {
		return err
	}
	return errors.NewStreamError("Error while processing quads", err)
}

// sinkQuads runs a transformed stream into a sink, classifying the result.
func sinkQuads(sink quadstream.Sink, quads *quadstream.Iter) error {
	return classifyStream(sink.HandleQuads(quads))
}
