// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
	"github.com/pchampin/sophia-cli/pkg/source"
)

// buildSerialize builds the serialize stage: encode the stream in an RDF
// serialization format, to stdout or to a file.
//
// With both an output file and a trailing pipe, the stream is teed: the
// file is written by a background task while the quads keep flowing to the
// piped sub-command.
func (e *Env) buildSerialize(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("serialize")
	format := flags.StringP("format", "f", "", "output format (name, extension or media type)")
	output := flags.StringP("output", "o", "", "output file (default: stdout)")

	spec, err := parseStageArgs("serialize", flags, args)
	if err != nil {
		return nil, err
	}
	if len(flags.Args()) != 0 {
		return nil, errors.NewUsageError(
			"Too many arguments for serialize",
			fmt.Sprintf("unexpected argument %q", flags.Args()[0]),
			"",
		)
	}

	f, err := serializeFormat(*format, *output)
	if err != nil {
		return nil, err
	}

	return func(quads *quadstream.Iter) error {
		sink := serializeSink{format: f, path: *output, stdout: e.stdout()}
		if spec == nil {
			return classifyStream(sink.HandleQuads(quads))
		}
		next, err := spec.Build(e.Registry())
		if err != nil {
			return err
		}
		return quadstream.Tee(quads, next, sink, e.logger())
	}, nil
}

// serializeFormat picks the output format: explicit flag first, then the
// output file's extension, then N-Quads.
func serializeFormat(format, output string) (rdf.Format, error) {
	if format != "" {
		f, err := source.ParseFormat(format)
		if err != nil {
			return "", errors.NewUsageError("Unrecognized format", err.Error(), "")
		}
		return f, nil
	}
	if output != "" {
		if f, err := source.GuessFromPath(output); err == nil {
			return f, nil
		}
	}
	return rdf.FormatNQuads, nil
}

// serializeSink encodes a stream with an rdf-go writer. It is also the
// background sink of the tee and the per-graph writer of the dispatch
// stage.
type serializeSink struct {
	format rdf.Format
	path   string
	stdout io.Writer
}

func (s serializeSink) HandleQuads(quads *quadstream.Iter) error {
	var out io.Writer = s.stdout
	if s.path != "" {
		file, err := os.Create(s.path)
		if err != nil {
			return errors.NewDestinationError(
				fmt.Sprintf("Cannot create %s", s.path), err.Error(), "", err)
		}
		defer file.Close()
		out = file
	}
	buf := bufio.NewWriter(out)
	if err := encodeQuads(buf, s.format, quads); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return errors.NewDestinationError("Write failed", err.Error(), "", err)
	}
	return nil
}

// encodeQuads drives an rdf-go writer over the stream. The first error
// item, and the first encoding error, abort it.
func encodeQuads(out io.Writer, format rdf.Format, quads *quadstream.Iter) error {
	w, err := rdf.NewWriter(out, format)
	if err != nil {
		return errors.NewInternalError("Cannot create encoder", err)
	}
	for {
		item, ok := quads.Next()
		if !ok {
			if err := w.Close(); err != nil {
				return errors.NewDestinationError("Write failed", err.Error(), "", err)
			}
			return nil
		}
		if item.Err != nil {
			return errors.NewStreamError("Error while processing quads", item.Err)
		}
		if err := w.Write(item.Quad); err != nil {
			return errors.NewDestinationError("Write failed", err.Error(), "", err)
		}
	}
}
