// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package quadstream

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/geoknoesis/rdf-go/rdf"
)

// Handler consumes a whole stream and reports its outcome. It is the
// contract between a stage and its successor in the pipeline.
type Handler func(*Iter) error

// Sink is the terminal consumer of a stage's output stream.
//
// The variant set is closed: a sink either writes to an output, hands the
// stream to the next pipeline stage, or pushes items into a channel for
// fan-in.
type Sink interface {
	HandleQuads(*Iter) error
}

// WriterSink renders every quad to w as one tab-separated line:
// subject, predicate, object, and graph name when present.
//
// The first error item of the stream, and the first write error, abort the
// sink and become the stage's failure.
type WriterSink struct {
	W io.Writer
}

// HandleQuads implements Sink.
func (s WriterSink) HandleQuads(quads *Iter) error {
	w := bufio.NewWriter(s.W)
	for {
		item, ok := quads.Next()
		if !ok {
			return w.Flush()
		}
		if item.Err != nil {
			return item.Err
		}
		if err := writeQuad(w, item.Quad); err != nil {
			return err
		}
	}
}

func writeQuad(w *bufio.Writer, q rdf.Statement) error {
	var err error
	if q.G != nil {
		_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", q.S, q.P.Value, q.O, q.G)
	} else {
		_, err = fmt.Fprintf(w, "%s\t%s\t%s\n", q.S, q.P.Value, q.O)
	}
	return err
}

// ChainSink hands the stream to the next stage's handler, which fully owns
// deciding the stream's fate. The next stage's result becomes this stage's
// result.
type ChainSink struct {
	Next Handler
}

// HandleQuads implements Sink.
func (s ChainSink) HandleQuads(quads *Iter) error {
	return s.Next(quads)
}

// ChannelSink pushes every successful item into a channel, after appending
// a blank-node suffix to each quad.
//
// An error item is logged with the source's name and draining stops there:
// some decoders re-emit the same failure forever, and one failing source
// must not abort its siblings. ChannelSink therefore always returns nil.
type ChannelSink struct {
	// Name identifies the source in log messages.
	Name string

	// Suffix is appended to every blank node identifier, so that distinct
	// sources never produce colliding blank nodes downstream.
	Suffix string

	// Ch receives the successful items. The sink never closes it.
	Ch chan<- rdf.Statement

	// Logger receives per-item errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// HandleQuads implements Sink.
func (s ChannelSink) HandleQuads(quads *Iter) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for {
		item, ok := quads.Next()
		if !ok {
			return nil
		}
		if item.Err != nil {
			logger.Warn("ingest.source.error", "source", s.Name, "err", item.Err)
			return nil
		}
		s.Ch <- AddBNodeSuffix(item.Quad, s.Suffix)
	}
}
