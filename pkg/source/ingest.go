// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package source

import (
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/sourcegraph/conc/pool"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// Ingester turns one or more sources into a single quad stream.
//
// A single source is parsed in place. Multiple sources are parsed by a
// bounded worker pool feeding a shared channel; the returned stream
// drains that channel. A source that fails to open or parse is logged
// and dropped, it never aborts its siblings.
type Ingester struct {
	// Main is the primary source, typically the positional argument.
	// Nil when the sources all come from Extra.
	Main *FileOrURL

	// Extra holds the --files sources, globs not yet expanded.
	Extra []FilesOrURL

	// Options apply to every source.
	Options ParseOptions

	// Workers bounds the parsing pool. Zero means runtime.NumCPU().
	Workers int

	Logger *slog.Logger
}

// Ingest resolves, opens and parses all sources.
//
// It fails before opening anything when --base is combined with more
// than one source: a single base IRI cannot be correct for several
// documents at once.
func (ing *Ingester) Ingest() (*quadstream.Iter, error) {
	logger := ing.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sources []FileOrURL
	if ing.Main != nil {
		sources = append(sources, *ing.Main)
	}
	for _, extra := range ing.Extra {
		resolved, err := extra.Resolve(logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, resolved...)
	}

	if len(sources) > 1 && ing.Options.Base != "" {
		return nil, errors.NewUsageError(
			"Cannot use --base with multiple sources",
			"Each source needs its own base IRI",
			"Drop --base or ingest the sources one at a time",
		)
	}

	if len(sources) == 0 {
		return quadstream.FromQuads(nil), nil
	}

	stats := &ingestStats{}

	if len(sources) == 1 {
		recordSourceOpened()
		stats.opened.Add(1)
		quads, err := Parse(sources[0], ing.Options)
		if err != nil {
			recordSourceFailed()
			return nil, err
		}
		return countQuads(quads, stats, logger), nil
	}

	workers := ing.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	// Submission happens off the caller's goroutine: pool.Go blocks once
	// all workers are busy, and the workers in turn block sending into ch
	// until the returned stream is drained.
	ch := make(chan rdf.Statement)
	p := pool.New().WithMaxGoroutines(workers)
	go func() {
		for _, src := range sources {
			p.Go(func() {
				recordSourceOpened()
				stats.opened.Add(1)
				quads, err := Parse(src, ing.Options)
				if err != nil {
					recordSourceFailed()
					stats.failed.Add(1)
					logger.Warn("ingest.source.error", "source", src.String(), "err", err)
					return
				}
				sink := quadstream.ChannelSink{
					Name:   src.String(),
					Suffix: quadstream.NewBNodeSuffix(),
					Ch:     ch,
					Logger: logger,
				}
				_ = sink.HandleQuads(quads)
			})
		}
		p.Wait()
		close(ch)
	}()

	return countQuads(quadstream.FromChannel(ch), stats, logger), nil
}

// ingestStats accumulates per-run counts, alongside the process-wide
// Prometheus counters, so the run can be summarized when it completes.
type ingestStats struct {
	opened atomic.Int64
	failed atomic.Int64
	quads  atomic.Int64
}

// countQuads feeds the ingestion counters as quads flow by, and logs a
// summary of the run once the stream is exhausted.
func countQuads(quads *quadstream.Iter, stats *ingestStats, logger *slog.Logger) *quadstream.Iter {
	done := false
	return quadstream.New(func() (quadstream.Item, bool) {
		item, ok := quads.Next()
		if ok && item.Err == nil {
			recordQuadsIngested(1)
			stats.quads.Add(1)
		}
		if !ok && !done {
			done = true
			logger.Debug("ingest.done",
				"sources", stats.opened.Load(),
				"failed", stats.failed.Load(),
				"quads", stats.quads.Load())
		}
		return item, ok
	})
}
