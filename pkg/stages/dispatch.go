// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/dataset"
	"github.com/pchampin/sophia-cli/pkg/iri"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
	"github.com/pchampin/sophia-cli/pkg/source"
)

// buildDispatch builds the dispatch stage: write every named graph whose
// IRI starts with the given root to a file at the corresponding relative
// path under the destination directory; everything else flows on to the
// sink. The root is a directory IRI: a trailing slash is appended when
// missing, so sibling IRIs sharing a name prefix do not match.
//
// The stream is materialized first: each dispatched file needs all the
// quads of its graph together.
func (e *Env) buildDispatch(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("dispatch")
	destination := flags.StringP("destination", "d", ".", "directory under which graph files are written")
	overwrite := flags.Bool("overwrite", false, "replace existing files instead of failing")
	format := flags.StringP("format", "f", "", "fallback format for files without a recognized extension")
	relativize := flags.Bool("relativize", false, "relativize each dispatched graph against its own IRI")

	spec, err := parseStageArgs("dispatch", flags, args)
	if err != nil {
		return nil, err
	}
	if len(flags.Args()) != 1 {
		return nil, errors.NewUsageError(
			"Wrong arguments for dispatch",
			fmt.Sprintf("Expected exactly one root IRI, got %d arguments", len(flags.Args())),
			"",
		)
	}
	root := flags.Args()[0]
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}

	fallback := rdf.FormatNQuads
	if *format != "" {
		fallback, err = source.ParseFormat(*format)
		if err != nil {
			return nil, errors.NewUsageError("Unrecognized format", err.Error(), "")
		}
	}

	sink, err := e.NewSink(spec)
	if err != nil {
		return nil, err
	}

	d := &dispatcher{
		root:        root,
		destination: *destination,
		overwrite:   *overwrite,
		fallback:    fallback,
		relativize:  *relativize,
		env:         e,
	}
	return func(quads *quadstream.Iter) error {
		ds, err := dataset.FromIter(quads)
		if err != nil {
			return errors.NewStreamError("Error while processing quads", err)
		}
		return d.run(ds, sink)
	}, nil
}

type dispatcher struct {
	root        string
	destination string
	overwrite   bool
	fallback    rdf.Format
	relativize  bool
	env         *Env
}

func (d *dispatcher) run(ds *dataset.Dataset, sink quadstream.Sink) error {
	dispatched := map[string]bool{}
	for _, g := range ds.GraphNames() {
		giri, ok := g.(rdf.IRI)
		if !ok || !strings.HasPrefix(giri.Value, d.root) {
			continue
		}
		rel := strings.TrimPrefix(giri.Value, d.root)
		if rel == "" || strings.Contains(rel, "..") {
			d.env.logger().Warn("dispatch.graph.skipped",
				"graph", giri.Value, "reason", "unsafe relative path")
			continue
		}
		if err := d.writeGraph(giri, rel, ds.Graph(g)); err != nil {
			// one failing graph must not abort the others
			d.env.logger().Warn("dispatch.graph.error", "graph", giri.Value, "err", err)
			continue
		}
		dispatched[g.String()] = true
	}

	rest := ds.Filter(func(q rdf.Statement) bool {
		return q.G == nil || !dispatched[q.G.String()]
	})
	return sinkQuads(sink, quadstream.FromQuads(rest))
}

// writeGraph writes one graph's quads as triples (the graph label is
// implied by the file) at the path derived from its IRI.
func (d *dispatcher) writeGraph(g rdf.IRI, rel string, quads []rdf.Statement) error {
	path := filepath.Join(d.destination, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	existed := false
	if _, err := os.Stat(path); err == nil {
		if !d.overwrite {
			return fmt.Errorf("%s already exists (use --overwrite)", path)
		}
		existed = true
	}

	format := d.fallback
	if f, err := source.GuessFromPath(path); err == nil {
		format = f
	}

	triples := make([]rdf.Statement, len(quads))
	copy(triples, quads)
	for i := range triples {
		triples[i].G = nil
	}
	if d.relativize {
		base, err := iri.ParseBase(g.Value)
		if err == nil {
			// quads may reference IRIs as far up as the dispatch root
			r := iri.NewRelativizer(base, strings.Count(rel, "/"))
			for i := range triples {
				triples[i] = r.RelativizeQuad(triples[i])
			}
		}
	}

	s := serializeSink{format: format, path: path, stdout: d.env.stdout()}
	if err := s.HandleQuads(quadstream.FromQuads(triples)); err != nil {
		return err
	}
	if existed {
		d.env.logger().Info("dispatch.graph.overwritten", "graph", g.Value, "path", path)
	} else {
		d.env.logger().Info("dispatch.graph.written", "graph", g.Value, "path", path)
	}
	return nil
}
