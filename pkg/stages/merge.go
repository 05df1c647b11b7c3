// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// buildMerge builds the merge stage: duplicate every named-graph quad into
// the default graph, or, with --drop, discard graph labels altogether.
func (e *Env) buildMerge(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("merge")
	drop := flags.Bool("drop", false, "drop graph labels instead of duplicating into the default graph")

	spec, err := parseStageArgs("merge", flags, args)
	if err != nil {
		return nil, err
	}
	sink, err := e.NewSink(spec)
	if err != nil {
		return nil, err
	}

	return func(quads *quadstream.Iter) error {
		if *drop {
			return sinkQuads(sink, quadstream.DropGraphs(quads))
		}
		return sinkQuads(sink, quadstream.MergeDefaultGraph(quads))
	}, nil
}
