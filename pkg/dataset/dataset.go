// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package dataset provides an in-memory, insertion-ordered quad collection
// with a graph-name index.
//
// Stages that need multiple passes over their input (dispatch, query,
// canonicalize) materialize their stream into a Dataset once, then only
// read it.
package dataset

import (
	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// Dataset is a materialized quad collection. It is built single-threaded
// and read-only afterwards.
type Dataset struct {
	quads    []rdf.Statement
	byGraph  map[string][]int
	graphs   []rdf.Term
	defaults []int
}

// FromIter materializes the whole stream. The first error item aborts and
// is returned.
func FromIter(quads *quadstream.Iter) (*Dataset, error) {
	all, err := quadstream.Collect(quads)
	if err != nil {
		return nil, err
	}
	return FromQuads(all), nil
}

// FromQuads builds a dataset over a slice of quads. The slice is not
// copied.
func FromQuads(all []rdf.Statement) *Dataset {
	ds := &Dataset{
		quads:   all,
		byGraph: make(map[string][]int),
	}
	for i, q := range all {
		if q.G == nil {
			ds.defaults = append(ds.defaults, i)
			continue
		}
		key := q.G.String()
		if _, seen := ds.byGraph[key]; !seen {
			ds.graphs = append(ds.graphs, q.G)
		}
		ds.byGraph[key] = append(ds.byGraph[key], i)
	}
	return ds
}

// Len returns the total number of quads.
func (ds *Dataset) Len() int {
	return len(ds.quads)
}

// Quads returns all quads in insertion order.
func (ds *Dataset) Quads() []rdf.Statement {
	return ds.quads
}

// GraphNames returns the distinct graph names, in first-appearance order.
func (ds *Dataset) GraphNames() []rdf.Term {
	return ds.graphs
}

// Graph returns the quads whose graph name is g, in insertion order.
func (ds *Dataset) Graph(g rdf.Term) []rdf.Statement {
	idx := ds.byGraph[g.String()]
	out := make([]rdf.Statement, len(idx))
	for i, j := range idx {
		out[i] = ds.quads[j]
	}
	return out
}

// DefaultGraph returns the quads in the default graph, in insertion order.
func (ds *Dataset) DefaultGraph() []rdf.Statement {
	out := make([]rdf.Statement, len(ds.defaults))
	for i, j := range ds.defaults {
		out[i] = ds.quads[j]
	}
	return out
}

// Filter returns the quads for which keep returns true, in insertion
// order.
func (ds *Dataset) Filter(keep func(rdf.Statement) bool) []rdf.Statement {
	var out []rdf.Statement
	for _, q := range ds.quads {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}
