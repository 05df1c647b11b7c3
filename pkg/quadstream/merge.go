// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package quadstream

import "github.com/geoknoesis/rdf-go/rdf"

// MergeDefaultGraph rewrites a stream so that every quad belonging to a
// named graph is also emitted, once, as an equivalent default-graph quad.
//
// The duplicate is emitted strictly after its source quad, on the following
// pull. Default-graph quads and error items pass through unchanged and are
// never duplicated. The transformation is a one-item lookahead: O(1) extra
// memory regardless of stream length.
func MergeDefaultGraph(quads *Iter) *Iter {
	m := &defaultGraphMerger{quads: quads}
	return New(m.next)
}

// defaultGraphMerger is an explicit two-state machine: either no item is
// buffered, or the default-graph duplicate of the last emitted quad is.
type defaultGraphMerger struct {
	quads    *Iter
	buffered *Item
}

func (m *defaultGraphMerger) next() (Item, bool) {
	if m.buffered != nil {
		item := *m.buffered
		m.buffered = nil
		return item, true
	}
	item, ok := m.quads.Next()
	if !ok {
		return Item{}, false
	}
	if item.Err == nil && item.Quad.G != nil {
		dup := item.Quad
		dup.G = nil
		m.buffered = &Item{Quad: dup}
	}
	return item, true
}

// DropGraphs rewrites a stream so that every quad loses its graph label,
// without duplication. The output has exactly as many items as the input.
func DropGraphs(quads *Iter) *Iter {
	return Map(quads, func(q rdf.Statement) rdf.Statement {
		q.G = nil
		return q
	})
}
