// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package quadstream

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/geoknoesis/rdf-go/rdf"
)

// NewBNodeSuffix returns a fresh random blank-node disambiguation suffix.
//
// The suffix is generated once per source and is immutable for the source's
// lifetime. 48 bits of randomness make a collision between two sources of
// the same run negligible; a per-run counter would guarantee uniqueness but
// would leak the ingestion order into the output.
func NewBNodeSuffix() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err) // crypto/rand does not fail on supported platforms
	}
	return hex.EncodeToString(b[:])
}

// AddBNodeSuffix appends suffix to every blank node identifier of the quad,
// including blank nodes nested in quoted triples and the graph name.
func AddBNodeSuffix(q rdf.Statement, suffix string) rdf.Statement {
	return rdf.Statement{
		S: addBNodeSuffixTerm(q.S, suffix),
		P: q.P,
		O: addBNodeSuffixTerm(q.O, suffix),
		G: addBNodeSuffixTerm(q.G, suffix),
	}
}

func addBNodeSuffixTerm(t rdf.Term, suffix string) rdf.Term {
	switch term := t.(type) {
	case rdf.BlankNode:
		return rdf.BlankNode{ID: term.ID + suffix}
	case rdf.TripleTerm:
		return rdf.TripleTerm{
			S: addBNodeSuffixTerm(term.S, suffix),
			P: term.P,
			O: addBNodeSuffixTerm(term.O, suffix),
		}
	default:
		return t
	}
}
