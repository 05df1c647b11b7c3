// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package quadstream

import (
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBNodeSuffix(t *testing.T) {
	q := rdf.Statement{
		S: rdf.BlankNode{ID: "s"},
		P: rdf.IRI{Value: "a:p"},
		O: rdf.TripleTerm{
			S: rdf.BlankNode{ID: "inner"},
			P: rdf.IRI{Value: "a:p2"},
			O: rdf.Literal{Lexical: "x"},
		},
		G: rdf.BlankNode{ID: "g"},
	}
	out := AddBNodeSuffix(q, "_1")

	assert.Equal(t, rdf.BlankNode{ID: "s_1"}, out.S)
	assert.Equal(t, rdf.BlankNode{ID: "g_1"}, out.G)
	inner, ok := out.O.(rdf.TripleTerm)
	require.True(t, ok)
	assert.Equal(t, rdf.BlankNode{ID: "inner_1"}, inner.S)
	assert.Equal(t, rdf.Literal{Lexical: "x"}, inner.O)

	// the input quad is left untouched
	assert.Equal(t, rdf.BlankNode{ID: "s"}, q.S)
}

func TestAddBNodeSuffixLeavesOtherTerms(t *testing.T) {
	q := triple("a:s", "a:p", "a:o")
	assert.Equal(t, q, AddBNodeSuffix(q, "_1"))
}

func TestNewBNodeSuffixUnique(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		s := NewBNodeSuffix()
		require.Len(t, s, 12)
		require.False(t, seen[s], "suffix %q generated twice", s)
		seen[s] = true
	}
}
