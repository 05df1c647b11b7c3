// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	prefixes := map[string]string{"ex": "http://ex.org/"}

	tests := []struct {
		in   string
		want rdf.Term
	}{
		{"<http://ex.org/s>", rdf.IRI{Value: "http://ex.org/s"}},
		{"a", rdf.IRI{Value: rdfType}},
		{"ex:alice", rdf.IRI{Value: "http://ex.org/alice"}},
		{"_:b1", rdf.BlankNode{ID: "b1"}},
		{`"hello"`, rdf.Literal{Lexical: "hello"}},
		{`"hello"@en`, rdf.Literal{Lexical: "hello", Lang: "en"}},
		{`"12"^^<http://www.w3.org/2001/XMLSchema#integer>`, rdf.Literal{
			Lexical:  "12",
			Datatype: rdf.IRI{Value: "http://www.w3.org/2001/XMLSchema#integer"},
		}},
		{`"say \"hi\"\n"`, rdf.Literal{Lexical: "say \"hi\"\n"}},
	}
	for _, tt := range tests {
		got, err := parseTerm(tt.in, prefixes)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseTermErrors(t *testing.T) {
	prefixes := map[string]string{"ex": "http://ex.org/"}

	for _, in := range []string{
		"",
		"noprefix",
		"nosuchprefix:x",
		`"unterminated`,
		`"lexical"^^notaniri`,
	} {
		_, err := parseTerm(in, prefixes)
		assert.Error(t, err, "input %q", in)
	}
}

func TestTermEqual(t *testing.T) {
	iri := rdf.IRI{Value: "http://ex.org/s"}
	assert.True(t, termEqual(iri, rdf.IRI{Value: "http://ex.org/s"}))
	assert.True(t, termEqual(nil, nil))
	assert.False(t, termEqual(iri, nil))
	assert.False(t, termEqual(iri, rdf.Literal{Lexical: "http://ex.org/s"}))
	assert.False(t, termEqual(iri, rdf.IRI{Value: "http://ex.org/other"}))
}
