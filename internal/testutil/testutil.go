// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package testutil provides quad-building helpers shared by the test
// suites of the pipeline packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
)

// IRI builds an IRI term.
func IRI(value string) rdf.IRI {
	return rdf.IRI{Value: value}
}

// BNode builds a blank node term.
func BNode(id string) rdf.BlankNode {
	return rdf.BlankNode{ID: id}
}

// Lit builds a plain string literal.
func Lit(lexical string) rdf.Literal {
	return rdf.Literal{Lexical: lexical}
}

// Triple builds a default-graph quad from three IRIs.
//
// Example:
//
//	q := testutil.Triple("http://ex.org/s", "http://ex.org/p", "http://ex.org/o")
func Triple(s, p, o string) rdf.Statement {
	return rdf.Statement{S: IRI(s), P: IRI(p), O: IRI(o)}
}

// Quad builds a named-graph quad from four IRIs.
func Quad(s, p, o, g string) rdf.Statement {
	return rdf.Statement{S: IRI(s), P: IRI(p), O: IRI(o), G: IRI(g)}
}

// WriteFile creates a file with the given content under a fresh temp
// directory and returns its path. The file is removed when the test
// finishes.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}
