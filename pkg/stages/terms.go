// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// parseTerm reads one term in N-Triples-like syntax: <iri>, _:id,
// "literal" with optional @lang or ^^<datatype>, or a prefixed name
// expanded against the configured prefixes.
func parseTerm(s string, prefixes map[string]string) (rdf.Term, error) {
	switch {
	case s == "":
		return nil, fmt.Errorf("empty term")
	case s == "a":
		return rdf.IRI{Value: rdfType}, nil
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.IRI{Value: s[1 : len(s)-1]}, nil
	case strings.HasPrefix(s, "_:"):
		return rdf.BlankNode{ID: s[2:]}, nil
	case strings.HasPrefix(s, "\""):
		return parseLiteral(s)
	default:
		prefix, local, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("not a term: %q", s)
		}
		base, ok := prefixes[prefix]
		if !ok {
			return nil, fmt.Errorf("unknown prefix %q in %q", prefix, s)
		}
		return rdf.IRI{Value: base + local}, nil
	}
}

func parseLiteral(s string) (rdf.Term, error) {
	end := closingQuote(s)
	if end < 0 {
		return nil, fmt.Errorf("unterminated literal: %q", s)
	}
	lexical := unescapeLiteral(s[1:end])
	rest := s[end+1:]
	switch {
	case rest == "":
		return rdf.Literal{Lexical: lexical}, nil
	case strings.HasPrefix(rest, "@"):
		return rdf.Literal{Lexical: lexical, Lang: rest[1:]}, nil
	case strings.HasPrefix(rest, "^^<") && strings.HasSuffix(rest, ">"):
		return rdf.Literal{Lexical: lexical, Datatype: rdf.IRI{Value: rest[3 : len(rest)-1]}}, nil
	default:
		return nil, fmt.Errorf("malformed literal suffix: %q", rest)
	}
}

// closingQuote finds the index of the closing double quote, honoring
// backslash escapes. s must start with a double quote.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func unescapeLiteral(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// termEqual compares two terms structurally. nil equals nil only.
func termEqual(a, b rdf.Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	return a.String() == b.String()
}
