// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"
	"regexp"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// buildFilter builds the filter stage: keep the quads whose components
// match the given patterns.
//
// A pattern is an exact term (N-Triples syntax or a prefixed name), or a
// regular expression introduced by "~", matched against the component's
// textual rendering. For --graph, "-" selects default-graph quads only.
func (e *Env) buildFilter(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("filter")
	subject := flags.StringP("subject", "s", "", "pattern for the subject")
	predicate := flags.StringP("predicate", "p", "", "pattern for the predicate")
	object := flags.StringP("object", "o", "", "pattern for the object")
	graph := flags.StringP("graph", "g", "", "pattern for the graph name, or '-' for the default graph")

	spec, err := parseStageArgs("filter", flags, args)
	if err != nil {
		return nil, err
	}

	var matchers []func(rdf.Statement) bool
	addTerm := func(pattern string, pick func(rdf.Statement) rdf.Term) error {
		if pattern == "" {
			return nil
		}
		m, err := e.termMatcher(pattern)
		if err != nil {
			return errors.NewUsageError("Invalid filter pattern", err.Error(), "")
		}
		matchers = append(matchers, func(q rdf.Statement) bool { return m(pick(q)) })
		return nil
	}
	if err := addTerm(*subject, func(q rdf.Statement) rdf.Term { return q.S }); err != nil {
		return nil, err
	}
	if err := addTerm(*predicate, func(q rdf.Statement) rdf.Term { return q.P }); err != nil {
		return nil, err
	}
	if err := addTerm(*object, func(q rdf.Statement) rdf.Term { return q.O }); err != nil {
		return nil, err
	}
	if *graph == "-" {
		matchers = append(matchers, func(q rdf.Statement) bool { return q.G == nil })
	} else if err := addTerm(*graph, func(q rdf.Statement) rdf.Term { return q.G }); err != nil {
		return nil, err
	}

	sink, err := e.NewSink(spec)
	if err != nil {
		return nil, err
	}

	keep := func(q rdf.Statement) bool {
		for _, m := range matchers {
			if !m(q) {
				return false
			}
		}
		return true
	}
	return func(quads *quadstream.Iter) error {
		return sinkQuads(sink, quadstream.Filter(quads, keep))
	}, nil
}

// termMatcher compiles one pattern into a term predicate. A nil term (an
// absent graph name) matches nothing but the "-" pattern, handled by the
// caller.
func (e *Env) termMatcher(pattern string) (func(rdf.Term) bool, error) {
	if len(pattern) > 0 && pattern[0] == '~' {
		re, err := regexp.Compile(pattern[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid regexp %q: %w", pattern[1:], err)
		}
		return func(t rdf.Term) bool {
			return t != nil && re.MatchString(t.String())
		}, nil
	}
	want, err := parseTerm(pattern, e.Prefixes)
	if err != nil {
		return nil, err
	}
	return func(t rdf.Term) bool { return termEqual(t, want) }, nil
}
