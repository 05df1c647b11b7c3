// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// buildMap builds the map stage: rewrite quad components from templates.
//
// A template is "?s", "?p", "?o" or "?g" (copy another component of the
// same quad), a term in N-Triples syntax or a prefixed name, or, for
// --graph only, "" to move the quad to the default graph.
func (e *Env) buildMap(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("map")
	subject := flags.StringP("subject", "s", "", "template for the subject")
	predicate := flags.StringP("predicate", "p", "", "template for the predicate")
	object := flags.StringP("object", "o", "", "template for the object")
	graph := flags.StringP("graph", "g", "", "template for the graph name, or '' to clear it")

	spec, err := parseStageArgs("map", flags, args)
	if err != nil {
		return nil, err
	}

	subjectT, err := e.template(*subject, flags.Changed("subject"))
	if err != nil {
		return nil, err
	}
	predicateT, err := e.template(*predicate, flags.Changed("predicate"))
	if err != nil {
		return nil, err
	}
	objectT, err := e.template(*object, flags.Changed("object"))
	if err != nil {
		return nil, err
	}
	graphT, err := e.template(*graph, flags.Changed("graph"))
	if err != nil {
		return nil, err
	}

	sink, err := e.NewSink(spec)
	if err != nil {
		return nil, err
	}

	rewrite := func(q rdf.Statement) rdf.Statement {
		out := q
		if subjectT != nil {
			out.S = subjectT(q)
		}
		if predicateT != nil {
			// the predicate slot only holds IRIs; anything else leaves
			// the original predicate in place
			if p, ok := predicateT(q).(rdf.IRI); ok {
				out.P = p
			}
		}
		if objectT != nil {
			out.O = objectT(q)
		}
		if graphT != nil {
			out.G = graphT(q)
		}
		return out
	}
	return func(quads *quadstream.Iter) error {
		return sinkQuads(sink, quadstream.Map(quads, rewrite))
	}, nil
}

// template compiles one rewrite template, or nil when the flag was not
// given. An explicitly empty template yields the nil term (graph removal).
func (e *Env) template(t string, changed bool) (func(rdf.Statement) rdf.Term, error) {
	if !changed {
		return nil, nil
	}
	switch t {
	case "":
		return func(rdf.Statement) rdf.Term { return nil }, nil
	case "?s":
		return func(q rdf.Statement) rdf.Term { return q.S }, nil
	case "?p":
		return func(q rdf.Statement) rdf.Term { return q.P }, nil
	case "?o":
		return func(q rdf.Statement) rdf.Term { return q.O }, nil
	case "?g":
		return func(q rdf.Statement) rdf.Term { return q.G }, nil
	default:
		term, err := parseTerm(t, e.Prefixes)
		if err != nil {
			return nil, errors.NewUsageError(
				"Invalid map template", fmt.Sprintf("%q: %v", t, err), "")
		}
		return func(rdf.Statement) rdf.Term { return term }, nil
	}
}
