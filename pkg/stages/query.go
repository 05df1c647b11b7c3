// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"bufio"
	"fmt"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/dataset"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// buildQuery builds the query stage: evaluate a SPARQL query (the subset
// with basic graph patterns and GRAPH groups) over the materialized
// stream.
//
// SELECT prints tab-separated bindings; a SELECT over exactly ?s ?p ?o
// (and optionally ?g) may instead be piped, turning its solutions back
// into quads. ASK prints true or false, and with --status exits with a
// distinguished code on false. CONSTRUCT produces quads, printed or
// piped.
func (e *Env) buildQuery(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("query")
	noHeaders := flags.Bool("no-headers", false, "do not print the header row of SELECT results")
	status := flags.Bool("status", false, "report a false ASK result through the exit status")

	spec, err := parseStageArgs("query", flags, args)
	if err != nil {
		return nil, err
	}
	if len(flags.Args()) != 1 {
		return nil, errors.NewUsageError(
			"Wrong arguments for query",
			fmt.Sprintf("Expected exactly one query string, got %d arguments", len(flags.Args())),
			"",
		)
	}
	q, err := parseQuery(flags.Args()[0], e.Prefixes)
	if err != nil {
		return nil, errors.NewUsageError("Invalid query", err.Error(), "")
	}

	switch q.kind {
	case queryAsk:
		if spec != nil {
			return nil, errors.NewUsageError(
				"ASK queries cannot be piped", "An ASK query produces no quads", "")
		}
	case querySelect:
		if spec != nil && !q.selectsQuad() {
			return nil, errors.NewUsageError(
				"This SELECT query cannot be piped",
				"Only SELECT ?s ?p ?o (optionally ?g) can feed a piped sub-command",
				"",
			)
		}
	}

	sink, err := e.NewSink(spec)
	if err != nil {
		return nil, err
	}

	return func(quads *quadstream.Iter) error {
		ds, err := dataset.FromIter(quads)
		if err != nil {
			return errors.NewStreamError("Error while processing quads", err)
		}
		switch q.kind {
		case queryAsk:
			return e.runAsk(q, ds, *status)
		case querySelect:
			if spec != nil {
				return sinkQuads(sink, q.solutionQuads(ds))
			}
			return e.runSelect(q, ds, *noHeaders)
		default:
			return sinkQuads(sink, q.constructQuads(ds))
		}
	}, nil
}

func (e *Env) runAsk(q *query, ds *dataset.Dataset, status bool) error {
	found := false
	q.solve(ds, func(binding) bool {
		found = true
		return false
	})
	if _, err := fmt.Fprintf(e.stdout(), "%v\n", found); err != nil {
		return errors.NewDestinationError("Write failed", err.Error(), "", err)
	}
	if status && !found {
		return errors.NewFalseExit()
	}
	return nil
}

func (e *Env) runSelect(q *query, ds *dataset.Dataset, noHeaders bool) error {
	w := bufio.NewWriter(e.stdout())
	if !noHeaders {
		for i, v := range q.vars {
			if i > 0 {
				w.WriteByte('\t')
			}
			w.WriteString("?" + v)
		}
		w.WriteByte('\n')
	}
	q.solve(ds, func(b binding) bool {
		for i, v := range q.vars {
			if i > 0 {
				w.WriteByte('\t')
			}
			if t, ok := b[v]; ok {
				w.WriteString(t.String())
			}
		}
		w.WriteByte('\n')
		return true
	})
	if err := w.Flush(); err != nil {
		return errors.NewDestinationError("Write failed", err.Error(), "", err)
	}
	return nil
}

// queryKind discriminates the three query forms.
type queryKind int

const (
	querySelect queryKind = iota
	queryAsk
	queryConstruct
)

// patternTerm is one slot of a quad pattern: a variable or a concrete
// term. The zero value (neither) only appears as a pattern's graph slot,
// meaning "the default graph".
type patternTerm struct {
	variable string
	term     rdf.Term
}

func (p patternTerm) isVar() bool { return p.variable != "" }

// quadPattern is one triple pattern plus its graph scope. A nil graph
// slot restricts the pattern to the default graph; a variable or term
// graph slot comes from an enclosing GRAPH group.
type quadPattern struct {
	s, p, o patternTerm
	g       *patternTerm
}

// query is a parsed SPARQL query of the supported subset.
type query struct {
	kind     queryKind
	vars     []string      // SELECT projection, in declaration order
	template []quadPattern // CONSTRUCT template
	patterns []quadPattern // WHERE clause
}

// binding maps variable names to the terms they are bound to.
type binding map[string]rdf.Term

// selectsQuad reports whether the projection is exactly ?s ?p ?o,
// optionally followed by ?g.
func (q *query) selectsQuad() bool {
	switch len(q.vars) {
	case 3:
		return q.vars[0] == "s" && q.vars[1] == "p" && q.vars[2] == "o"
	case 4:
		return q.vars[0] == "s" && q.vars[1] == "p" && q.vars[2] == "o" && q.vars[3] == "g"
	default:
		return false
	}
}

// solve enumerates the solutions of the WHERE clause by backtracking,
// calling emit for each one until emit returns false.
func (q *query) solve(ds *dataset.Dataset, emit func(binding) bool) {
	var rec func(i int, b binding) bool
	rec = func(i int, b binding) bool {
		if i == len(q.patterns) {
			return emit(b)
		}
		p := q.patterns[i]
		for _, quad := range ds.Quads() {
			extended, ok := p.match(quad, b)
			if !ok {
				continue
			}
			if !rec(i+1, extended) {
				return false
			}
		}
		return true
	}
	rec(0, binding{})
}

// match tries to unify the pattern with one quad under the current
// binding, returning the extended binding.
func (p quadPattern) match(quad rdf.Statement, b binding) (binding, bool) {
	if p.g == nil {
		if quad.G != nil {
			return nil, false
		}
	} else if quad.G == nil {
		return nil, false
	}

	out := make(binding, len(b)+4)
	for k, v := range b {
		out[k] = v
	}
	extend := func(pt patternTerm, t rdf.Term) bool {
		if pt.isVar() {
			if bound, ok := out[pt.variable]; ok {
				return termEqual(bound, t)
			}
			out[pt.variable] = t
			return true
		}
		return termEqual(pt.term, t)
	}

	if p.g != nil && !extend(*p.g, quad.G) {
		return nil, false
	}
	if !extend(p.s, quad.S) {
		return nil, false
	}
	if !extend(p.p, quad.P) {
		return nil, false
	}
	if !extend(p.o, quad.O) {
		return nil, false
	}
	return out, true
}

// solutionQuads turns SELECT ?s ?p ?o (?g) solutions back into a stream
// of quads.
func (q *query) solutionQuads(ds *dataset.Dataset) *quadstream.Iter {
	var out []rdf.Statement
	q.solve(ds, func(b binding) bool {
		p, ok := b["p"].(rdf.IRI)
		if !ok {
			return true
		}
		quad := rdf.Statement{S: b["s"], P: p, O: b["o"]}
		if len(q.vars) == 4 {
			quad.G = b["g"]
		}
		out = append(out, quad)
		return true
	})
	return quadstream.FromQuads(out)
}

// constructQuads instantiates the CONSTRUCT template for every solution,
// skipping instantiations with unbound variables, deduplicated.
func (q *query) constructQuads(ds *dataset.Dataset) *quadstream.Iter {
	seen := map[string]bool{}
	var out []rdf.Statement
	q.solve(ds, func(b binding) bool {
		for _, t := range q.template {
			quad, ok := instantiate(t, b)
			if !ok {
				continue
			}
			key := quad.S.String() + "\x00" + quad.P.Value + "\x00" + quad.O.String()
			if quad.G != nil {
				key += "\x00" + quad.G.String()
			}
			if !seen[key] {
				seen[key] = true
				out = append(out, quad)
			}
		}
		return true
	})
	return quadstream.FromQuads(out)
}

func instantiate(t quadPattern, b binding) (rdf.Statement, bool) {
	resolve := func(pt patternTerm) (rdf.Term, bool) {
		if pt.isVar() {
			term, ok := b[pt.variable]
			return term, ok
		}
		return pt.term, true
	}
	s, ok := resolve(t.s)
	if !ok {
		return rdf.Statement{}, false
	}
	pTerm, ok := resolve(t.p)
	if !ok {
		return rdf.Statement{}, false
	}
	p, ok := pTerm.(rdf.IRI)
	if !ok {
		return rdf.Statement{}, false
	}
	o, ok := resolve(t.o)
	if !ok {
		return rdf.Statement{}, false
	}
	return rdf.Statement{S: s, P: p, O: o}, true
}
