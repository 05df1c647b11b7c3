// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package iri implements IRI resolution and relativization over quad
// streams.
//
// Resolution follows RFC 3986 reference resolution (net/url); terms that
// are not IRIs, and IRIs that cannot be parsed, pass through unchanged.
// Quoted-triple terms and graph names are rewritten recursively.
package iri

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// Base is a parsed absolute base IRI.
type Base struct {
	url *url.URL
	str string
}

// ParseBase parses and validates an absolute base IRI.
func ParseBase(iri string) (*Base, error) {
	u, err := url.Parse(iri)
	if err != nil {
		return nil, fmt.Errorf("invalid base IRI %q: %w", iri, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base IRI %q is not absolute", iri)
	}
	return &Base{url: u, str: iri}, nil
}

// String returns the base IRI as given.
func (b *Base) String() string {
	return b.str
}

// Resolve resolves ref against the base. On an unparseable ref, ref is
// returned unchanged.
func (b *Base) Resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.url.ResolveReference(u).String()
}

// AbsolutizeTerm resolves the term against the base if it is an IRI,
// recursing into quoted triples.
func (b *Base) AbsolutizeTerm(t rdf.Term) rdf.Term {
	switch term := t.(type) {
	case rdf.IRI:
		return rdf.IRI{Value: b.Resolve(term.Value)}
	case rdf.TripleTerm:
		return rdf.TripleTerm{
			S: b.AbsolutizeTerm(term.S),
			P: rdf.IRI{Value: b.Resolve(term.P.Value)},
			O: b.AbsolutizeTerm(term.O),
		}
	default:
		return t
	}
}

// AbsolutizeQuad resolves every IRI of the quad against the base.
func (b *Base) AbsolutizeQuad(q rdf.Statement) rdf.Statement {
	out := rdf.Statement{
		S: b.AbsolutizeTerm(q.S),
		P: rdf.IRI{Value: b.Resolve(q.P.Value)},
		O: b.AbsolutizeTerm(q.O),
	}
	if q.G != nil {
		out.G = b.AbsolutizeTerm(q.G)
	}
	return out
}

// AbsolutizeIter rewrites a whole stream.
func (b *Base) AbsolutizeIter(quads *quadstream.Iter) *quadstream.Iter {
	return quadstream.Map(quads, b.AbsolutizeQuad)
}

// Relativizer rewrites absolute IRIs as references relative to a base,
// generating at most a configured number of leading ".." levels.
type Relativizer struct {
	base    *Base
	parents int
}

// NewRelativizer returns a relativizer against base allowing up to parents
// levels of "..".
func NewRelativizer(base *Base, parents int) *Relativizer {
	return &Relativizer{base: base, parents: parents}
}

// RelativizeIRI returns iri expressed relative to the base, or iri
// unchanged when it cannot be relativized within the allowed number of
// parent levels.
func (r *Relativizer) RelativizeIRI(iri string) string {
	target, err := url.Parse(iri)
	if err != nil || !target.IsAbs() {
		return iri
	}
	base := r.base.url
	if target.Scheme != base.Scheme || target.Host != base.Host {
		return iri
	}

	baseDirs := pathDirs(base.Path)
	targetSegs := strings.Split(strings.TrimPrefix(target.Path, "/"), "/")

	common := 0
	for common < len(baseDirs) && common < len(targetSegs)-1 && baseDirs[common] == targetSegs[common] {
		common++
	}
	ups := len(baseDirs) - common
	if ups > r.parents {
		return iri
	}

	var sb strings.Builder
	for range ups {
		sb.WriteString("../")
	}
	sb.WriteString(strings.Join(targetSegs[common:], "/"))
	rel := sb.String()
	if target.RawQuery != "" {
		rel += "?" + target.RawQuery
	}
	if target.Fragment != "" {
		rel += "#" + target.Fragment
	}
	if rel == "" {
		return iri
	}
	return rel
}

// pathDirs returns the directory segments of a path, excluding the final
// ("file") segment.
func pathDirs(path string) []string {
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segs) == 0 {
		return nil
	}
	return segs[:len(segs)-1]
}

// RelativizeTerm rewrites the term if it is an absolute IRI, recursing
// into quoted triples.
func (r *Relativizer) RelativizeTerm(t rdf.Term) rdf.Term {
	switch term := t.(type) {
	case rdf.IRI:
		return rdf.IRI{Value: r.RelativizeIRI(term.Value)}
	case rdf.TripleTerm:
		return rdf.TripleTerm{
			S: r.RelativizeTerm(term.S),
			P: rdf.IRI{Value: r.RelativizeIRI(term.P.Value)},
			O: r.RelativizeTerm(term.O),
		}
	default:
		return t
	}
}

// RelativizeQuad rewrites every IRI of the quad.
func (r *Relativizer) RelativizeQuad(q rdf.Statement) rdf.Statement {
	out := rdf.Statement{
		S: r.RelativizeTerm(q.S),
		P: rdf.IRI{Value: r.RelativizeIRI(q.P.Value)},
		O: r.RelativizeTerm(q.O),
	}
	if q.G != nil {
		out.G = r.RelativizeTerm(q.G)
	}
	return out
}

// RelativizeIter rewrites a whole stream.
func (r *Relativizer) RelativizeIter(quads *quadstream.Iter) *quadstream.Iter {
	return quadstream.Map(quads, r.RelativizeQuad)
}
