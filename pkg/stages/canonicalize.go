// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"
	"os"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/piprate/json-gold/ld"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/dataset"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// buildCanonicalize builds the canonicalize stage: materialize the whole
// stream and write it out as canonical N-Quads (RDFC-1.0, the algorithm
// formerly known as URDNA2015).
//
// Canonical output is a terminal representation, so this stage cannot be
// piped.
func (e *Env) buildCanonicalize(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("canonicalize")
	output := flags.StringP("output", "o", "", "output file (default: stdout)")
	function := flags.String("function", "RDFC-1.0", "canonicalization function to apply")

	spec, err := parseStageArgs("canonicalize", flags, args)
	if err != nil {
		return nil, err
	}
	if spec != nil {
		return nil, errors.NewUsageError(
			"canonicalize cannot be piped",
			"Canonical N-Quads are the end of a pipeline",
			"Remove the trailing '!'",
		)
	}
	if len(flags.Args()) != 0 {
		return nil, errors.NewUsageError("Too many arguments for canonicalize", "", "")
	}
	switch strings.ToUpper(*function) {
	case "RDFC-1.0", "URDNA2015":
	default:
		return nil, errors.NewUsageError(
			"Unknown canonicalization function",
			fmt.Sprintf("%q is not supported", *function),
			"Use RDFC-1.0 (alias URDNA2015)",
		)
	}

	return func(quads *quadstream.Iter) error {
		ds, err := dataset.FromIter(quads)
		if err != nil {
			return errors.NewStreamError("Error while processing quads", err)
		}
		canonical, err := canonicalNQuads(ds)
		if err != nil {
			return err
		}
		if *output == "" {
			_, err = fmt.Fprint(e.stdout(), canonical)
		} else {
			err = os.WriteFile(*output, []byte(canonical), 0o644)
		}
		if err != nil {
			return errors.NewDestinationError("Write failed", err.Error(), "", err)
		}
		return nil
	}, nil
}

// canonicalNQuads normalizes a dataset with json-gold's URDNA2015
// implementation and returns the canonical N-Quads text.
func canonicalNQuads(ds *dataset.Dataset) (string, error) {
	gold := ld.NewRDFDataset()
	for _, q := range ds.Quads() {
		graph := "@default"
		if q.G != nil {
			g, err := ldNode(q.G)
			if err != nil {
				return "", errors.NewStreamError("Cannot canonicalize", err)
			}
			graph = g.GetValue()
		}
		s, err := ldNode(q.S)
		if err != nil {
			return "", errors.NewStreamError("Cannot canonicalize", err)
		}
		o, err := ldNode(q.O)
		if err != nil {
			return "", errors.NewStreamError("Cannot canonicalize", err)
		}
		gold.Graphs[graph] = append(gold.Graphs[graph],
			ld.NewQuad(s, ld.NewIRI(q.P.Value), o, graph))
	}

	opts := ld.NewJsonLdOptions("")
	opts.Algorithm = ld.AlgorithmURDNA2015
	opts.Format = "application/n-quads"
	normalized, err := ld.NewJsonLdApi().Normalize(gold, opts)
	if err != nil {
		return "", errors.NewStreamError("Cannot canonicalize", err)
	}
	text, ok := normalized.(string)
	if !ok {
		return "", errors.NewInternalError(
			"Unexpected canonicalization result", fmt.Errorf("%T", normalized))
	}
	return text, nil
}

// ldNode converts an rdf-go term into a json-gold node. Quoted triples
// have no canonical form in RDFC-1.0.
func ldNode(t rdf.Term) (ld.Node, error) {
	switch term := t.(type) {
	case rdf.IRI:
		return ld.NewIRI(term.Value), nil
	case rdf.BlankNode:
		return ld.NewBlankNode("_:" + term.ID), nil
	case rdf.Literal:
		datatype := term.Datatype.Value
		if datatype == "" && term.Lang == "" {
			datatype = ld.XSDString
		}
		return ld.NewLiteral(term.Lexical, datatype, term.Lang), nil
	case rdf.TripleTerm:
		return nil, fmt.Errorf("quoted triple terms cannot be canonicalized")
	default:
		return nil, fmt.Errorf("unsupported term %s", t)
	}
}
