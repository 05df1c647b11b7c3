// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/iri"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// buildAbsolutize builds the absolutize stage: resolve every relative IRI
// in the stream against the given base.
func (e *Env) buildAbsolutize(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("absolutize")
	spec, err := parseStageArgs("absolutize", flags, args)
	if err != nil {
		return nil, err
	}
	base, err := oneBaseArg("absolutize", flags.Args())
	if err != nil {
		return nil, err
	}
	b, err := iri.ParseBase(base)
	if err != nil {
		return nil, errors.NewUsageError("Invalid base IRI", err.Error(), "Pass an absolute IRI")
	}

	sink, err := e.NewSink(spec)
	if err != nil {
		return nil, err
	}
	return func(quads *quadstream.Iter) error {
		return sinkQuads(sink, b.AbsolutizeIter(quads))
	}, nil
}

// buildRelativize builds the relativize stage: turn IRIs below the given
// base into relative references, climbing at most --parents levels of "..".
func (e *Env) buildRelativize(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("relativize")
	parents := flags.IntP("parents", "p", 0, "how many levels of '..' are allowed")

	spec, err := parseStageArgs("relativize", flags, args)
	if err != nil {
		return nil, err
	}
	base, err := oneBaseArg("relativize", flags.Args())
	if err != nil {
		return nil, err
	}
	b, err := iri.ParseBase(base)
	if err != nil {
		return nil, errors.NewUsageError("Invalid base IRI", err.Error(), "Pass an absolute IRI")
	}
	r := iri.NewRelativizer(b, *parents)

	sink, err := e.NewSink(spec)
	if err != nil {
		return nil, err
	}
	return func(quads *quadstream.Iter) error {
		return sinkQuads(sink, r.RelativizeIter(quads))
	}, nil
}

func oneBaseArg(name string, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.NewUsageError(
			fmt.Sprintf("Wrong arguments for %s", name),
			fmt.Sprintf("Expected exactly one base IRI, got %d arguments", len(args)),
			"",
		)
	}
	return args[0], nil
}
