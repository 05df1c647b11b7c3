// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// buildNull builds the null stage: drain the stream, producing nothing.
// Useful to validate sources. The first error item is still surfaced.
func (e *Env) buildNull(args []string) (quadstream.Handler, error) {
	flags := newFlagSet("null")
	spec, err := parseStageArgs("null", flags, args)
	if err != nil {
		return nil, err
	}
	if spec != nil {
		return nil, errors.NewUsageError(
			"null cannot be piped",
			"The null stage produces no quads",
			"Remove the trailing '!'",
		)
	}
	if len(flags.Args()) != 0 {
		return nil, errors.NewUsageError("Too many arguments for null", "", "")
	}

	return func(quads *quadstream.Iter) error {
		for {
			item, ok := quads.Next()
			if !ok {
				return nil
			}
			if item.Err != nil {
				return errors.NewStreamError("Error while processing quads", item.Err)
			}
		}
	}, nil
}
