// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package quadstream

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTeeMirrorsToBothSinks(t *testing.T) {
	in := []rdf.Statement{
		triple("a:s1", "a:p", "a:o"),
		quad("a:s2", "a:p", "a:o", "a:g"),
		triple("a:s3", "a:p", "a:o"),
	}

	var foreground []rdf.Statement
	var buf bytes.Buffer
	err := Tee(FromQuads(in),
		func(quads *Iter) error {
			var err error
			foreground, err = Collect(quads)
			return err
		},
		WriterSink{W: &buf},
		slog.Default(),
	)
	require.NoError(t, err)
	assert.Equal(t, in, foreground)

	var background bytes.Buffer
	require.NoError(t, WriterSink{W: &background}.HandleQuads(FromQuads(in)))
	assert.Equal(t, background.String(), buf.String())
}

type failingSink struct{}

func (failingSink) HandleQuads(quads *Iter) error {
	// consume a single item, then give up
	quads.Next()
	return assert.AnError
}

func TestTeeBackgroundFailureDoesNotAffectForeground(t *testing.T) {
	in := []rdf.Statement{
		triple("a:s1", "a:p", "a:o"),
		triple("a:s2", "a:p", "a:o"),
		triple("a:s3", "a:p", "a:o"),
	}

	var foreground []rdf.Statement
	err := Tee(FromQuads(in),
		func(quads *Iter) error {
			var err error
			foreground, err = Collect(quads)
			return err
		},
		failingSink{},
		slog.Default(),
	)
	require.NoError(t, err)
	assert.Equal(t, in, foreground)
}

func TestTeeForegroundFailurePropagates(t *testing.T) {
	in := []rdf.Statement{triple("a:s", "a:p", "a:o")}
	var buf bytes.Buffer
	err := Tee(FromQuads(in),
		func(quads *Iter) error {
			quads.Next()
			return assert.AnError
		},
		WriterSink{W: &buf},
		slog.Default(),
	)
	assert.ErrorIs(t, err, assert.AnError)
}
