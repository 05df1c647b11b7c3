// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package source

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeSource(t *testing.T, dir, name, content string) FileOrURL {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	src, err := ParseFileOrURL(path)
	require.NoError(t, err)
	return src
}

func TestParseNTriplesFile(t *testing.T) {
	src := writeSource(t, t.TempDir(), "data.nt",
		"<http://ex.org/s> <http://ex.org/p> <http://ex.org/o> .\n")

	quads, err := Parse(src, ParseOptions{})
	require.NoError(t, err)

	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, rdf.IRI{Value: "http://ex.org/s"}, collected[0].S)
	assert.Equal(t, "http://ex.org/p", collected[0].P.Value)
	assert.Nil(t, collected[0].G)
}

func TestParseJSONLDFile(t *testing.T) {
	src := writeSource(t, t.TempDir(), "data.jsonld", `{
		"@context": {"ex": "http://ex.org/"},
		"@id": "ex:alice",
		"ex:knows": {"@id": "ex:bob"}
	}`)

	quads, err := Parse(src, ParseOptions{InlineContextsOnly: true})
	require.NoError(t, err)

	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, rdf.IRI{Value: "http://ex.org/alice"}, collected[0].S)
	assert.Equal(t, "http://ex.org/knows", collected[0].P.Value)
	assert.Equal(t, rdf.IRI{Value: "http://ex.org/bob"}, collected[0].O)
}

func TestParseJSONLDErrorSurfacesOnStream(t *testing.T) {
	src := writeSource(t, t.TempDir(), "data.jsonld", "{not json")

	// acquisition succeeds, the decode error is a stream item
	quads, err := Parse(src, ParseOptions{InlineContextsOnly: true})
	require.NoError(t, err)

	_, err = quadstream.Collect(quads)
	require.Error(t, err)
}

func TestParseStdinRequiresFormat(t *testing.T) {
	src, err := ParseFileOrURL("-")
	require.NoError(t, err)

	_, err = Parse(src, ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guess")
}

func TestParseUnknownExtension(t *testing.T) {
	src := writeSource(t, t.TempDir(), "data.bin", "")

	_, err := Parse(src, ParseOptions{})
	require.Error(t, err)
}

func TestIngestSingleSource(t *testing.T) {
	src := writeSource(t, t.TempDir(), "data.nq",
		"<http://ex.org/s> <http://ex.org/p> <http://ex.org/o> <http://ex.org/g> .\n")

	ing := &Ingester{Main: &src}
	quads, err := ing.Ingest()
	require.NoError(t, err)

	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, rdf.IRI{Value: "http://ex.org/g"}, collected[0].G)
}

func TestIngestMultipleSources(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.nt",
		"<http://ex.org/s1> <http://ex.org/p> <http://ex.org/o> .\n")
	writeSource(t, dir, "extra1.nt",
		"<http://ex.org/s2> <http://ex.org/p> <http://ex.org/o> .\n")
	writeSource(t, dir, "extra2.nt",
		"<http://ex.org/s3> <http://ex.org/p> <http://ex.org/o> .\n")

	glob, err := ParseFilesOrURL(filepath.Join(dir, "extra*.nt"))
	require.NoError(t, err)

	ing := &Ingester{Main: &main, Extra: []FilesOrURL{glob}, Workers: 2}
	quads, err := ing.Ingest()
	require.NoError(t, err)

	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	require.Len(t, collected, 3)

	subjects := map[string]bool{}
	for _, q := range collected {
		subjects[q.S.(rdf.IRI).Value] = true
	}
	assert.Len(t, subjects, 3)
}

func TestIngestMoreSourcesThanWorkers(t *testing.T) {
	dir := t.TempDir()
	for i := range 5 {
		writeSource(t, dir, fmt.Sprintf("part%d.nt", i),
			fmt.Sprintf("<http://ex.org/s%d> <http://ex.org/p> <http://ex.org/o> .\n", i))
	}

	glob, err := ParseFilesOrURL(filepath.Join(dir, "part*.nt"))
	require.NoError(t, err)

	// a single worker: submission must not stall while the returned
	// stream is still being drained
	ing := &Ingester{Extra: []FilesOrURL{glob}, Workers: 1}
	quads, err := ing.Ingest()
	require.NoError(t, err)

	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	assert.Len(t, collected, 5)
}

func TestIngestBlankNodesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.nt",
		"_:b <http://ex.org/p> <http://ex.org/o> .\n")
	writeSource(t, dir, "extra.nt",
		"_:b <http://ex.org/p> <http://ex.org/o> .\n")

	glob, err := ParseFilesOrURL(filepath.Join(dir, "extra.nt"))
	require.NoError(t, err)

	ing := &Ingester{Main: &main, Extra: []FilesOrURL{glob}}
	quads, err := ing.Ingest()
	require.NoError(t, err)

	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	require.Len(t, collected, 2)

	b0, ok := collected[0].S.(rdf.BlankNode)
	require.True(t, ok)
	b1, ok := collected[1].S.(rdf.BlankNode)
	require.True(t, ok)
	assert.NotEqual(t, b0.ID, b1.ID)
	assert.True(t, strings.HasPrefix(b0.ID, "b"))
}

func TestIngestFailingSourceDoesNotAbortSiblings(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.nt",
		"<http://ex.org/s1> <http://ex.org/p> <http://ex.org/o> .\n")
	writeSource(t, dir, "bad.nt", "this is not n-triples\n")
	writeSource(t, dir, "good.nt",
		"<http://ex.org/s2> <http://ex.org/p> <http://ex.org/o> .\n")

	glob, err := ParseFilesOrURL(filepath.Join(dir, "*.nt"))
	require.NoError(t, err)

	// main.nt appears twice (directly and via the glob); the bad source
	// contributes nothing but must not prevent the others from landing.
	ing := &Ingester{Main: &main, Extra: []FilesOrURL{glob}}
	quads, err := ing.Ingest()
	require.NoError(t, err)

	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	assert.Len(t, collected, 3)
}

func TestIngestLogsSummary(t *testing.T) {
	var logbuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logbuf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dir := t.TempDir()
	main := writeSource(t, dir, "main.nt",
		"<http://ex.org/s1> <http://ex.org/p> <http://ex.org/o> .\n")
	writeSource(t, dir, "extra.nt",
		"<http://ex.org/s2> <http://ex.org/p> <http://ex.org/o> .\n")

	glob, err := ParseFilesOrURL(filepath.Join(dir, "extra.nt"))
	require.NoError(t, err)

	ing := &Ingester{Main: &main, Extra: []FilesOrURL{glob}, Logger: logger}
	quads, err := ing.Ingest()
	require.NoError(t, err)
	collected, err := quadstream.Collect(quads)
	require.NoError(t, err)
	require.Len(t, collected, 2)

	out := logbuf.String()
	assert.Contains(t, out, "ingest.done")
	assert.Contains(t, out, "sources=2")
	assert.Contains(t, out, "failed=0")
	assert.Contains(t, out, "quads=2")
}

func TestIngestRejectsBaseWithMultipleSources(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.ttl", "<s> <p> <o> .\n")
	writeSource(t, dir, "extra.ttl", "<s> <p> <o> .\n")

	glob, err := ParseFilesOrURL(filepath.Join(dir, "extra.ttl"))
	require.NoError(t, err)

	ing := &Ingester{
		Main:    &main,
		Extra:   []FilesOrURL{glob},
		Options: ParseOptions{Base: "http://ex.org/base/"},
	}
	_, err = ing.Ingest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--base")
}
