// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pchampin/sophia-cli/internal/testutil"
)

func TestDispatchStage(t *testing.T) {
	env, buf := testEnv()
	dir := t.TempDir()
	in := []rdf.Statement{
		testutil.Quad("http://ex.org/s1", "http://ex.org/p", "http://ex.org/o", "http://root.org/g1.nq"),
		testutil.Quad("http://ex.org/s2", "http://ex.org/p", "http://ex.org/o", "http://root.org/sub/g2.nq"),
		testutil.Quad("http://ex.org/s3", "http://ex.org/p", "http://ex.org/o", "http://other.org/g3"),
		testutil.Triple("http://ex.org/s4", "http://ex.org/p", "http://ex.org/o"),
	}
	require.NoError(t, runStage(t, env, "dispatch",
		[]string{"-d", dir, "http://root.org/"}, in))

	// graphs under the root land in files, graph label dropped
	data, err := os.ReadFile(filepath.Join(dir, "g1.nq"))
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/s1> <http://ex.org/p> <http://ex.org/o> .\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "sub", "g2.nq"))
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/s2> <http://ex.org/p> <http://ex.org/o> .\n", string(data))

	// everything else flows on
	assert.Equal(t,
		"http://ex.org/s3\thttp://ex.org/p\thttp://ex.org/o\thttp://other.org/g3\n"+
			"http://ex.org/s4\thttp://ex.org/p\thttp://ex.org/o\n",
		buf.String())
}

func TestDispatchStageOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g1.nq")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	in := []rdf.Statement{
		testutil.Quad("http://ex.org/s", "http://ex.org/p", "http://ex.org/o", "http://root.org/g1.nq"),
	}

	// without --overwrite the graph is kept in the stream
	env, buf := testEnv()
	require.NoError(t, runStage(t, env, "dispatch", []string{"-d", dir, "http://root.org/"}, in))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))
	assert.Equal(t,
		"http://ex.org/s\thttp://ex.org/p\thttp://ex.org/o\thttp://root.org/g1.nq\n",
		buf.String())

	// with --overwrite the file is replaced and the graph consumed
	env, buf = testEnv()
	require.NoError(t, runStage(t, env, "dispatch",
		[]string{"-d", dir, "--overwrite", "http://root.org/"}, in))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/s> <http://ex.org/p> <http://ex.org/o> .\n", string(data))
	assert.Empty(t, buf.String())
}

func TestDispatchStageRelativize(t *testing.T) {
	env, _ := testEnv()
	dir := t.TempDir()
	in := []rdf.Statement{
		testutil.Quad("http://root.org/g1.nq", "http://ex.org/p", "http://root.org/other",
			"http://root.org/g1.nq"),
	}
	require.NoError(t, runStage(t, env, "dispatch",
		[]string{"-d", dir, "--relativize", "http://root.org/"}, in))

	data, err := os.ReadFile(filepath.Join(dir, "g1.nq"))
	require.NoError(t, err)
	assert.Equal(t, "<g1.nq> <http://ex.org/p> <other> .\n", string(data))
}

func TestDispatchStageRootIsADirectory(t *testing.T) {
	env, buf := testEnv()
	dir := t.TempDir()
	in := []rdf.Statement{
		testutil.Quad("http://ex.org/s1", "http://ex.org/p", "http://ex.org/o", "http://ex.org/foo/g1.nt"),
		testutil.Quad("http://ex.org/s2", "http://ex.org/p", "http://ex.org/o", "http://ex.org/foobar.nt"),
	}
	// root without a trailing slash must not match sibling IRIs
	require.NoError(t, runStage(t, env, "dispatch",
		[]string{"-d", dir, "http://ex.org/foo"}, in))

	data, err := os.ReadFile(filepath.Join(dir, "g1.nt"))
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/s1> <http://ex.org/p> <http://ex.org/o> .\n", string(data))

	// the sibling is not written under the destination, it stays in the stream
	_, err = os.Stat(filepath.Join(dir, "bar.nt"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t,
		"http://ex.org/s2\thttp://ex.org/p\thttp://ex.org/o\thttp://ex.org/foobar.nt\n",
		buf.String())
}

func TestDispatchStageRelativizeParentLevels(t *testing.T) {
	env, _ := testEnv()
	dir := t.TempDir()
	in := []rdf.Statement{
		testutil.Quad("http://root.org/sub/g2.nt", "http://ex.org/p", "http://root.org/other",
			"http://root.org/sub/g2.nt"),
	}
	require.NoError(t, runStage(t, env, "dispatch",
		[]string{"-d", dir, "--relativize", "http://root.org/"}, in))

	// one ".." per slash in the dispatched path
	data, err := os.ReadFile(filepath.Join(dir, "sub", "g2.nt"))
	require.NoError(t, err)
	assert.Equal(t, "<g2.nt> <http://ex.org/p> <../other> .\n", string(data))
}

func TestDispatchStageSkipsUnsafePaths(t *testing.T) {
	env, buf := testEnv()
	dir := t.TempDir()
	in := []rdf.Statement{
		testutil.Quad("http://ex.org/s", "http://ex.org/p", "http://ex.org/o", "http://root.org/../evil.nq"),
	}
	require.NoError(t, runStage(t, env, "dispatch", []string{"-d", dir, "http://root.org/"}, in))

	// the graph stays in the stream, nothing is written outside the destination
	assert.Equal(t,
		"http://ex.org/s\thttp://ex.org/p\thttp://ex.org/o\thttp://root.org/../evil.nq\n",
		buf.String())
	_, err := os.Stat(filepath.Join(filepath.Dir(dir), "evil.nq"))
	assert.True(t, os.IsNotExist(err))
}

func TestDispatchStageRequiresRoot(t *testing.T) {
	env, _ := testEnv()
	_, err := env.buildDispatch(nil)
	assert.Error(t, err)
	_, err = env.buildDispatch([]string{"http://root.org/", "extra"})
	assert.Error(t, err)
}
