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

func TestCanonicalizeStage(t *testing.T) {
	env, buf := testEnv()
	in := []rdf.Statement{
		{S: testutil.BNode("x"), P: testutil.IRI("http://ex.org/p"), O: testutil.Lit("v")},
	}
	require.NoError(t, runStage(t, env, "canonicalize", nil, in))
	assert.Equal(t, "_:c14n0 <http://ex.org/p> \"v\" .\n", buf.String())
}

// Canonical labels depend only on the structure of the dataset, not on
// the blank node labels of the input.
func TestCanonicalizeStageIsLabelIndependent(t *testing.T) {
	quads := func(label string) []rdf.Statement {
		return []rdf.Statement{
			{S: testutil.BNode(label), P: testutil.IRI("http://ex.org/p"), O: testutil.Lit("v")},
			{S: testutil.BNode(label), P: testutil.IRI("http://ex.org/q"), O: testutil.IRI("http://ex.org/o")},
		}
	}

	env1, buf1 := testEnv()
	require.NoError(t, runStage(t, env1, "canonicalize", nil, quads("aaa")))
	env2, buf2 := testEnv()
	require.NoError(t, runStage(t, env2, "canonicalize", nil, quads("zzz")))

	assert.NotEmpty(t, buf1.String())
	assert.Equal(t, buf1.String(), buf2.String())
}

func TestCanonicalizeStageToFile(t *testing.T) {
	env, buf := testEnv()
	path := filepath.Join(t.TempDir(), "out.nq")
	in := []rdf.Statement{
		testutil.Triple("http://ex.org/s", "http://ex.org/p", "http://ex.org/o"),
	}
	require.NoError(t, runStage(t, env, "canonicalize", []string{"-o", path}, in))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/s> <http://ex.org/p> <http://ex.org/o> .\n", string(data))
}

func TestCanonicalizeStageBadArgs(t *testing.T) {
	env, _ := testEnv()
	_, err := env.buildCanonicalize([]string{"!", "null"})
	assert.Error(t, err)
	_, err = env.buildCanonicalize([]string{"--function", "nosuchalgorithm"})
	assert.Error(t, err)
	_, err = env.buildCanonicalize([]string{"extra"})
	assert.Error(t, err)
}

func TestCanonicalizeRejectsQuotedTriples(t *testing.T) {
	env, _ := testEnv()
	in := []rdf.Statement{
		{
			S: rdf.TripleTerm{
				S: testutil.IRI("http://ex.org/s"),
				P: testutil.IRI("http://ex.org/p"),
				O: testutil.IRI("http://ex.org/o"),
			},
			P: testutil.IRI("http://ex.org/says"),
			O: testutil.Lit("v"),
		},
	}
	err := runStage(t, env, "canonicalize", nil, in)
	assert.Error(t, err)
}
