// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLoader returns a loader using the test server's client, so that
// idle connections are torn down before the leak check runs.
func testLoader(t *testing.T, srv *httptest.Server) *ContextLoader {
	t.Helper()
	loader, err := NewContextLoader(t.TempDir(), slog.Default())
	require.NoError(t, err)
	loader.Client = srv.Client()
	t.Cleanup(srv.Client().CloseIdleConnections)
	return loader
}

func TestNoLoaderRefusesEverything(t *testing.T) {
	_, err := NoLoader{}.LoadDocument(context.Background(), "http://ex.org/context.jsonld")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inline contexts only")
}

func TestContextLoaderFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "application/ld+json")
		w.Header().Set("Content-Type", "application/ld+json")
		w.Write([]byte(`{"@context": {"name": "http://ex.org/name"}}`))
	}))
	defer srv.Close()

	loader := testLoader(t, srv)

	doc, err := loader.LoadDocument(context.Background(), srv.URL+"/context.jsonld")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/context.jsonld", doc.DocumentURL)
	assert.Contains(t, doc.Document.(map[string]any), "@context")
}

func TestContextLoaderCachesPerHeaders(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/ld+json")
		w.Header().Set("Cache-Control", "max-age=3600")
		w.Write([]byte(`{"@context": {}}`))
	}))
	defer srv.Close()

	loader := testLoader(t, srv)

	iri := srv.URL + "/context.jsonld"
	_, err := loader.LoadDocument(context.Background(), iri)
	require.NoError(t, err)
	_, err = loader.LoadDocument(context.Background(), iri)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second load should be served from the cache")
}

func TestContextLoaderDoesNotCacheUncachable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/ld+json")
		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte(`{"@context": {}}`))
	}))
	defer srv.Close()

	loader := testLoader(t, srv)

	iri := srv.URL + "/context.jsonld"
	_, err := loader.LoadDocument(context.Background(), iri)
	require.NoError(t, err)
	_, err = loader.LoadDocument(context.Background(), iri)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestContextLoaderRejectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	loader := testLoader(t, srv)

	_, err := loader.LoadDocument(context.Background(), srv.URL+"/missing.jsonld")
	assert.Error(t, err)
}
