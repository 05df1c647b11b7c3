// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/pquerna/cachecontrol"
)

// NoLoader is a rdf.DocumentLoader that refuses every remote context.
// It backs the --inline-contexts-only flag.
type NoLoader struct{}

func (NoLoader) LoadDocument(_ context.Context, iri string) (rdf.RemoteDocument, error) {
	return rdf.RemoteDocument{}, fmt.Errorf("remote context %s not loaded (inline contexts only)", iri)
}

// ContextLoader fetches remote JSON-LD contexts and caches them on disk,
// honoring the HTTP caching headers of the origin server.
//
// Cached entries live under Dir, keyed by a hash of the context IRI, and
// are reused until their expiry.
type ContextLoader struct {
	Dir    string
	Client *http.Client
	Logger *slog.Logger
}

// NewContextLoader returns a loader caching under dir. An empty dir
// falls back to <user cache dir>/sophia/contexts.
func NewContextLoader(dir string, logger *slog.Logger) (*ContextLoader, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locating cache directory: %w", err)
		}
		dir = filepath.Join(base, "sophia", "contexts")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextLoader{Dir: dir, Client: http.DefaultClient, Logger: logger}, nil
}

// cacheEntry is the on-disk envelope for one cached context.
type cacheEntry struct {
	DocumentURL string          `json:"document_url"`
	Expires     time.Time       `json:"expires"`
	Document    json.RawMessage `json:"document"`
}

func (l *ContextLoader) LoadDocument(ctx context.Context, iri string) (rdf.RemoteDocument, error) {
	path := l.cachePath(iri)
	if doc, ok := l.readCache(path); ok {
		l.Logger.Debug("ingest.context.cache_hit", "iri", iri)
		return doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri, nil)
	if err != nil {
		return rdf.RemoteDocument{}, fmt.Errorf("fetching context %s: %w", iri, err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json;q=0.9")
	resp, err := l.Client.Do(req)
	if err != nil {
		return rdf.RemoteDocument{}, fmt.Errorf("fetching context %s: %w", iri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rdf.RemoteDocument{}, fmt.Errorf("fetching context %s: status %s", iri, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rdf.RemoteDocument{}, fmt.Errorf("fetching context %s: %w", iri, err)
	}
	var document any
	if err := json.Unmarshal(body, &document); err != nil {
		return rdf.RemoteDocument{}, fmt.Errorf("parsing context %s: %w", iri, err)
	}

	finalURL := iri
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{PrivateCache: true})
	if err == nil && len(reasons) == 0 && expires.After(time.Now()) {
		l.writeCache(path, cacheEntry{DocumentURL: finalURL, Expires: expires, Document: body})
	}

	return rdf.RemoteDocument{DocumentURL: finalURL, Document: document}, nil
}

func (l *ContextLoader) cachePath(iri string) string {
	sum := sha256.Sum256([]byte(iri))
	return filepath.Join(l.Dir, hex.EncodeToString(sum[:16])+".json")
}

func (l *ContextLoader) readCache(path string) (rdf.RemoteDocument, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rdf.RemoteDocument{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || time.Now().After(entry.Expires) {
		return rdf.RemoteDocument{}, false
	}
	var document any
	if err := json.Unmarshal(entry.Document, &document); err != nil {
		return rdf.RemoteDocument{}, false
	}
	return rdf.RemoteDocument{DocumentURL: entry.DocumentURL, Document: document}, true
}

func (l *ContextLoader) writeCache(path string, entry cacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		l.Logger.Debug("ingest.context.cache_write_failed", "path", path, "error", err)
	}
}
