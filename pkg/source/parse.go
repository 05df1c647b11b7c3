// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/pkg/iri"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
)

// ParseOptions configures the parsing of one resolved source.
type ParseOptions struct {
	// Format overrides format guessing. Required when the source is
	// standard input.
	Format rdf.Format

	// Base overrides the base IRI against which relative IRIs are
	// resolved. When empty, the base derives from the source itself.
	// It does not apply to N-Quads and N-Triples.
	Base string

	// InlineContextsOnly restricts JSON-LD processing to inline contexts;
	// contexts referred to by IRI are not fetched.
	InlineContextsOnly bool

	// ContextLoader resolves remote JSON-LD contexts. Ignored when
	// InlineContextsOnly is set. A nil loader lets the decoder fall back
	// to plain HTTP fetches.
	ContextLoader rdf.DocumentLoader
}

// Parse opens a resolved source and returns its quad stream.
//
// Acquisition failures (file not found, network error, non-2xx response,
// unguessable format) are returned as the error; parse errors surface
// later, as error items on the stream.
func Parse(src FileOrURL, opts ParseOptions) (*quadstream.Iter, error) {
	switch src.Kind() {
	case KindStdin:
		if opts.Format == "" {
			return nil, errors.NewUsageError(
				"Cannot guess format for stdin",
				"There is no file name or content type to guess from",
				"Specify the format with --format",
			)
		}
		base := opts.Base
		if base == "" {
			base = "x-stdin://"
		}
		return parseReader(os.Stdin, opts.Format, base, opts)

	case KindURL:
		resp, err := fetch(src.String())
		if err != nil {
			return nil, err
		}
		format := opts.Format
		if format == "" {
			format, err = GuessFromContentType(resp.Header.Get("Content-Type"))
			if err != nil {
				resp.Body.Close()
				return nil, errors.NewSourceError(
					fmt.Sprintf("Cannot guess format for %s", src),
					err.Error(),
					"Specify the format with --format",
					err,
				)
			}
		}
		base := opts.Base
		if base == "" {
			base = src.String()
		}
		return parseReader(resp.Body, format, base, opts)

	default:
		filename := src.String()
		format := opts.Format
		if format == "" {
			var err error
			format, err = GuessFromPath(filename)
			if err != nil {
				return nil, errors.NewSourceError(
					fmt.Sprintf("Cannot guess format for %s", filename),
					err.Error(),
					"Specify the format with --format",
					err,
				)
			}
		}
		file, err := os.Open(filename)
		if err != nil {
			return nil, errors.NewSourceError(
				fmt.Sprintf("Cannot open %s", filename),
				err.Error(),
				"",
				err,
			)
		}
		base := opts.Base
		if base == "" {
			base, err = filenameToIRI(filename)
			if err != nil {
				file.Close()
				return nil, err
			}
		}
		return parseReader(file, format, base, opts)
	}
}

// fetch performs the single blocking request for a URL source, with the
// RDF Accept header. A non-2xx response is a source acquisition error.
func fetch(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewSourceError(
			fmt.Sprintf("Cannot fetch %s", url), err.Error(), "", err)
	}
	req.Header.Set("Accept", accept)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.NewSourceError(
			fmt.Sprintf("Cannot fetch %s", url), err.Error(), "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, errors.NewSourceError(
			fmt.Sprintf("Cannot fetch %s", url),
			fmt.Sprintf("The server answered with status %s", resp.Status),
			"",
			nil,
		)
	}
	return resp, nil
}

// parseReader builds the quad stream for an opened source.
//
// Formats that resolve relative IRIs in the document (everything but
// N-Triples and N-Quads) get the base applied by rewriting the parsed
// stream; JSON-LD receives the base and context loader directly.
func parseReader(r io.ReadCloser, format rdf.Format, base string, opts ParseOptions) (*quadstream.Iter, error) {
	if format == rdf.FormatJSONLD {
		return jsonldIter(r, base, opts), nil
	}

	reader, err := rdf.NewReader(bufio.NewReader(r), format)
	if err != nil {
		r.Close()
		return nil, errors.NewSourceError(
			"Cannot create parser", err.Error(), "", err)
	}
	quads := readerIter(reader, r)
	switch format {
	case rdf.FormatNQuads, rdf.FormatNTriples:
		return quads, nil
	default:
		b, err := iri.ParseBase(base)
		if err != nil {
			r.Close()
			return nil, errors.NewUsageError(
				"Invalid base IRI", err.Error(), "Pass an absolute IRI to --base")
		}
		return b.AbsolutizeIter(quads), nil
	}
}

// readerIter wraps an rdf.Reader, closing both the reader and the
// underlying source at end of stream.
func readerIter(reader rdf.Reader, closer io.Closer) *quadstream.Iter {
	inner := quadstream.FromReader(reader)
	done := false
	return quadstream.New(func() (quadstream.Item, bool) {
		item, ok := inner.Next()
		if !ok && !done {
			done = true
			_ = closer.Close()
		}
		return item, ok
	})
}

// jsonldIter streams the quads of a JSON-LD document.
//
// The JSON-LD algorithms need the whole document, so processing happens
// on the first pull. Deferring it keeps the contract of Parse: decode
// and expansion errors surface as stream items, not as acquisition
// errors.
func jsonldIter(r io.ReadCloser, base string, opts ParseOptions) *quadstream.Iter {
	jopts := rdf.JSONLDOptions{BaseIRI: base}
	if opts.InlineContextsOnly {
		jopts.DocumentLoader = NoLoader{}
	} else {
		jopts.DocumentLoader = opts.ContextLoader
	}
	var quads []rdf.Quad
	started := false
	failed := false
	i := 0
	return quadstream.New(func() (quadstream.Item, bool) {
		if !started {
			started = true
			data, err := io.ReadAll(r)
			_ = r.Close()
			if err == nil {
				var doc interface{}
				if err = json.Unmarshal(data, &doc); err == nil {
					quads, err = rdf.NewJSONLDProcessor().ToRDF(context.Background(), doc, jopts)
				}
			}
			if err != nil {
				failed = true
				return quadstream.Item{Err: err}, true
			}
		}
		if failed || i >= len(quads) {
			return quadstream.Item{}, false
		}
		q := quads[i]
		i++
		return quadstream.Item{Quad: q.ToStatement()}, true
	})
}

// filenameToIRI builds a file:// base IRI from a file path.
func filenameToIRI(filename string) (string, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", errors.NewSourceError(
			fmt.Sprintf("Cannot resolve path %s", filename), err.Error(), "", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
