// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package source

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/geoknoesis/rdf-go/rdf"
)

// formatPatterns maps recognizable format names, extensions and media
// types to rdf-go formats. The regexps are process-wide, lazily built,
// immutable constants.
var formatPatterns = sync.OnceValue(func() []struct {
	re *regexp.Regexp
	f  rdf.Format
} {
	mk := func(expr string, f rdf.Format) struct {
		re *regexp.Regexp
		f  rdf.Format
	} {
		return struct {
			re *regexp.Regexp
			f  rdf.Format
		}{regexp.MustCompile(`(?i)^(` + expr + `)$`), f}
	}
	return []struct {
		re *regexp.Regexp
		f  rdf.Format
	}{
		mk(`application/ld\+json|json-?ld|application/json|json`, rdf.FormatJSONLD),
		mk(`application/n-quads|n-?quads|nq`, rdf.FormatNQuads),
		mk(`application/n-triples|n-?triples|nt|text/plain`, rdf.FormatNTriples),
		mk(`application/rdf\+xml|rdf|rdf/?xml|application/xml|xml`, rdf.FormatRDFXML),
		mk(`application/trig|trig`, rdf.FormatTriG),
		mk(`text/turtle|turtle|ttl|application/turtle`, rdf.FormatTurtle),
	}
})

// ParseFormat recognizes a format name, file extension or media type.
func ParseFormat(s string) (rdf.Format, error) {
	for _, p := range formatPatterns() {
		if p.re.MatchString(s) {
			return p.f, nil
		}
	}
	return "", fmt.Errorf("unrecognized format: %s", s)
}

// GuessFromPath guesses a format from a file path's extension.
func GuessFromPath(path string) (rdf.Format, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return "", fmt.Errorf("cannot guess format for %q", path)
	}
	f, err := ParseFormat(path[i+1:])
	if err != nil {
		return "", fmt.Errorf("cannot guess format for %q: %w", path, err)
	}
	return f, nil
}

// GuessFromContentType guesses a format from an HTTP Content-Type value,
// ignoring any media-type parameters.
func GuessFromContentType(ctype string) (rdf.Format, error) {
	media, _, _ := strings.Cut(ctype, ";")
	f, err := ParseFormat(strings.TrimSpace(media))
	if err != nil {
		return "", fmt.Errorf("cannot guess format from content type %q", ctype)
	}
	return f, nil
}

// accept is the Accept header sent when fetching a source over HTTP. It
// can be overridden from the configuration file.
var accept = "application/n-quads, application/n-triples, application/trig;q=0.9, text/turtle;q=0.9, application/ld+json;q=0.8, application/rdf+xml;q=0.7, */*;q=0.1"

// SetAccept overrides the Accept header used for HTTP sources.
func SetAccept(header string) {
	if header != "" {
		accept = header
	}
}
