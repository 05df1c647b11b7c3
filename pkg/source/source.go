// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Package source resolves input descriptors (standard input, files, glob
// patterns, URLs), selects serialization formats, and ingests one or many
// sources into a single quad stream.
package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// urlRE recognizes http(s) URLs among source descriptors.
var urlRE = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^https?://`)
})

// Kind discriminates source descriptors.
type Kind int

const (
	// KindStdin is the standard input descriptor ("-").
	KindStdin Kind = iota
	// KindFile is a single existing file.
	KindFile
	// KindGlob is a glob pattern expanding to zero or more files.
	KindGlob
	// KindURL is an http(s) URL.
	KindURL
)

// FileOrURL is a single-source descriptor: standard input, an existing
// file, or a URL.
type FileOrURL struct {
	kind  Kind
	value string
}

// ParseFileOrURL parses a single-source descriptor. "-" denotes standard
// input; an http(s) URL is recognized by its scheme; anything else must be
// an existing file.
func ParseFileOrURL(value string) (FileOrURL, error) {
	switch {
	case value == "-":
		return FileOrURL{kind: KindStdin, value: value}, nil
	case urlRE().MatchString(value):
		return FileOrURL{kind: KindURL, value: value}, nil
	default:
		if _, err := os.Stat(value); err != nil {
			return FileOrURL{}, fmt.Errorf("neither an http(s) URL nor an existing file: %s", value)
		}
		return FileOrURL{kind: KindFile, value: value}, nil
	}
}

// Kind returns the descriptor's kind.
func (f FileOrURL) Kind() Kind { return f.kind }

// String returns the descriptor as given on the command line.
func (f FileOrURL) String() string { return f.value }

// FilesOrURL is a multi-source descriptor: an existing file, a glob
// pattern, or a URL.
type FilesOrURL struct {
	kind  Kind
	value string
}

// ParseFilesOrURL parses a multi-source descriptor. An http(s) URL is
// recognized by its scheme; an existing path is a file; anything else that
// is a valid glob pattern is a glob (possibly matching nothing).
func ParseFilesOrURL(value string) (FilesOrURL, error) {
	switch {
	case urlRE().MatchString(value):
		return FilesOrURL{kind: KindURL, value: value}, nil
	default:
		if _, err := os.Stat(value); err == nil {
			return FilesOrURL{kind: KindFile, value: value}, nil
		}
		if _, err := filepath.Match(value, ""); err != nil {
			return FilesOrURL{}, fmt.Errorf("neither an http(s) URL, an existing file or a valid glob pattern: %s", value)
		}
		return FilesOrURL{kind: KindGlob, value: value}, nil
	}
}

// Kind returns the descriptor's kind.
func (f FilesOrURL) Kind() Kind { return f.kind }

// String returns the descriptor as given on the command line.
func (f FilesOrURL) String() string { return f.value }

// Resolve expands the descriptor into resolved sources. A glob pattern is
// enumerated at this point; a pattern matching nothing logs a warning and
// contributes no sources.
func (f FilesOrURL) Resolve(logger *slog.Logger) ([]FileOrURL, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch f.kind {
	case KindURL:
		return []FileOrURL{{kind: KindURL, value: f.value}}, nil
	case KindFile:
		return []FileOrURL{{kind: KindFile, value: f.value}}, nil
	default:
		matches, err := filepath.Glob(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", f.value, err)
		}
		if len(matches) == 0 {
			logger.Warn("ingest.glob.empty", "pattern", f.value)
			return nil, nil
		}
		sources := make([]FileOrURL, len(matches))
		for i, m := range matches {
			sources[i] = FileOrURL{kind: KindFile, value: m}
		}
		return sources, nil
	}
}
