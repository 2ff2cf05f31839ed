// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repomap builds a ranked, token-budgeted map of a repository:
// tag extraction, a persistent tag cache, the reference graph, personalized
// PageRank, context rendering and the budget search.
package repomap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

// Capture is one classified capture returned by a Parser.
type Capture struct {
	Name string        // Decoded symbol text
	Line int           // Line number (1-based)
	Kind types.TagKind // Definition or Reference
}

// Parser turns file content into classified captures.
//
// Language returns "" when no grammar handles the path. Parse returns
// ErrNoQuery when the language has a grammar but no tag query; both cases
// are a normal, silent empty result for the extractor.
type Parser interface {
	Language(path string) string
	Parse(lang string, content []byte) ([]Capture, error)
}

// ErrNoQuery is returned by a Parser that knows the language but has no tag
// query for it.
var ErrNoQuery = errors.New("no tag query for language")

// Severity classifies a per-file extraction failure.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// ExtractError is a soft failure for a single file. The file contributes no
// tags; the caller decides which sink to report it on.
type ExtractError struct {
	Severity Severity
	Path     string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("Error parsing %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Extractor maps parser captures for one file into tags.
type Extractor struct {
	parser Parser
	read   FileReader
}

// NewExtractor returns an extractor reading files through read.
func NewExtractor(parser Parser, read FileReader) *Extractor {
	return &Extractor{parser: parser, read: read}
}

// Extract returns the tags for a file. Unsupported languages, missing
// queries, unreadable and empty files all yield (nil, nil). A parser failure
// yields (nil, *ExtractError).
func (e *Extractor) Extract(absPath, relPath string) ([]types.Tag, error) {
	lang := e.parser.Language(absPath)
	if lang == "" {
		return nil, nil
	}

	code, err := e.read(absPath)
	if err != nil || code == "" {
		return nil, nil
	}

	captures, err := e.parser.Parse(lang, []byte(code))
	if err != nil {
		if errors.Is(err, ErrNoQuery) {
			return nil, nil
		}
		return nil, &ExtractError{Severity: SeverityError, Path: absPath, Err: err}
	}

	tags := make([]types.Tag, 0, len(captures))
	for _, c := range captures {
		if strings.TrimSpace(c.Name) == "" || c.Line < 1 {
			continue
		}
		tags = append(tags, types.Tag{
			RelPath: relPath,
			AbsPath: absPath,
			Line:    c.Line,
			Name:    c.Name,
			Kind:    c.Kind,
		})
	}
	return tags, nil
}
