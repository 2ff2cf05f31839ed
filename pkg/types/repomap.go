// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across go-repomap packages.
package types

// TagKind distinguishes symbol definitions from references.
type TagKind int

const (
	Definition TagKind = iota
	Reference
)

// String returns the short form used in cache rows and debug logs.
func (k TagKind) String() string {
	switch k {
	case Definition:
		return "def"
	case Reference:
		return "ref"
	default:
		return "unknown"
	}
}

// Tag is a single located occurrence of a named symbol in a source file.
// Tags are values; nothing mutates them after extraction.
type Tag struct {
	RelPath string  `json:"rel_path"` // Path relative to the repository root
	AbsPath string  `json:"abs_path"` // Absolute path on disk
	Line    int     `json:"line"`     // Line number (1-based)
	Name    string  `json:"name"`     // Symbol name
	Kind    TagKind `json:"kind"`
}

// RankedTag is a definition tag with its boosted score.
//
// A RankedTag with Line == 0 and an empty Name stands for a whole file that
// is listed without any code lines (important files with no ranked
// definitions).
type RankedTag struct {
	Score float64 `json:"score"`
	Tag   Tag     `json:"tag"`
}

// FileOnly reports whether the entry names a file rather than a definition.
func (r RankedTag) FileOnly() bool {
	return r.Tag.Line == 0 && r.Tag.Name == ""
}

// MapResult holds the rendered repository map and metadata.
type MapResult struct {
	Map         string `json:"map"`          // Rendered map text, including any content prefix
	Tokens      int    `json:"tokens"`       // Estimated token count of Map
	FilesInput  int    `json:"files_input"`  // Number of distinct input files that exist on disk
	FilesRanked int    `json:"files_ranked"` // Number of files that contributed ranked definitions
}
