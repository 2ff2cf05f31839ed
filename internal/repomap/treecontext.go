// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"fmt"
	"sort"
	"strings"
)

const (
	loiPadding   = 2
	elisionMark  = "⋮"
	lineNumWidth = 4
)

// SpanFinder reports the scope spans of a file. TreeSitterParser
// implements it.
type SpanFinder interface {
	Language(path string) string
	Spans(lang string, content []byte) ([]Span, error)
}

// treeContext renders lines of interest of one file with surrounding
// context and the header line of every enclosing scope.
type treeContext struct {
	code  string
	lines []string
	spans []Span
}

// newTreeContext splits code into lines and, when finder supports the
// file's language, computes its scope spans.
func newTreeContext(path, code string, finder SpanFinder) (*treeContext, error) {
	lines := strings.Split(code, "\n")
	if strings.HasSuffix(code, "\n") {
		lines = lines[:len(lines)-1]
	}
	tc := &treeContext{code: code, lines: lines}

	if finder == nil {
		return tc, nil
	}
	lang := finder.Language(path)
	if lang == "" {
		return tc, nil
	}
	spans, err := finder.Spans(lang, []byte(code))
	if err != nil {
		return nil, fmt.Errorf("computing scopes for %s: %w", path, err)
	}
	tc.spans = spans
	return tc, nil
}

// format renders the selected lines with right-aligned line numbers and an
// elision mark for every gap. Windows around nearby lines of interest merge.
func (tc *treeContext) format(lois []int) string {
	show := tc.visibleLines(lois)
	if len(show) == 0 {
		return ""
	}

	var out []string
	prev := 0
	for _, ln := range show {
		if ln > prev+1 {
			out = append(out, elisionMark)
		}
		out = append(out, fmt.Sprintf("%*d│%s", lineNumWidth, ln, tc.lines[ln-1]))
		prev = ln
	}
	if prev < len(tc.lines) {
		out = append(out, elisionMark)
	}
	return strings.Join(out, "\n")
}

// visibleLines returns the sorted 1-based lines to print.
func (tc *treeContext) visibleLines(lois []int) []int {
	n := len(tc.lines)
	set := make(map[int]bool)

	for _, loi := range lois {
		if loi < 1 || loi > n {
			continue
		}
		for ln := max(1, loi-loiPadding); ln <= min(n, loi+loiPadding); ln++ {
			set[ln] = true
		}
		for _, s := range tc.spans {
			if s.Start <= loi && loi <= s.End {
				set[s.Start] = true
			}
		}
	}

	show := make([]int, 0, len(set))
	for ln := range set {
		show = append(show, ln)
	}
	sort.Ints(show)

	// A single hidden line costs as much as its elision mark; print it.
	closed := show[:0:0]
	for i, ln := range show {
		if i > 0 && ln == show[i-1]+2 {
			closed = append(closed, ln-1)
		}
		closed = append(closed, ln)
	}
	return closed
}

// fallbackListing prints bare "line: content" pairs for the lines of
// interest. Used when context rendering fails.
func fallbackListing(code string, lois []int) string {
	lines := strings.Split(code, "\n")
	seen := make(map[int]bool)
	sorted := append([]int(nil), lois...)
	sort.Ints(sorted)

	var out []string
	for _, loi := range sorted {
		if loi < 1 || loi > len(lines) || seen[loi] {
			continue
		}
		seen[loi] = true
		out = append(out, fmt.Sprintf("%*d: %s", lineNumWidth, loi, lines[loi-1]))
	}
	return strings.Join(out, "\n")
}
