// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

func TestTreeSitterParser_Language(t *testing.T) {
	p := NewTreeSitterParser()

	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"lib/app.py", "python"},
		{"types.pyi", "python"},
		{"web/index.js", "javascript"},
		{"web/App.JSX", "javascript"},
		{"src/index.ts", "typescript"},
		{"src/App.tsx", "tsx"},
		{"README.md", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Language(tt.path))
		})
	}
}

func TestTreeSitterParser_ParseTypeScript(t *testing.T) {
	p := NewTreeSitterParser()
	src := `interface Shape { area(): number }

class Circle implements Shape {
  area(): number { return compute(1) }
}

function compute(r: number): number { return r * r }
`
	caps, err := p.Parse("typescript", []byte(src))
	require.NoError(t, err)

	var defs, refs []string
	for _, c := range caps {
		switch c.Kind {
		case types.Definition:
			defs = append(defs, c.Name)
		case types.Reference:
			refs = append(refs, c.Name)
		}
	}
	assert.Contains(t, defs, "Shape")
	assert.Contains(t, defs, "Circle")
	assert.Contains(t, defs, "compute")
	assert.Contains(t, refs, "compute")
}

func TestTreeSitterParser_ParseUnknownLanguage(t *testing.T) {
	p := NewTreeSitterParser()
	_, err := p.Parse("cobol", []byte("IDENTIFICATION DIVISION."))
	assert.ErrorIs(t, err, ErrNoQuery)
}

func TestTreeSitterParser_SpansCoverEnclosingScopes(t *testing.T) {
	p := NewTreeSitterParser()
	src := `package main

type Server struct {
	addr string
}

func (s *Server) Start() error {
	if s.addr == "" {
		return nil
	}
	return nil
}
`
	spans, err := p.Spans("go", []byte(src))
	require.NoError(t, err)

	assert.Contains(t, spans, Span{Start: 7, End: 12}, "method declaration")
	for _, s := range spans {
		assert.Greater(t, s.End, s.Start, "only multi-line nodes are reported")
	}
}
