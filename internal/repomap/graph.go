// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"sort"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

// focusWeight is the personalization weight of a focus file.
const focusWeight = 100.0

// FileTags is the tag list of one input file.
type FileTags struct {
	RelPath string
	AbsPath string
	Tags    []types.Tag
}

// Edge is a directed edge from a referencing file to a defining file,
// labelled with the shared symbol.
type Edge struct {
	From   string
	To     string
	Symbol string
}

// Graph is a directed multigraph where nodes are relative file paths and
// edges represent cross-file symbol references. Two files sharing several
// symbols are joined by several edges.
type Graph struct {
	Nodes []string
	Edges []Edge
}

// BuildGraph constructs the reference graph for files and returns it with
// the personalization vector for the focus set. Every file becomes a node,
// including files with no tags. Self references never create edges.
func BuildGraph(files []FileTags, focus map[string]bool) (*Graph, map[string]float64) {
	defines := make(map[string]map[string]bool)
	references := make(map[string]map[string]bool)
	personalization := make(map[string]float64)

	g := &Graph{}
	seenNode := make(map[string]bool, len(files))

	for _, f := range files {
		if !seenNode[f.RelPath] {
			seenNode[f.RelPath] = true
			g.Nodes = append(g.Nodes, f.RelPath)
		}
		if focus[f.RelPath] {
			personalization[f.RelPath] = focusWeight
		}
		for _, t := range f.Tags {
			switch t.Kind {
			case types.Definition:
				addToSet(defines, t.Name, f.RelPath)
			case types.Reference:
				addToSet(references, t.Name, f.RelPath)
			}
		}
	}

	for _, name := range sortedKeys(references) {
		defFiles, ok := defines[name]
		if !ok {
			continue
		}
		for _, from := range sortedKeys(references[name]) {
			for _, to := range sortedKeys(defFiles) {
				if from == to {
					continue
				}
				g.Edges = append(g.Edges, Edge{From: from, To: to, Symbol: name})
			}
		}
	}

	return g, personalization
}

func addToSet(m map[string]map[string]bool, key, val string) {
	if m[key] == nil {
		m[key] = make(map[string]bool)
	}
	m[key][val] = true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
