// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

func TestBoost(t *testing.T) {
	tag := def("a.go", 1, "Run")

	tests := []struct {
		name string
		opts RankOptions
		want float64
	}{
		{"none", RankOptions{}, 1},
		{"mentioned identifier", RankOptions{MentionedIdents: map[string]bool{"Run": true}}, 10},
		{"mentioned file", RankOptions{MentionedFiles: map[string]bool{"a.go": true}}, 5},
		{"focus file", RankOptions{Focus: map[string]bool{"a.go": true}}, 20},
		{"focus and identifier", RankOptions{
			Focus:           map[string]bool{"a.go": true},
			MentionedIdents: map[string]bool{"Run": true},
		}, 200},
		{"all three", RankOptions{
			Focus:           map[string]bool{"a.go": true},
			MentionedFiles:  map[string]bool{"a.go": true},
			MentionedIdents: map[string]bool{"Run": true},
		}, 1000},
		{"other file", RankOptions{Focus: map[string]bool{"b.go": true}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Boost(tag, tt.opts))
		})
	}
}

func TestRankTags_ScoreIsFileRankTimesBoost(t *testing.T) {
	files := []FileTags{
		{RelPath: "a.go", Tags: []types.Tag{def("a.go", 3, "Run"), ref("a.go", 4, "Stop")}},
	}
	ranks := map[string]float64{"a.go": 0.5}
	opts := RankOptions{
		Focus:           map[string]bool{"a.go": true},
		MentionedIdents: map[string]bool{"Run": true},
	}

	ranked, n := RankTags(files, ranks, opts)
	require.Len(t, ranked, 1, "references are never ranked")
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.5*20*10, ranked[0].Score, 1e-12)
}

func TestRankTags_SortedDescendingAndStable(t *testing.T) {
	files := []FileTags{
		{RelPath: "low.go", Tags: []types.Tag{def("low.go", 1, "L")}},
		{RelPath: "tie.go", Tags: []types.Tag{def("tie.go", 1, "T1"), def("tie.go", 2, "T2")}},
		{RelPath: "high.go", Tags: []types.Tag{def("high.go", 1, "H")}},
	}
	ranks := map[string]float64{"low.go": 1, "tie.go": 50, "high.go": 100}

	ranked, _ := RankTags(files, ranks, RankOptions{})
	var names []string
	for _, rt := range ranked {
		names = append(names, rt.Tag.Name)
	}
	assert.Equal(t, []string{"H", "T1", "T2", "L"}, names)
}

func TestRankTags_ExcludeUnranked(t *testing.T) {
	files := []FileTags{
		{RelPath: "a.go", Tags: []types.Tag{def("a.go", 1, "A")}},
		{RelPath: "zero.go", Tags: []types.Tag{def("zero.go", 1, "Z")}},
	}
	ranks := map[string]float64{"a.go": 10, "zero.go": 0}

	ranked, n := RankTags(files, ranks, RankOptions{})
	assert.Len(t, ranked, 2)
	assert.Equal(t, 2, n)

	ranked, n = RankTags(files, ranks, RankOptions{ExcludeUnranked: true})
	require.Len(t, ranked, 1)
	assert.Equal(t, "A", ranked[0].Tag.Name)
	assert.Equal(t, 1, n)
}
