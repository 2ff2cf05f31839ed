// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"sort"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

const (
	mentionedIdentBoost = 10.0
	mentionedFileBoost  = 5.0
	focusFileBoost      = 20.0
)

// RankOptions carries the caller-declared relevance used to boost tags.
// All path sets hold relative paths.
type RankOptions struct {
	Focus           map[string]bool
	MentionedFiles  map[string]bool
	MentionedIdents map[string]bool
	ExcludeUnranked bool // Drop files whose rank is exactly 0
}

// Boost returns the multiplicative weight for a definition tag.
func Boost(t types.Tag, opts RankOptions) float64 {
	boost := 1.0
	if opts.MentionedIdents[t.Name] {
		boost *= mentionedIdentBoost
	}
	if opts.MentionedFiles[t.RelPath] {
		boost *= mentionedFileBoost
	}
	if opts.Focus[t.RelPath] {
		boost *= focusFileBoost
	}
	return boost
}

// RankTags scores every definition tag as file rank × boost and returns them
// sorted by descending score. Ties keep file order, then tag order. The
// second result is the number of distinct files that produced a ranked tag.
func RankTags(files []FileTags, ranks map[string]float64, opts RankOptions) ([]types.RankedTag, int) {
	var ranked []types.RankedTag
	rankedFiles := make(map[string]bool)

	for _, f := range files {
		fileRank := ranks[f.RelPath]
		if opts.ExcludeUnranked && fileRank == 0 {
			continue
		}
		for _, t := range f.Tags {
			if t.Kind != types.Definition {
				continue
			}
			ranked = append(ranked, types.RankedTag{Score: fileRank * Boost(t, opts), Tag: t})
			rankedFiles[f.RelPath] = true
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, len(rankedFiles)
}
