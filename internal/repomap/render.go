// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

const maxLineLength = 100

// Renderer turns a prefix of ranked tags into the textual map. It keeps one
// treeContext per file across calls, so repeated renders during the budget
// search only re-read files.
type Renderer struct {
	read     FileReader
	spans    SpanFinder
	log      zerolog.Logger
	contexts map[string]*treeContext
}

// NewRenderer returns a renderer. spans may be nil, in which case every file
// is rendered with padding windows only.
func NewRenderer(read FileReader, spans SpanFinder, log zerolog.Logger) *Renderer {
	if read == nil {
		read = ReadFile
	}
	return &Renderer{
		read:     read,
		spans:    spans,
		log:      log,
		contexts: make(map[string]*treeContext),
	}
}

type fileGroup struct {
	relPath string
	absPath string
	peak    float64
	lois    []int
}

// Render groups tags by file and renders one block per file, highest peak
// score first. Files that cannot be read are left out.
func (r *Renderer) Render(tags []types.RankedTag) string {
	groups := groupByFile(tags)

	var blocks []string
	for _, g := range groups {
		block, ok := r.renderGroup(g)
		if !ok {
			continue
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func groupByFile(tags []types.RankedTag) []*fileGroup {
	byPath := make(map[string]*fileGroup)
	var groups []*fileGroup

	for _, rt := range tags {
		g, ok := byPath[rt.Tag.RelPath]
		if !ok {
			g = &fileGroup{relPath: rt.Tag.RelPath, absPath: rt.Tag.AbsPath, peak: rt.Score}
			byPath[rt.Tag.RelPath] = g
			groups = append(groups, g)
		}
		if rt.Score > g.peak {
			g.peak = rt.Score
		}
		if !rt.FileOnly() {
			g.lois = append(g.lois, rt.Tag.Line)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].peak != groups[j].peak {
			return groups[i].peak > groups[j].peak
		}
		return groups[i].relPath < groups[j].relPath
	})
	return groups
}

func (r *Renderer) renderGroup(g *fileGroup) (string, bool) {
	header := fmt.Sprintf("%s:\n(Rank value: %.4f)", g.relPath, g.peak)
	if len(g.lois) == 0 {
		return header, true
	}

	code, err := r.read(g.absPath)
	if err != nil {
		r.log.Debug().Err(err).Str("file", g.relPath).Msg("skipping unreadable file")
		return "", false
	}
	if code == "" {
		return "", false
	}

	body := truncateLines(r.renderContext(g.relPath, code, g.lois), maxLineLength)
	if body == "" {
		return header, true
	}
	return header + "\n\n" + body, true
}

// renderContext formats lines of interest with surrounding scope. Any
// failure falls back to a bare line listing for this file only.
func (r *Renderer) renderContext(relPath, code string, lois []int) (out string) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Debug().Interface("panic", p).Str("file", relPath).Msg("tree context failed")
			out = fallbackListing(code, lois)
		}
	}()

	tc, err := r.context(relPath, code)
	if err != nil {
		r.log.Debug().Err(err).Str("file", relPath).Msg("tree context failed")
		return fallbackListing(code, lois)
	}
	return tc.format(lois)
}

func (r *Renderer) context(relPath, code string) (*treeContext, error) {
	if tc, ok := r.contexts[relPath]; ok && tc.code == code {
		return tc, nil
	}
	tc, err := newTreeContext(relPath, code, r.spans)
	if err != nil {
		return nil, err
	}
	r.contexts[relPath] = tc
	return tc, nil
}

// truncateLines cuts every code line to at most limit runes. Headers are
// never passed through it, so long paths keep their trailing colon.
func truncateLines(text string, limit int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > limit {
			lines[i] = string(runes[:limit])
		}
	}
	return strings.Join(lines, "\n")
}
