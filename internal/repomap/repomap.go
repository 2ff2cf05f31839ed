// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

const (
	defaultMapMulNoFiles = 8.0
	contextWindowPadding = 1024
)

// State is the map generation state of a Session.
type State int

const (
	StateIdle State = iota
	StateBuildingGraph
	StateRanking
	StateSearchingBudget
	StateRendered
	StateEmpty
	StateDisabled // permanent for the life of the session
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuildingGraph:
		return "building-graph"
	case StateRanking:
		return "ranking"
	case StateSearchingBudget:
		return "searching-budget"
	case StateRendered:
		return "rendered"
	case StateEmpty:
		return "empty"
	case StateDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Root              string       // Repository root; relative paths are resolved against it
	CacheDir          string       // Tag cache directory (default <Root>/.repomap.tags.cache.v1)
	NoCache           bool         // Keep tags in memory only
	Parser            Parser       // Default: tree-sitter parser
	Reader            FileReader   // Default: ReadFile
	Counter           TokenCounter // Default: 0.25 tokens per character
	Sink              Sink         // Default: StdSink
	Logger            zerolog.Logger
	Rank              RankConfig
	ExcludeUnranked   bool    // Drop files whose PageRank is exactly 0
	MaxContextWindow  int     // Model context window; enables the no-focus multiplier
	MapMulNoFiles     float64 // Budget multiplier when no focus files are given (default 8)
	RepoContentPrefix string  // Prepended to the map; "{other}" expands to "context " with focus files
	Verbose           bool    // Report the map size on the info sink
}

// Request is one map generation call. File paths may be absolute or
// relative to the root; mentioned files are relative paths.
type Request struct {
	FocusFiles      []string
	ContextFiles    []string
	MentionedFiles  []string
	MentionedIdents []string
	TokenBudget     int
	ForceRefresh    bool
}

type reportEntry struct {
	result *types.MapResult
}

// Session owns the tag cache, the rendering caches and the report cache for
// one repository. It is not safe for concurrent use.
type Session struct {
	root     string
	opts     Options
	parser   Parser
	counter  TokenCounter
	sink     Sink
	log      zerolog.Logger
	cache    *TagCache
	renderer *Renderer

	state       State
	reports     map[string]reportEntry
	warned      map[string]bool
	rankedFiles int
}

// NewSession builds a session rooted at opts.Root.
func NewSession(opts Options) (*Session, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	s := &Session{
		root:    root,
		opts:    opts,
		parser:  opts.Parser,
		counter: opts.Counter,
		sink:    opts.Sink,
		log:     opts.Logger,
		reports: make(map[string]reportEntry),
		warned:  make(map[string]bool),
	}
	if s.parser == nil {
		s.parser = NewTreeSitterParser()
	}
	if s.counter == nil {
		s.counter = CharRatioCounter(defaultTokenRatio)
	}
	if s.sink == nil {
		s.sink = NewStdSink()
	}
	if s.opts.MapMulNoFiles <= 0 {
		s.opts.MapMulNoFiles = defaultMapMulNoFiles
	}
	read := opts.Reader
	if read == nil {
		read = ReadFile
	}

	cacheDir := ""
	if !opts.NoCache {
		cacheDir = opts.CacheDir
		if cacheDir == "" {
			cacheDir = filepath.Join(root, TagsCacheDirName)
		}
	}
	s.cache = NewTagCache(cacheDir, NewExtractor(s.parser, read), s.sink, s.log)

	var spans SpanFinder
	if sf, ok := s.parser.(SpanFinder); ok {
		spans = sf
	}
	s.renderer = NewRenderer(read, spans, s.log)

	s.log.Debug().Str("root", root).Str("cache", cacheDir).Bool("persistent", s.cache.Persistent()).Msg("repo map session opened")
	return s, nil
}

// State returns the state reached by the last Generate call.
func (s *Session) State() State { return s.state }

// RankedFiles returns the number of files that contributed ranked
// definitions in the last computed map.
func (s *Session) RankedFiles() int { return s.rankedFiles }

// CacheStats returns the tag cache counters.
func (s *Session) CacheStats() CacheStats { return s.cache.Stats() }

// ClearCache removes every tag cache entry and forgets computed reports.
func (s *Session) ClearCache() error {
	s.reports = make(map[string]reportEntry)
	if err := s.cache.Clear(); err != nil {
		return fmt.Errorf("clearing tags cache: %w", err)
	}
	return nil
}

// Close releases the tag cache.
func (s *Session) Close() error {
	stats := s.cache.Stats()
	s.log.Debug().Int("hits", stats.Hits).Int("parses", stats.Parses).Int("recoveries", stats.Recoveries).Msg("tags cache stats")
	return s.cache.Close()
}

// Generate produces the repository map for req. A nil result means there is
// nothing to show. The only error returned is context cancellation.
func (s *Session) Generate(ctx context.Context, req Request) (*types.MapResult, error) {
	if s.state == StateDisabled {
		return nil, nil
	}
	if req.TokenBudget <= 0 || len(req.ContextFiles) == 0 {
		s.state = StateEmpty
		return nil, nil
	}

	budget := s.effectiveBudget(req)
	key := reportKey(req, budget)
	if !req.ForceRefresh {
		if entry, ok := s.reports[key]; ok {
			s.log.Debug().Msg("repo map served from report cache")
			return s.finish(entry.result, len(req.FocusFiles) > 0), nil
		}
	}

	result, err := s.generate(ctx, req, budget)
	if err != nil {
		return nil, err
	}
	if s.state == StateDisabled {
		return nil, nil
	}
	s.reports[key] = reportEntry{result: result}
	return s.finish(result, len(req.FocusFiles) > 0), nil
}

// effectiveBudget applies the no-focus multiplier, capped by the context
// window minus padding.
func (s *Session) effectiveBudget(req Request) float64 {
	budget := float64(req.TokenBudget)
	if len(req.FocusFiles) > 0 || s.opts.MaxContextWindow <= 0 {
		return budget
	}
	target := math.Min(budget*s.opts.MapMulNoFiles, float64(s.opts.MaxContextWindow-contextWindowPadding))
	if target > 0 {
		return target
	}
	return budget
}

// finish applies the content prefix and verbose report to a computed map.
func (s *Session) finish(result *types.MapResult, hasFocus bool) *types.MapResult {
	if result == nil {
		s.state = StateEmpty
		return nil
	}
	s.state = StateRendered

	out := *result
	if s.opts.Verbose {
		s.sink.Info(fmt.Sprintf("Repo-map: %.1f k-tokens", float64(out.Tokens)/1024))
	}
	if s.opts.RepoContentPrefix != "" {
		other := ""
		if hasFocus {
			other = "context "
		}
		out.Map = strings.ReplaceAll(s.opts.RepoContentPrefix, "{other}", other) + out.Map
	}
	return &out
}

// generate runs graph building, ranking and the budget search. A panic in
// any stage disables the session.
func (s *Session) generate(ctx context.Context, req Request, budget float64) (result *types.MapResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error().Interface("panic", p).Str("state", s.state.String()).Msg("repo map generation aborted")
			s.sink.Warning("Disabling repo map, git repo too large?")
			s.state = StateDisabled
			result, err = nil, nil
		}
	}()

	s.state = StateBuildingGraph
	focus := s.relSet(req.FocusFiles)
	files, err := s.collectTags(ctx, append(append([]string{}, req.FocusFiles...), req.ContextFiles...))
	if err != nil {
		s.state = StateIdle
		return nil, err
	}

	g, personalization := BuildGraph(files, focus)
	if len(g.Nodes) == 0 {
		s.state = StateEmpty
		return nil, nil
	}
	s.log.Debug().Int("nodes", len(g.Nodes)).Int("edges", len(g.Edges)).Msg("reference graph built")

	s.state = StateRanking
	ranks := PageRank(g, personalization, s.opts.Rank)
	opts := RankOptions{
		Focus:           focus,
		MentionedFiles:  s.mentionedSet(req.MentionedFiles),
		MentionedIdents: toSet(req.MentionedIdents),
		ExcludeUnranked: s.opts.ExcludeUnranked,
	}
	ranked, rankedFiles := RankTags(files, ranks, opts)
	ranked = s.prependImportant(ranked, req.ContextFiles, files, ranks)
	s.rankedFiles = rankedFiles
	if len(ranked) == 0 {
		s.state = StateEmpty
		return nil, nil
	}

	s.state = StateSearchingBudget
	best := searchBudget(ranked, budget, s.renderer.Render, s.counter)
	if best.Report == "" {
		s.state = StateEmpty
		return nil, nil
	}
	s.log.Debug().Int("tags", best.Count).Float64("tokens", best.Tokens).Float64("budget", budget).Msg("budget search done")

	return &types.MapResult{
		Map:         best.Report,
		Tokens:      int(math.Round(best.Tokens)),
		FilesInput:  len(files),
		FilesRanked: rankedFiles,
	}, nil
}

// collectTags resolves and deduplicates paths, skipping missing files with a
// one-time warning, and loads each file's tags through the cache.
func (s *Session) collectTags(ctx context.Context, paths []string) ([]FileTags, error) {
	seen := make(map[string]bool)
	var abs []string
	for _, p := range paths {
		a := s.absPath(p)
		if seen[a] {
			continue
		}
		seen[a] = true
		abs = append(abs, a)
	}
	sort.Strings(abs)

	var files []FileTags
	for _, a := range abs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("building reference graph: %w", err)
		}
		info, err := os.Stat(a)
		if err != nil || info.IsDir() {
			if !s.warned[a] {
				s.warned[a] = true
				s.sink.Warning(fmt.Sprintf("Repo-map can't include %s", a))
			}
			continue
		}
		rel := s.relPath(a)
		files = append(files, FileTags{RelPath: rel, AbsPath: a, Tags: s.cache.Get(a, rel)})
	}
	return files, nil
}

// prependImportant puts important context files that have no ranked
// definition in front of the candidates as file-only entries.
func (s *Session) prependImportant(ranked []types.RankedTag, contextFiles []string, files []FileTags, ranks map[string]float64) []types.RankedTag {
	present := make(map[string]FileTags, len(files))
	for _, f := range files {
		present[f.RelPath] = f
	}
	hasDefs := make(map[string]bool)
	for _, rt := range ranked {
		hasDefs[rt.Tag.RelPath] = true
	}

	rels := make([]string, 0, len(contextFiles))
	for _, p := range contextFiles {
		rels = append(rels, s.relPath(s.absPath(p)))
	}

	var head []types.RankedTag
	added := make(map[string]bool)
	for _, rel := range FilterImportant(rels) {
		f, ok := present[rel]
		if !ok || hasDefs[rel] || added[rel] {
			continue
		}
		rank := ranks[rel]
		if s.opts.ExcludeUnranked && rank == 0 {
			continue
		}
		added[rel] = true
		head = append(head, types.RankedTag{Score: rank, Tag: types.Tag{RelPath: rel, AbsPath: f.AbsPath}})
	}
	if len(head) == 0 {
		return ranked
	}
	return append(head, ranked...)
}

func (s *Session) absPath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.root, p)
}

func (s *Session) relPath(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func (s *Session) relSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[s.relPath(s.absPath(p))] = true
	}
	return set
}

func (s *Session) mentionedSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[filepath.ToSlash(filepath.Clean(p))] = true
	}
	return set
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// reportKey identifies a request in the report cache.
func reportKey(req Request, budget float64) string {
	part := func(items []string) string {
		sorted := append([]string(nil), items...)
		sort.Strings(sorted)
		return strings.Join(sorted, "\x1f")
	}
	return strings.Join([]string{
		part(req.FocusFiles),
		part(req.ContextFiles),
		fmt.Sprintf("%g", budget),
		part(req.MentionedFiles),
		part(req.MentionedIdents),
	}, "\x1e")
}
