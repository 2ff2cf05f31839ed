// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package discover lists the source files a repository map is built from.
// Inside a git work tree it keeps tracked and untracked, non-ignored files;
// elsewhere it applies the root .gitignore itself.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// defaultSkipDirs are never descended into. Hidden directories are skipped
// as well.
var defaultSkipDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	"env":          true,
	".venv":        true,
	"build":        true,
	"dist":         true,
	".cache":       true,
	".next":        true,
	".nuxt":        true,
}

// Options controls file discovery.
type Options struct {
	ExcludeExtensions []string // e.g. ".js", ".css"
	ExcludeDirs       []string // directory names added to the default skip set
	ExcludeGlobs      []string // glob patterns matched against slash-separated relative paths
	NoGitignore       bool     // include files ignored by git
}

type matcher struct {
	exts  map[string]bool
	dirs  map[string]bool
	globs []glob.Glob
}

func newMatcher(opts Options) (*matcher, error) {
	m := &matcher{exts: make(map[string]bool), dirs: make(map[string]bool)}
	for _, ext := range opts.ExcludeExtensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.exts[ext] = true
	}
	for d := range defaultSkipDirs {
		m.dirs[d] = true
	}
	for _, d := range opts.ExcludeDirs {
		m.dirs[d] = true
	}
	for _, p := range opts.ExcludeGlobs {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *matcher) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || m.dirs[name]
}

func (m *matcher) skipFile(rel string) bool {
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") || m.exts[filepath.Ext(base)] {
		return true
	}
	slash := filepath.ToSlash(rel)
	for _, g := range m.globs {
		if g.Match(slash) || g.Match(base) {
			return true
		}
	}
	return false
}

// Files returns the sorted absolute paths of the source files under path.
// A path naming a single file is returned as is unless its extension is
// excluded. A missing path yields no files.
func Files(path string, opts Options) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	m, err := newMatcher(opts)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil
	}
	if !info.IsDir() {
		if m.exts[filepath.Ext(abs)] {
			return nil, nil
		}
		return []string{abs}, nil
	}

	var (
		tracked map[string]bool
		gi      *ignore.GitIgnore
	)
	if !opts.NoGitignore {
		tracked = gitFiles(abs)
		if tracked == nil {
			gi = loadGitignore(abs)
		}
	}

	var files []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if d.IsDir() {
			if p != abs && m.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil {
			return nil
		}
		if m.skipFile(rel) {
			return nil
		}
		switch {
		case tracked != nil && !tracked[p]:
			return nil
		case gi != nil && gi.MatchesPath(filepath.ToSlash(rel)):
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", abs, err)
	}

	sort.Strings(files)
	return files, nil
}

// gitFiles returns the git-visible files for dir, or nil when dir is not in
// a work tree or the listing is empty.
func gitFiles(dir string) map[string]bool {
	repo, err := OpenRepo(dir)
	if err != nil {
		return nil
	}
	files, err := repo.Files()
	if err != nil || len(files) == 0 {
		return nil
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
