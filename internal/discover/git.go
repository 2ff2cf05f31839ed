// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package discover

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNoGit is returned when a directory is not inside a git work tree.
var ErrNoGit = errors.New("not a git repository")

// Repo wraps a go-git repository for file listing.
type Repo struct {
	repo *gogit.Repository
	root string
}

// OpenRepo opens the git repository containing dir, searching parent
// directories for .git. Returns ErrNoGit if there is none.
func OpenRepo(dir string) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("resolving work tree root: %w", err)
	}
	return &Repo{repo: r, root: root}, nil
}

// Files returns the absolute paths of every tracked file plus every
// untracked file not excluded by .gitignore, the same set as
// `git ls-files --cached --others --exclude-standard`.
func (r *Repo) Files() (map[string]bool, error) {
	files := make(map[string]bool)

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	for _, e := range idx.Entries {
		files[filepath.Join(r.root, filepath.FromSlash(e.Name))] = true
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	for name, st := range status {
		if st.Worktree == gogit.Untracked {
			files[filepath.Join(r.root, filepath.FromSlash(name))] = true
		}
	}
	return files, nil
}
