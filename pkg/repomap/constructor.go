// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"fmt"
	"os"

	internal "github.com/petar-djukic/go-repomap/internal/repomap"
	"github.com/petar-djukic/go-repomap/pkg/types"
)

// DefaultMapTokens is the token budget the CLI uses when --map-tokens is
// not given.
const DefaultMapTokens = 8192 * 4

const (
	defaultMapMulNoFiles = 8
	defaultTokenRatio    = 0.25
)

// New validates the config, opens the tags cache and returns a ready-to-use
// Mapper. It does not read any source file; that happens in Map.
func New(cfg Config) (Mapper, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	opts := internal.Options{
		Root:              cfg.Root,
		CacheDir:          cfg.CacheDir,
		NoCache:           cfg.NoCache,
		Counter:           internal.CharRatioCounter(cfg.TokenRatio),
		Logger:            cfg.Logger,
		ExcludeUnranked:   cfg.ExcludeUnranked,
		MaxContextWindow:  cfg.MaxContextWindow,
		MapMulNoFiles:     cfg.MapMulNoFiles,
		RepoContentPrefix: cfg.RepoContentPrefix,
		Verbose:           cfg.Verbose,
	}
	if cfg.Sink != nil {
		opts.Sink = cfg.Sink
	}

	session, err := internal.NewSession(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &mapperAdapter{session: session, mapTokens: cfg.MapTokens}, nil
}

// mapperAdapter adapts internal/repomap.Session to the public Mapper
// interface.
type mapperAdapter struct {
	session   *internal.Session
	mapTokens int
}

func (a *mapperAdapter) Map(ctx context.Context, req Request) (*types.MapResult, error) {
	budget := a.mapTokens
	if req.TokenBudget != nil {
		budget = *req.TokenBudget
	}
	return a.session.Generate(ctx, internal.Request{
		FocusFiles:      req.FocusFiles,
		ContextFiles:    req.ContextFiles,
		MentionedFiles:  req.MentionedFiles,
		MentionedIdents: req.MentionedIdents,
		TokenBudget:     budget,
		ForceRefresh:    req.ForceRefresh,
	})
}

func (a *mapperAdapter) RankedFiles() int {
	return a.session.RankedFiles()
}

func (a *mapperAdapter) CacheStats() CacheStats {
	st := a.session.CacheStats()
	return CacheStats{Hits: st.Hits, Parses: st.Parses, Recoveries: st.Recoveries}
}

func (a *mapperAdapter) ClearCache() error {
	if err := a.session.ClearCache(); err != nil {
		return fmt.Errorf("%w: %v", ErrCache, err)
	}
	return nil
}

func (a *mapperAdapter) Close() error {
	return a.session.Close()
}

// validateConfig checks that required fields are present and in range.
func validateConfig(cfg Config) error {
	if cfg.Root == "" {
		return fmt.Errorf("Root is required")
	}
	if info, err := os.Stat(cfg.Root); err != nil || !info.IsDir() {
		return fmt.Errorf("Root %q does not exist or is not a directory", cfg.Root)
	}
	if cfg.MapTokens < 0 {
		return fmt.Errorf("MapTokens must not be negative, got %d", cfg.MapTokens)
	}
	if cfg.MaxContextWindow < 0 {
		return fmt.Errorf("MaxContextWindow must not be negative, got %d", cfg.MaxContextWindow)
	}
	if cfg.TokenRatio < 0 {
		return fmt.Errorf("TokenRatio must not be negative, got %g", cfg.TokenRatio)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults. MapTokens
// is left alone: a zero budget disables the map.
func applyDefaults(cfg *Config) {
	if cfg.MapMulNoFiles == 0 {
		cfg.MapMulNoFiles = defaultMapMulNoFiles
	}
	if cfg.TokenRatio == 0 {
		cfg.TokenRatio = defaultTokenRatio
	}
}
