// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repomap is the public interface for go-repomap: a ranked,
// token-budgeted summary of the definitions that matter most in a
// repository.
package repomap

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

// Error types for the Mapper API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrCache         = errors.New("tags cache failure")
)

// Sink receives user-facing messages. Warnings cover skipped files and cache
// recovery; errors cover files that failed to parse.
type Sink interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// Config configures a Mapper instance.
type Config struct {
	Root              string         // Repository root (required)
	MapTokens         int            // Token budget for the map; 0 yields no map
	CacheDir          string         // Tags cache directory (default <Root>/.repomap.tags.cache.v1)
	NoCache           bool           // Keep tags in memory only
	TokenRatio        float64        // Tokens per character for the default counter (default 0.25)
	ExcludeUnranked   bool           // Drop files whose PageRank is 0
	MaxContextWindow  int            // Model context window; 0 disables the no-focus multiplier
	MapMulNoFiles     float64        // Budget multiplier when no focus files are given (default 8)
	RepoContentPrefix string         // Prefix for the map; "{other}" expands to "context " with focus files
	Verbose           bool           // Report the map size on the info sink
	Sink              Sink           // Default: stdout/stderr
	Logger            zerolog.Logger // Diagnostics; the zero value discards
}

// Request selects the files and hints for one map.
type Request struct {
	FocusFiles      []string // Files being worked on (20x boost)
	ContextFiles    []string // Files eligible for the map
	MentionedFiles  []string // Relative paths mentioned by the user (5x boost)
	MentionedIdents []string // Identifiers mentioned by the user (10x boost)
	TokenBudget     *int     // Overrides Config.MapTokens when set
	ForceRefresh    bool     // Bypass the report cache
}

// CacheStats counts tag cache activity since the Mapper was created.
type CacheStats struct {
	Hits       int // Files served from the cache
	Parses     int // Files parsed because they were new or modified
	Recoveries int // Cache resets after a storage error
}

// Mapper builds repository maps. A Mapper keeps its caches between calls
// and is not safe for concurrent use.
type Mapper interface {
	// Map returns the repository map for req, or nil when there is nothing
	// to show. It only fails when ctx is cancelled.
	Map(ctx context.Context, req Request) (*types.MapResult, error)

	// RankedFiles returns how many files contributed definitions to the
	// last computed map.
	RankedFiles() int

	// CacheStats returns the tag cache counters accumulated so far.
	CacheStats() CacheStats

	// ClearCache drops every persisted tag entry.
	ClearCache() error

	// Close releases the tags cache.
	Close() error
}
