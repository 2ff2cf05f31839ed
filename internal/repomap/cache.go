// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

// CacheStats counts tag cache activity for one session.
type CacheStats struct {
	Hits       int // Entries served without calling the extractor
	Parses     int // Extractor invocations
	Recoveries int // Store resets after a storage error
}

// TagCache memoizes Extractor results per absolute path, keyed by the
// file's modification time. Entries are written through on every miss.
type TagCache struct {
	dir       string
	store     tagStore
	extractor *Extractor
	sink      Sink
	log       zerolog.Logger
	stats     CacheStats
}

// NewTagCache opens the SQLite store in dir. An empty dir, or a store that
// cannot be opened, leaves the cache in memory for the session.
func NewTagCache(dir string, extractor *Extractor, sink Sink, log zerolog.Logger) *TagCache {
	c := &TagCache{dir: dir, extractor: extractor, sink: sink, log: log}
	if dir == "" {
		c.store = newMemoryStore()
		return c
	}
	st, err := openSQLiteStore(dir)
	if err != nil {
		sink.Warning(fmt.Sprintf("Failed to load tags cache: %v", err))
		c.dir = ""
		c.store = newMemoryStore()
		return c
	}
	c.store = st
	return c
}

// Get returns the tags for a file. A file that cannot be stat'ed yields a
// warning and no tags.
func (c *TagCache) Get(absPath, relPath string) []types.Tag {
	info, err := os.Stat(absPath)
	if err != nil {
		c.sink.Warning(fmt.Sprintf("File not found: %s", absPath))
		return nil
	}
	mtime := info.ModTime().UnixNano()

	entry, ok, err := c.store.get(absPath)
	switch {
	case err != nil:
		c.resetStore(err)
	case ok && entry.ModTime == mtime:
		c.stats.Hits++
		return entry.Tags
	}

	tags, err := c.extractor.Extract(absPath, relPath)
	c.stats.Parses++
	if err != nil {
		c.report(err)
	}

	if err := c.store.put(absPath, cacheEntry{ModTime: mtime, Tags: tags}); err != nil {
		c.resetStore(err)
	}
	return tags
}

// Clear drops every entry.
func (c *TagCache) Clear() error {
	return c.store.clear()
}

// Close releases the underlying store.
func (c *TagCache) Close() error {
	return c.store.close()
}

// Stats returns the activity counters.
func (c *TagCache) Stats() CacheStats {
	return c.stats
}

// Persistent reports whether entries survive the session.
func (c *TagCache) Persistent() bool {
	_, mem := c.store.(*memoryStore)
	return !mem
}

func (c *TagCache) report(err error) {
	var xe *ExtractError
	if errors.As(err, &xe) && xe.Severity == SeverityWarning {
		c.sink.Warning(xe.Error())
		return
	}
	c.sink.Error(err.Error())
}

// resetStore deletes and reopens the cache directory after a storage error.
// If that fails too, the cache stays in memory for the rest of the session.
func (c *TagCache) resetStore(cause error) {
	c.stats.Recoveries++
	c.log.Warn().Err(cause).Str("dir", c.dir).Msg("tags cache error, recreating store")
	_ = c.store.close()

	if c.dir != "" {
		if err := os.RemoveAll(c.dir); err == nil {
			st, err := openSQLiteStore(c.dir)
			if err == nil {
				c.store = st
				return
			}
			c.log.Debug().Err(err).Msg("reopen tags cache failed")
		}
	}

	c.sink.Warning("Failed to recreate tags cache, using in-memory cache")
	c.dir = ""
	c.store = newMemoryStore()
}
