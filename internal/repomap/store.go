// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

const (
	cacheVersion   = 1
	sqliteDriver   = "sqlite"
	cacheDBName    = "cache.db"
	tagsCacheTable = `
CREATE TABLE IF NOT EXISTS tags (
  path TEXT PRIMARY KEY,
  mtime INTEGER NOT NULL,
  data BLOB NOT NULL
);
`
)

// TagsCacheDirName is the cache directory created under the repository root.
var TagsCacheDirName = fmt.Sprintf(".repomap.tags.cache.v%d", cacheVersion)

// cacheEntry is the stored value for one absolute path.
type cacheEntry struct {
	ModTime int64       `json:"mtime"` // UnixNano
	Tags    []types.Tag `json:"tags"`
}

// tagStore is the storage layer behind TagCache. Any error it returns is
// treated as corruption.
type tagStore interface {
	get(path string) (cacheEntry, bool, error)
	put(path string, e cacheEntry) error
	clear() error
	close() error
}

// sqliteStore persists entries in <dir>/cache.db.
type sqliteStore struct {
	dir string
	db  *sql.DB
}

func openSQLiteStore(dir string) (*sqliteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tags cache directory %q: %w", dir, err)
	}

	path := filepath.Join(dir, cacheDBName)
	db, err := sql.Open(sqliteDriver, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open tags cache %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping tags cache %q: %w", path, err)
	}
	if _, err := db.Exec(tagsCacheTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize tags cache schema %q: %w", path, err)
	}
	return &sqliteStore{dir: dir, db: db}, nil
}

// sqliteDSN builds a file: URI for path with its reserved characters
// escaped.
func sqliteDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)",
	}
	return u.String()
}

func (s *sqliteStore) get(path string) (cacheEntry, bool, error) {
	var (
		mtime int64
		data  []byte
	)
	err := s.db.QueryRow(`SELECT mtime, data FROM tags WHERE path = ?`, path).Scan(&mtime, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return cacheEntry{}, false, nil
	}
	if err != nil {
		return cacheEntry{}, false, fmt.Errorf("read tags for %s: %w", path, err)
	}

	var tags []types.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		return cacheEntry{}, false, fmt.Errorf("decode tags for %s: %w", path, err)
	}
	return cacheEntry{ModTime: mtime, Tags: tags}, true, nil
}

func (s *sqliteStore) put(path string, e cacheEntry) error {
	data, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("encode tags for %s: %w", path, err)
	}
	_, err = s.db.Exec(`
INSERT INTO tags (path, mtime, data) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET mtime=excluded.mtime, data=excluded.data
`, path, e.ModTime, data)
	if err != nil {
		return fmt.Errorf("write tags for %s: %w", path, err)
	}
	return nil
}

func (s *sqliteStore) clear() error {
	if _, err := s.db.Exec(`DELETE FROM tags`); err != nil {
		return fmt.Errorf("clear tags cache: %w", err)
	}
	return nil
}

func (s *sqliteStore) close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// memoryStore is the non-persistent fallback.
type memoryStore struct {
	entries map[string]cacheEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]cacheEntry)}
}

func (m *memoryStore) get(path string) (cacheEntry, bool, error) {
	e, ok := m.entries[path]
	return e, ok, nil
}

func (m *memoryStore) put(path string, e cacheEntry) error {
	m.entries[path] = e
	return nil
}

func (m *memoryStore) clear() error {
	m.entries = make(map[string]cacheEntry)
	return nil
}

func (m *memoryStore) close() error { return nil }
