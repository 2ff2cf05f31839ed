// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu       sync.Mutex
	warnings []string
}

func (s *captureSink) Info(string) {}

func (s *captureSink) Warning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

func (s *captureSink) Error(string) {}

func TestNew_InvalidConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing root", Config{}},
		{"root does not exist", Config{Root: filepath.Join(t.TempDir(), "nope")}},
		{"root is a file", Config{Root: file}},
		{"negative tokens", Config{Root: t.TempDir(), MapTokens: -1}},
		{"negative window", Config{Root: t.TempDir(), MaxContextWindow: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)
	assert.Zero(t, cfg.MapTokens)
	assert.Equal(t, 8.0, cfg.MapMulNoFiles)
	assert.Equal(t, 0.25, cfg.TokenRatio)
}

func TestMapper_Map(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.go"), []byte("package lib\n\nfunc Hello() string {\n\treturn \"hi\"\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package lib\n\nfunc run() {\n\tHello()\n}\n"), 0o644))

	sink := &captureSink{}
	m, err := New(Config{Root: dir, MapTokens: DefaultMapTokens, Sink: sink})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	res, err := m.Map(context.Background(), Request{
		FocusFiles:   []string{"main.go"},
		ContextFiles: []string{"lib.go", "main.go", "missing.go"},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Contains(t, res.Map, "lib.go:\n(Rank value:")
	assert.Equal(t, 2, res.FilesInput)
	assert.Equal(t, 2, m.RankedFiles())
	assert.Len(t, sink.warnings, 1)
	assert.Equal(t, CacheStats{Parses: 2}, m.CacheStats())

	_, err = m.Map(context.Background(), Request{
		FocusFiles:   []string{"main.go"},
		ContextFiles: []string{"lib.go", "main.go"},
		ForceRefresh: true,
	})
	require.NoError(t, err)
	assert.Equal(t, CacheStats{Hits: 2, Parses: 2}, m.CacheStats())

	require.NoError(t, m.ClearCache())
}

func TestMapper_BudgetOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.go"), []byte("package lib\n\nfunc Hello() {}\n"), 0o644))

	m, err := New(Config{Root: dir, NoCache: true, MapTokens: 1, Sink: &captureSink{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	res, err := m.Map(context.Background(), Request{ContextFiles: []string{"lib.go"}})
	require.NoError(t, err)
	assert.Nil(t, res, "a one-token budget fits nothing")

	budget := 4096
	res, err = m.Map(context.Background(), Request{ContextFiles: []string{"lib.go"}, TokenBudget: &budget})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestMapper_ZeroBudgetYieldsNoMap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.go"), []byte("package lib\n\nfunc Hello() {}\n"), 0o644))

	m, err := New(Config{Root: dir, NoCache: true, MapTokens: 0, Sink: &captureSink{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	res, err := m.Map(context.Background(), Request{ContextFiles: []string{"lib.go"}})
	require.NoError(t, err)
	assert.Nil(t, res)

	zero := 0
	m2, err := New(Config{Root: dir, NoCache: true, MapTokens: DefaultMapTokens, Sink: &captureSink{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m2.Close() })

	res, err = m2.Map(context.Background(), Request{ContextFiles: []string{"lib.go"}, TokenBudget: &zero})
	require.NoError(t, err)
	assert.Nil(t, res, "an explicit zero override disables the map")
}
