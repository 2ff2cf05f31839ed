// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "repomap "+version+"\n", out)
}

func TestMapCmd_PrintsSummaryAndMap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"),
		[]byte("package a\n\nfunc Foo() int { return 1 }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"),
		[]byte("package a\n\nfunc Bar() int { return Foo() }\n"), 0o644))

	out, err := execute(t, "map", "--root", dir, "--no-cache", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Analysed 2 files · ranked")
	assert.Contains(t, out, "a.go:\n(Rank value: ")
	assert.Contains(t, out, "func Foo() int")
}

func TestMapCmd_NothingToMap(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "map", "--root", dir, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "No repository map generated.")
}

func TestMapCmd_ZeroTokensYieldsNoMap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc Foo() {}\n"), 0o644))

	out, err := execute(t, "map", "--root", dir, "--no-cache", "--map-tokens", "0", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No repository map generated.")
	assert.NotContains(t, out, "a.go:")
}

func TestMapCmd_VerboseReportsCacheStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc Foo() {}\n"), 0o644))

	out, err := execute(t, "map", "--root", dir, "--no-cache", "--verbose", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Tags cache: 0 hits · 1 parses · 0 recoveries")
}

func TestMapCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc Foo() {}\n"), 0o644))

	out, err := execute(t, "map", "--root", dir, "--no-cache", "--json", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"files_input": 1`)
}

func TestCacheClearCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--root", dir, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared tags cache in")
}
