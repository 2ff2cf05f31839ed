// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"path"
	"path/filepath"
	"strings"
)

// importantFilenames are manifests, docs and tool configs that belong in a
// map regardless of rank. Matched against the full relative path and the
// base name.
var importantFilenames = map[string]bool{
	"README.md": true, "README.txt": true, "readme.md": true, "README.rst": true, "README": true,
	"CLAUDE.md": true,
	"requirements.txt": true, "Pipfile": true, "pyproject.toml": true, "setup.py": true, "setup.cfg": true,
	"uv.lock": true,
	"package.json": true, "yarn.lock": true, "package-lock.json": true, "bun.lockb": true,
	"tsconfig.json": true,
	"Dockerfile": true, "docker-compose.yml": true, "docker-compose.yaml": true,
	".gitignore": true, ".gitattributes": true, ".dockerignore": true,
	"Makefile": true, "makefile": true, "CMakeLists.txt": true,
	".env": true, ".env.example": true, ".env.local": true,
	"tox.ini": true, "pytest.ini": true, ".pytest.ini": true,
	".flake8": true, ".pylintrc": true, "mypy.ini": true, "ruff.toml": true,
	"go.mod": true, "go.sum": true, "Cargo.toml": true, "Cargo.lock": true,
	"pom.xml": true, "build.gradle": true, "build.gradle.kts": true,
	"composer.json": true, "composer.lock": true,
	"Gemfile": true, "Gemfile.lock": true,
	"Package.swift": true,
	"svelte.config.js": true, "vite.config.ts": true, "vite.config.js": true,
	".mcp.json": true,
}

// importantDirs maps a directory (exact match, slash separated) to the
// extensions that make a file directly inside it important.
var importantDirs = map[string][]string{
	".github/workflows": {".yml", ".yaml"},
	".github":           {".md", ".yml", ".yaml"},
	".claude":           {".md", ".json"},
	"docs":              {".md", ".rst", ".txt"},
}

// IsImportant reports whether a relative path names a manifest, doc or CI
// config file.
func IsImportant(relPath string) bool {
	p := path.Clean(filepath.ToSlash(relPath))
	base := path.Base(p)
	dir := path.Dir(p)

	for _, ext := range importantDirs[dir] {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return importantFilenames[p] || importantFilenames[base]
}

// FilterImportant returns the important paths, preserving order.
func FilterImportant(relPaths []string) []string {
	var out []string
	for _, p := range relPaths {
		if IsImportant(p) {
			out = append(out, p)
		}
	}
	return out
}
