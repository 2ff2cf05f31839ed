// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import "sync"

// recordingSink keeps every message in memory.
type recordingSink struct {
	mu       sync.Mutex
	Infos    []string
	Warnings []string
	Errors   []string
}

func (s *recordingSink) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Infos = append(s.Infos, msg)
}

func (s *recordingSink) Warning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Warnings = append(s.Warnings, msg)
}

func (s *recordingSink) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, msg)
}
