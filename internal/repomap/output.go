// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Sink receives user-facing messages on three independent channels. The
// core never exits the process on any of them.
type Sink interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// FileReader returns the text of a file.
type FileReader func(path string) (string, error)

// TokenCounter returns the token count of text. It must be deterministic.
type TokenCounter func(text string) int

// ReadFile is the default FileReader.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// StdSink writes info to Out and warnings and errors to Err, with coloured
// prefixes when the writer is a terminal.
type StdSink struct {
	Out io.Writer
	Err io.Writer
}

// NewStdSink returns a sink on os.Stdout and os.Stderr.
func NewStdSink() *StdSink {
	return &StdSink{Out: os.Stdout, Err: os.Stderr}
}

var (
	warnPrefix  = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
)

func (s *StdSink) Info(msg string) {
	_, _ = fmt.Fprintln(s.Out, msg)
}

func (s *StdSink) Warning(msg string) {
	_, _ = fmt.Fprintf(s.Err, "%s %s\n", warnPrefix("Warning:"), msg)
}

func (s *StdSink) Error(msg string) {
	_, _ = fmt.Fprintf(s.Err, "%s %s\n", errorPrefix("Error:"), msg)
}
