// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"math"
	"strings"
)

const (
	defaultTokenRatio = 0.25 // tokens per character
	directCountLimit  = 200  // shorter texts are counted in full
	sampleLines       = 100  // target number of sampled lines
)

// CharRatioCounter returns a TokenCounter that estimates ratio tokens per
// character. A ratio <= 0 uses 0.25.
func CharRatioCounter(ratio float64) TokenCounter {
	if ratio <= 0 {
		ratio = defaultTokenRatio
	}
	return func(text string) int {
		return int(math.Ceil(float64(len(text)) * ratio))
	}
}

// estimateTokens counts short texts directly. Longer texts are estimated
// from every ⌈lines/100⌉-th line, extrapolating the sample's
// tokens-per-character rate to the full length.
func estimateTokens(text string, count TokenCounter) float64 {
	if len(text) < directCountLimit {
		return float64(count(text))
	}

	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	step := (len(lines) + sampleLines - 1) / sampleLines
	if step < 1 {
		step = 1
	}

	var sample strings.Builder
	for i := 0; i < len(lines); i += step {
		sample.WriteString(lines[i])
	}
	s := sample.String()
	if s == "" {
		return 0
	}
	return float64(count(s)) / float64(len(s)) * float64(len(text))
}
