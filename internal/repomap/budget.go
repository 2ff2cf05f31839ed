// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import "github.com/petar-djukic/go-repomap/pkg/types"

// renderFunc renders a prefix of the ranked candidates.
type renderFunc func(prefix []types.RankedTag) string

// budgetResult is the best prefix found by searchBudget.
type budgetResult struct {
	Report string
	Tokens float64
	Count  int
}

// searchBudget binary searches the longest prefix of ranked whose rendered
// report fits within budget tokens. It assumes the token count grows with
// the prefix length, so it probes O(log n) prefixes. An empty Report means
// nothing fits.
func searchBudget(ranked []types.RankedTag, budget float64, render renderFunc, count TokenCounter) budgetResult {
	var best budgetResult
	if budget <= 0 {
		return best
	}

	lo, hi := 0, len(ranked)
	for lo <= hi {
		mid := (lo + hi) / 2
		if mid <= 0 {
			lo = mid + 1
			continue
		}

		report := render(ranked[:mid])
		if report == "" {
			lo = mid + 1
			continue
		}

		tokens := estimateTokens(report, count)
		if tokens <= budget {
			best = budgetResult{Report: report, Tokens: tokens, Count: mid}
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}
