// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import "math"

const (
	defaultDamping   = 0.85
	defaultMaxIter   = 100
	defaultTolerance = 1e-6
	maxRankScore     = 100.0
)

// RankConfig configures PageRank computation. Zero values take the defaults.
type RankConfig struct {
	Damping       float64 // Damping factor (default 0.85)
	MaxIterations int     // Maximum iterations (default 100)
	Tolerance     float64 // L1 convergence tolerance (default 1e-6)
}

// PageRank runs personalized PageRank over g and returns per-node scores
// rescaled so the highest equals 100. personalization is both the initial
// distribution and the teleport vector; nil or all-zero means uniform.
func PageRank(g *Graph, personalization map[string]float64, cfg RankConfig) map[string]float64 {
	scores := rawPageRank(g, personalization, cfg)
	if scores == nil {
		return map[string]float64{}
	}

	peak := 0.0
	for _, s := range scores {
		peak = math.Max(peak, s)
	}
	scale := 1.0
	if peak > 0 {
		scale = maxRankScore / peak
	}

	ranks := make(map[string]float64, len(scores))
	for i, node := range g.Nodes {
		ranks[node] = scores[i] * scale
	}
	return ranks
}

// rawPageRank returns the unscaled scores in node order. They are
// non-negative and sum to 1.
func rawPageRank(g *Graph, personalization map[string]float64, cfg RankConfig) []float64 {
	damping := cfg.Damping
	if damping == 0 {
		damping = defaultDamping
	}
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = defaultMaxIter
	}
	tolerance := cfg.Tolerance
	if tolerance == 0 {
		tolerance = defaultTolerance
	}

	n := len(g.Nodes)
	if n == 0 {
		return nil
	}

	idx := make(map[string]int, n)
	for i, node := range g.Nodes {
		idx[node] = i
	}

	teleport := make([]float64, n)
	total := 0.0
	for i, node := range g.Nodes {
		teleport[i] = personalization[node]
		total += teleport[i]
	}
	for i := range teleport {
		if total > 0 {
			teleport[i] /= total
		} else {
			teleport[i] = 1.0 / float64(n)
		}
	}

	outEdges := make([][]int, n)
	for _, e := range g.Edges {
		from, okF := idx[e.From]
		to, okT := idx[e.To]
		if !okF || !okT {
			continue
		}
		outEdges[from] = append(outEdges[from], to)
	}

	rank := make([]float64, n)
	copy(rank, teleport)
	next := make([]float64, n)

	for iter := 0; iter < maxIter; iter++ {
		for i := range next {
			next[i] = 0
		}

		dangling := 0.0
		for i := 0; i < n; i++ {
			deg := len(outEdges[i])
			if deg == 0 {
				dangling += rank[i]
				continue
			}
			share := rank[i] / float64(deg)
			for _, j := range outEdges[i] {
				next[j] += share
			}
		}

		diff := 0.0
		for i := 0; i < n; i++ {
			next[i] = damping*(next[i]+dangling*teleport[i]) + (1-damping)*teleport[i]
			diff += math.Abs(next[i] - rank[i])
		}

		rank, next = next, rank
		if diff < tolerance {
			break
		}
	}

	return rank
}
