// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package strategy

import (
	"math/rand/v2"
	"sync"
)

// RandSource is the only source of randomness available to strategies.
type RandSource interface {
	// Float64 returns a number in [0.0, 1.0).
	Float64() float64

	// IntN returns a number in [0, n). Panics if n <= 0.
	IntN(n int) int

	// Uniform returns a number in [lo, hi).
	Uniform(lo, hi float64) float64

	// Shuffle pseudo-randomizes the order of n elements.
	Shuffle(n int, swap func(i, j int))
}

// SeededSource is a RandSource backed by a seeded PCG generator.
//
// Thread Safety: Safe for concurrent use. Concurrent callers interleave
// draws, so reproducibility requires one source per concurrent run.
type SeededSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededSource creates a deterministic source for the given seed.
func NewSeededSource(seed int64) *SeededSource {
	s := uint64(seed)
	return &SeededSource{r: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// Float64 implements RandSource.
func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// IntN implements RandSource.
func (s *SeededSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Uniform implements RandSource.
func (s *SeededSource) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + (hi-lo)*s.r.Float64()
}

// Shuffle implements RandSource.
func (s *SeededSource) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}

// Choice returns a uniformly chosen element of items, or "" when empty.
func Choice(r RandSource, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[r.IntN(len(items))]
}

var _ RandSource = (*SeededSource)(nil)
