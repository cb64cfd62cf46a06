// Package rng provides the single seeded random stream the placer draws from.
package rng

import "math/rand"

// Stream is a deterministic pseudo random stream. Runs with the same seed on
// the same platform draw the same sequence.
type Stream struct {
	r *rand.Rand
}

// New creates a stream from a seed.
func New(seed int64) *Stream {
	return &Stream{r: rand.New(rand.NewSource(seed))}
}

// Float64 draws uniformly from [0, 1).
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Intn draws uniformly from [0, n). It returns 0 when n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}

	return s.r.Intn(n)
}

// IntRange draws uniformly from [lo, hi].
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}

	return lo + s.r.Intn(hi-lo+1)
}
