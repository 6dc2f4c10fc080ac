// Package rng implements the counter-based random number generator required
// by spec.md §5: "A counter-based RNG (e.g., Threefry family): the caller
// passes an initial state; the solver deterministically derives N substreams
// from it so that results are repeatable given the same seed and N."
//
// No library in the retrieval pack provides a Threefry/Philox counter-based
// generator (see DESIGN.md); this is the one package in the module built
// directly on the standard library's bit-twiddling primitives rather than a
// third-party dependency, because no suitable one exists in the ecosystem
// surfaced by the examples.
package rng

import "math"

// key/tweak-free Threefry-2x64, 13 rounds, as specified by Salmon et al.
// (2011) "Parallel Random Numbers: As Easy as 1, 2, 3". This is the minimal
// subset needed for a splittable, counter-indexed stream: given a 64-bit
// seed and a substream index, NewSource derives an independent Source.

const rounds = 13

var rotConst = [8]uint{16, 42, 12, 31, 16, 32, 24, 21}

func threefry2x64(key0, key1 uint64, ctr0, ctr1 uint64) (uint64, uint64) {
	const parity = 0x1BD11BDAA9FC1A22
	ks0, ks1, ks2 := key0, key1, key0^key1^parity

	x0, x1 := ctr0+ks0, ctr1+ks1

	rotl := func(x uint64, r uint) uint64 { return (x << r) | (x >> (64 - r)) }

	for round := 0; round < rounds; round++ {
		x0 += x1
		x1 = rotl(x1, rotConst[round%8])
		x1 ^= x0

		if round%4 == 3 {
			switch (round / 4) % 3 {
			case 0:
				x0 += ks1
				x1 += ks2 + uint64(round/4+1)
			case 1:
				x0 += ks2
				x1 += ks0 + uint64(round/4+1)
			case 2:
				x0 += ks0
				x1 += ks1 + uint64(round/4+1)
			}
		}
	}
	return x0, x1
}

// Source is a counter-based pseudorandom source. It is not safe for
// concurrent use by multiple goroutines; the solver allocates one per
// worker thread (spec.md §5).
type Source struct {
	seed    uint64
	stream  uint64
	counter uint64
}

// NewSource derives substream `stream` from seed, the way
// the solver's parallel realisation loop derives one RNG substream per
// worker thread from the caller's initial state.
func NewSource(seed uint64, stream uint64) *Source {
	return &Source{seed: seed, stream: stream, counter: 0}
}

// Uint64 returns the next 64 bits of the stream.
func (s *Source) Uint64() uint64 {
	hi, _ := threefry2x64(s.seed, s.stream, s.counter, 0)
	s.counter++
	return hi
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	// Use the top 53 bits for a full-precision mantissa, as math/rand does.
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Uint64N returns a uniform value in [0, n).
func (s *Source) Uint64N(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return s.Uint64() % n
}

// Intn returns a uniform int in [0, n).
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Uint64N(uint64(n)))
}

// Float64Range returns a uniform value in [lo, hi).
func (s *Source) Float64Range(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// Disk samples a uniform point in a disk of the given radius, returning
// (x, y) with x^2+y^2 <= radius^2.
func (s *Source) Disk(radius float64) (x, y float64) {
	r := radius * math.Sqrt(s.Float64())
	theta := 2 * math.Pi * s.Float64()
	return r * math.Cos(theta), r * math.Sin(theta)
}
