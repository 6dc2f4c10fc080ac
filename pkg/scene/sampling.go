package scene

import (
	"sort"

	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// SamplingAccelerator picks a primitive with probability proportional to its
// world-space area, for origin sampling (spec.md §4.4 "pick a primitive
// proportional to area, then a uniform point on it"). Unlike the RT
// accelerator this needs no spatial structure at all — area-weighted
// selection is a 1-D search over a cumulative table, the same CDF-inversion
// idiom pkg/spectrum uses for its wavelength CDF — so a flat cumulative-area
// array stands in for a BVH here rather than duplicating one.
type SamplingAccelerator struct {
	primitives []*Primitive
	cumulative []float64 // cumulative[i] = total area of primitives[0:i+1]
	totalArea  float64
}

// NewSamplingAccelerator builds the cumulative-area table over primitives
// drawn from instances' sampling proxies.
func NewSamplingAccelerator(primitives []*Primitive) *SamplingAccelerator {
	cumulative := make([]float64, len(primitives))
	var running float64
	for i, p := range primitives {
		running += p.Area()
		cumulative[i] = running
	}
	return &SamplingAccelerator{primitives: primitives, cumulative: cumulative, totalArea: running}
}

// TotalArea returns the summed world-space area of every sampled primitive,
// the denominator of the scene's origin-sampling PDF (spec.md §4.4).
func (s *SamplingAccelerator) TotalArea() float64 { return s.totalArea }

// Sample picks a primitive proportional to its area and a uniform point on
// it, returning the world-space point, geometric normal, interpolated
// texture coordinate, and the primitive itself (its instance identifies the
// primary; the primitive identifies the origin for self-intersection
// exclusion and per-primitive scoring). Returns ok=false if the accelerator
// has no area to sample from (an empty or fully-excluded scene).
func (s *SamplingAccelerator) Sample(src *rng.Source) (point, normal vecmath.Vec3, uv vecmath.Vec2, prim *Primitive, ok bool) {
	if s.totalArea <= 0 {
		return vecmath.Vec3{}, vecmath.Vec3{}, vecmath.Vec2{}, nil, false
	}
	target := src.Float64() * s.totalArea
	idx := sort.Search(len(s.cumulative), func(i int) bool { return s.cumulative[i] >= target })
	if idx == len(s.cumulative) {
		idx = len(s.cumulative) - 1
	}
	p := s.primitives[idx]

	point, normal, uv = p.SamplePoint(src)
	return point, normal, uv, p, true
}
