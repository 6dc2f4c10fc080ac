package scene

import (
	"github.com/arfontalvo/solstice/pkg/material"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Scene ties an instance list to its paired accelerators: one built from
// ray-tracing proxies for full visibility queries, one built from sampling
// proxies (area-weighted, no spatial structure) for origin sampling
// (spec.md §4.5).
type Scene struct {
	instances []*Instance

	rtPrimitives       []*Primitive
	samplingPrimitives []*Primitive

	rt       *Accelerator
	sampling *SamplingAccelerator
}

// NewScene returns an empty, unbuilt Scene. Call AttachInstance for each
// instance, then Finalize to build the accelerators.
func NewScene() *Scene {
	return &Scene{}
}

// AttachInstance adds an instance's geometry to the scene: every part's
// ray-tracing proxy always contributes primitives to the RT accelerator,
// while the sampling proxy only contributes to the sampling accelerator when
// the instance is not excluded (spec.md §4.5: an instance with Sample=false,
// or one that is materially irrelevant because every part is Virtual, is
// left out of the sampling scene but stays fully traceable).
func (s *Scene) AttachInstance(inst *Instance) {
	s.instances = append(s.instances, inst)

	samplingExcluded := inst.excludedFromSampling()

	for partIndex, part := range inst.Object.Parts {
		rtMesh, samplingMesh := part.Shape.Proxies()

		var refine Refinable
		if r, ok := part.Shape.(Refinable); ok {
			refine = r
		}
		var project Projectable
		if pr, ok := part.Shape.(Projectable); ok {
			project = pr
		}

		for tri := 0; tri < rtMesh.TriangleCount(); tri++ {
			s.rtPrimitives = append(s.rtPrimitives, &Primitive{
				Instance: inst, PartIndex: partIndex, TriangleIndex: tri, Mesh: rtMesh, Refine: refine,
			})
		}

		if samplingExcluded {
			continue
		}
		// The sampling proxy is a planar stand-in even for a curved punched
		// surface, so a point sampled on it still needs Project to land on
		// the true quadric; it never needs RefineHit, since it is never
		// ray-hit tested.
		for tri := 0; tri < samplingMesh.TriangleCount(); tri++ {
			s.samplingPrimitives = append(s.samplingPrimitives, &Primitive{
				Instance: inst, PartIndex: partIndex, TriangleIndex: tri, Mesh: samplingMesh, Project: project,
			})
		}
	}
}

// Finalize builds the RT and sampling accelerators from every attached
// instance. The scene is immutable for the duration of a solve afterward
// (spec.md §5).
func (s *Scene) Finalize() {
	s.rt = NewAccelerator(s.rtPrimitives)
	s.sampling = NewSamplingAccelerator(s.samplingPrimitives)
}

// Instances returns the attached instances in attachment order.
func (s *Scene) Instances() []*Instance { return s.instances }

// SamplingArea returns the sampling scene's total area, the denominator of
// the origin-sampling PDF (spec.md §4.4).
func (s *Scene) SamplingArea() float64 { return s.sampling.TotalArea() }

// SampleOrigin picks an area-weighted origin for a realisation, returning the
// world-space point, geometric normal, interpolated texture coordinate, and
// the sampling primitive it landed on (spec.md §4.4 step 1).
func (s *Scene) SampleOrigin(src *rng.Source) (point, normal vecmath.Vec3, uv vecmath.Vec2, prim *Primitive, ok bool) {
	return s.sampling.Sample(src)
}

// RayQuery carries the per-query state the hit filter of spec.md §4.1
// resolves: which primitive/side the ray left from (for self-intersection
// rejection) and whether virtual materials should be transparent to this
// ray (shadow and drafting rays do; primary and scatter rays do not).
type RayQuery struct {
	From           *Primitive
	FromSide       Side
	DiscardVirtual bool
}

func (q RayQuery) filter() HitFilter {
	return func(hit PrimitiveHit) bool {
		if q.From != nil && hit.Primitive == q.From && hit.Side == q.FromSide {
			return false
		}
		if q.DiscardVirtual && materialAt(hit) != nil && materialAt(hit).IsVirtual() {
			return false
		}
		return true
	}
}

func materialAt(hit PrimitiveHit) material.Material {
	return hit.Primitive.Material(hit.Side)
}

// Trace queries the RT accelerator for the closest hit within
// [tMin, tMax] that survives the query's hit filter.
func (s *Scene) Trace(ray vecmath.Ray, tMin, tMax float64, query RayQuery) (PrimitiveHit, bool) {
	return s.rt.Hit(ray, tMin, tMax, query.filter())
}

// Occluded is a convenience wrapper over Trace for shadow rays: it reports
// whether anything opaque lies within [tMin, tMax], discarding virtual
// materials per spec.md §4.1.
func (s *Scene) Occluded(ray vecmath.Ray, tMin, tMax float64, from *Primitive, fromSide Side) bool {
	_, hit := s.Trace(ray, tMin, tMax, RayQuery{From: from, FromSide: fromSide, DiscardVirtual: true})
	return hit
}
