package scene

import (
	"math"

	"github.com/arfontalvo/solstice/pkg/material"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/shape"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Primitive is a single triangle of a part's mesh proxy, placed in world
// space by its owning instance's transform. The RT accelerator and the
// sampling accelerator each hold their own set of primitives, built from
// the RT proxy and the sampling proxy respectively (spec.md §4.5).
type Primitive struct {
	Instance      *Instance
	PartIndex     int
	TriangleIndex int
	Mesh          *shape.Mesh
	Refine        Refinable   // non-nil when the part's shape needs exact ray-hit refinement
	Project       Projectable // non-nil when an origin sampled on this primitive must be snapped onto an analytic surface
}

// PrimitiveHit is the result of a successful broad-phase-plus-refinement
// intersection against a Primitive, in world space.
type PrimitiveHit struct {
	T        float64
	Point    vecmath.Vec3
	Normal   vecmath.Vec3 // oriented toward the incoming ray
	UV       vecmath.Vec2
	Side     Side
	Primitive *Primitive
}

// Hit intersects a world-space ray against this primitive's triangle,
// refining the hit against the analytic surface when the underlying shape
// is Refinable (spec.md §4.1).
func (p *Primitive) Hit(ray vecmath.Ray, tMin, tMax float64) (PrimitiveHit, bool) {
	local := p.Instance.Transform.Inverse()
	localRay := vecmath.NewRay(local.TransformPoint(ray.Origin), local.TransformVector(ray.Direction))

	v0, v1, v2 := p.Mesh.TriangleVertices(p.TriangleIndex)
	t, u, v, ok := intersectTriangle(localRay, v0, v1, v2, tMin, tMax)
	if !ok {
		return PrimitiveHit{}, false
	}

	var localPoint, rawNormal vecmath.Vec3
	if p.Refine != nil {
		refinedPoint, refinedNormal, refinedT, refineOK := p.Refine.RefineHit(localRay, tMin, tMax, t)
		if !refineOK {
			return PrimitiveHit{}, false
		}
		localPoint, rawNormal, t = refinedPoint, refinedNormal, refinedT
	} else {
		localPoint = localRay.At(t)
		rawNormal = v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	}

	// side reflects which declared face the ray struck, judged against the
	// surface's own (unflipped) geometric normal, before that normal is
	// reoriented to face the incoming ray below.
	side := Front
	if rawNormal.Dot(localRay.Direction) >= 0 {
		side = Back
	}

	// PrimitiveHit.Normal is always oriented toward the incoming ray
	// (pkg/material/interfaces.go's Sample contract relies on this for
	// Fresnel/refraction sign, regardless of which branch produced it).
	localNormal := rawNormal
	if localNormal.Dot(localRay.Direction) > 0 {
		localNormal = localNormal.Negate()
	}

	uv := interpolateUV(p.Mesh, p.TriangleIndex, u, v)

	return PrimitiveHit{
		T:         t,
		Point:     p.Instance.Transform.TransformPoint(localPoint),
		Normal:    p.Instance.Transform.TransformNormal(localNormal),
		UV:        uv,
		Side:      side,
		Primitive: p,
	}, true
}

// BoundingBox returns the world-space axis-aligned bounding box of the
// triangle, computed from its three world-space vertices (exact for an
// affine-transformed triangle, not merely a conservative box-of-a-box).
func (p *Primitive) BoundingBox() (min, max vecmath.Vec3) {
	v0, v1, v2 := p.Mesh.TriangleVertices(p.TriangleIndex)
	w0 := p.Instance.Transform.TransformPoint(v0)
	w1 := p.Instance.Transform.TransformPoint(v1)
	w2 := p.Instance.Transform.TransformPoint(v2)
	min = vecmath.NewVec3(minOf3(w0.X, w1.X, w2.X), minOf3(w0.Y, w1.Y, w2.Y), minOf3(w0.Z, w1.Z, w2.Z))
	max = vecmath.NewVec3(maxOf3(w0.X, w1.X, w2.X), maxOf3(w0.Y, w1.Y, w2.Y), maxOf3(w0.Z, w1.Z, w2.Z))
	return min, max
}

// Area returns the primitive's world-space area: its local-space triangle
// area scaled by the instance transform's Jacobian (spec.md §4.5 "increment
// the scene's sampling-area total by the product of the instance's
// sampling-proxy area and the transform's Jacobian scale").
func (p *Primitive) Area() float64 {
	return p.Mesh.TriangleArea(p.TriangleIndex) * p.Instance.Transform.JacobianScale()
}

// SamplePoint draws a uniform point on the triangle via barycentric
// coordinates and returns it with its geometric normal and interpolated
// texture coordinate in world space (spec.md §4.4 step 1: "draw (pos,
// normal, area-weighted uv) on that primitive"). If the primitive belongs to
// a punched shape, the point is snapped onto the analytic quadric and the
// normal recomputed there before leaving instance space.
func (p *Primitive) SamplePoint(src *rng.Source) (point, normal vecmath.Vec3, uv vecmath.Vec2) {
	v0, v1, v2 := p.Mesh.TriangleVertices(p.TriangleIndex)
	u1, u2 := src.Float64(), src.Float64()
	su1 := math.Sqrt(u1)
	b0 := 1 - su1
	b1 := u2 * su1
	b2 := 1 - b0 - b1
	local := v0.Multiply(b0).Add(v1.Multiply(b1)).Add(v2.Multiply(b2))
	localNormal := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	uv = interpolateUV(p.Mesh, p.TriangleIndex, b1, b2)

	if p.Project != nil {
		local, localNormal = p.Project.ProjectPoint(local)
	}

	return p.Instance.Transform.TransformPoint(local), p.Instance.Transform.TransformNormal(localNormal), uv
}

// Material returns the part's material for the given side.
func (p *Primitive) Material(side Side) material.Material {
	part := p.Instance.Object.Parts[p.PartIndex]
	if side == Front {
		return part.FrontMaterial
	}
	return part.BackMaterial
}

func interpolateUV(m *shape.Mesh, triangle int, u, v float64) vecmath.Vec2 {
	if m.UVs == nil {
		return vecmath.Vec2{}
	}
	base := triangle * 3
	uv0 := m.UVs[m.Indices[base]]
	uv1 := m.UVs[m.Indices[base+1]]
	uv2 := m.UVs[m.Indices[base+2]]
	w := 1 - u - v
	return vecmath.NewVec2(w*uv0.X+u*uv1.X+v*uv2.X, w*uv0.Y+u*uv1.Y+v*uv2.Y)
}

// intersectTriangle is the Moeller-Trumbore ray/triangle intersection,
// grounded on the teacher's pkg/geometry/triangle.go Hit method.
func intersectTriangle(ray vecmath.Ray, v0, v1, v2 vecmath.Vec3, tMin, tMax float64) (t, u, v float64, ok bool) {
	const epsilon = 1e-8

	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(v0)
	u = f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, 0, 0, false
	}

	t = f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

func minOf3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func maxOf3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }
