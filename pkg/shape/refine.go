package shape

import (
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// RefineHit substitutes a world-space ray into the punched surface's
// quadric in local space and solves the exact degree-2 polynomial,
// returning the refined hit closer to the broad-phase hint distance
// (spec.md §4.1 "Exact hit resolution on punched surfaces"), along with the
// analytic world-space normal.
func (p *Punched) RefineHit(ray vecmath.Ray, tMin, tMax, hint float64) (point, normal vecmath.Vec3, t float64, ok bool) {
	local := p.Quadric.Transform.Inverse()
	localOrigin := local.TransformPoint(ray.Origin)
	localDir := local.TransformVector(ray.Direction)

	t, ok = p.Quadric.Hit(localOrigin, localDir, tMin, tMax, hint)
	if !ok {
		return vecmath.Vec3{}, vecmath.Vec3{}, 0, false
	}

	localPoint := localOrigin.Add(localDir.Multiply(t))
	localNormal := p.Quadric.Gradient(localPoint).Normalize()

	point = p.Quadric.Transform.TransformPoint(localPoint)
	normal = p.Quadric.Transform.TransformNormal(localNormal)
	return point, normal, t, true
}

// ProjectPoint snaps an instance-local point sampled on the planar sampling
// proxy onto the quadric's true analytic surface and recomputes its normal
// there (spec.md §4.4 step 1). instanceLocalPoint is expressed in the same
// frame as RefineHit's ray arguments, i.e. post-quadric-placement,
// pre-instance-transform.
func (p *Punched) ProjectPoint(instanceLocalPoint vecmath.Vec3) (point, normal vecmath.Vec3) {
	inv := p.Quadric.Transform.Inverse()
	local := inv.TransformPoint(instanceLocalPoint)

	h, ok := p.Quadric.Height(local.X, local.Y)
	if !ok {
		h = local.Z
	}
	localPoint := vecmath.NewVec3(local.X, local.Y, h)
	localNormal := p.Quadric.Gradient(localPoint).Normalize()

	point = p.Quadric.Transform.TransformPoint(localPoint)
	normal = p.Quadric.Transform.TransformNormal(localNormal)
	return point, normal
}
