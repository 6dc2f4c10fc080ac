package quadric

import (
	"math"

	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Coeffs holds the a*t^2+b*t+c=0 polynomial obtained by substituting a
// local-space ray into the quadric's implicit equation.
type Coeffs struct {
	A, B, C float64
}

// ImplicitCoeffs substitutes the local-space ray origin+t*direction into the
// quadric's implicit equation and returns the resulting quadratic
// coefficients (spec.md §4.1).
func (q *Quadric) ImplicitCoeffs(origin, direction vecmath.Vec3) Coeffs {
	switch q.Kind {
	case Plane:
		return Coeffs{A: 0, B: direction.Z, C: origin.Z}
	case Parabol:
		f := q.parabol.focal
		return Coeffs{
			A: direction.X*direction.X + direction.Y*direction.Y,
			B: 2*(origin.X*direction.X+origin.Y*direction.Y) - 4*f*direction.Z,
			C: origin.X*origin.X + origin.Y*origin.Y - 4*f*origin.Z,
		}
	case ParabolicCylinder:
		f := q.parabolicCylinder.focal
		return Coeffs{
			A: direction.Y * direction.Y,
			B: 2*origin.Y*direction.Y - 4*f*direction.Z,
			C: origin.Y*origin.Y - 4*f*origin.Z,
		}
	case Hemisphere:
		r := q.hemisphere.radius
		// (x^2+y^2+z^2) - 2*r*z == 0, the implicit sphere of radius r
		// centred at (0,0,r) that the hemisphere height function traces.
		cz := origin.Z - r
		dz := direction.Z
		return Coeffs{
			A: direction.Dot(direction),
			B: 2 * (origin.X*direction.X + origin.Y*direction.Y + cz*dz),
			C: origin.X*origin.X + origin.Y*origin.Y + cz*cz - r*r,
		}
	case Hyperbol:
		h := q.hyperbol
		zTerm := origin.Z + h.z0 - (h.realFocal+h.imgFocal)/2
		return Coeffs{
			A: (direction.X*direction.X+direction.Y*direction.Y)/h.a2 - direction.Z*direction.Z/h.b2,
			B: 2*(origin.X*direction.X+origin.Y*direction.Y)/h.a2 - 2*zTerm*direction.Z/h.b2,
			C: (origin.X*origin.X+origin.Y*origin.Y)/h.a2 - zTerm*zTerm/h.b2 + 1,
		}
	}
	return Coeffs{}
}

// SolveQuadratic solves a*t^2+b*t+c=0 using the numerically stable
// formulation of spec.md §4.1:
//
//	t1 = (-b - sign(b)*sqrt(delta)) / (2a); t2 = c/(a*t1)
//
// returning both roots (sorted ascending) when real roots exist.
func SolveQuadratic(a, b, c float64) (t0, t1 float64, ok bool) {
	if a == 0 {
		if b == 0 {
			return 0, 0, false
		}
		t := -c / b
		return t, t, true
	}
	delta := b*b - 4*a*c
	if delta < 0 {
		return 0, 0, false
	}
	sqrtDelta := math.Sqrt(delta)
	sign := 1.0
	if b < 0 {
		sign = -1.0
	}
	q := -0.5 * (b + sign*sqrtDelta)
	r0 := q / a
	var r1 float64
	if q != 0 {
		r1 = c / q
	} else {
		r1 = r0
	}
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	return r0, r1, true
}

// Hit refines a broad-phase hit hint distance into an exact ray/quadric
// intersection. Of the two roots, the one closest to hint is returned
// (spec.md §4.1: "return the one closest to the broad-phase hint
// distance").
func (q *Quadric) Hit(origin, direction vecmath.Vec3, tMin, tMax, hint float64) (t float64, ok bool) {
	coeffs := q.ImplicitCoeffs(origin, direction)
	r0, r1, solved := SolveQuadratic(coeffs.A, coeffs.B, coeffs.C)
	if !solved {
		return 0, false
	}

	valid0 := r0 >= tMin && r0 <= tMax
	valid1 := r1 >= tMin && r1 <= tMax
	switch {
	case valid0 && valid1:
		if math.Abs(r0-hint) <= math.Abs(r1-hint) {
			return r0, true
		}
		return r1, true
	case valid0:
		return r0, true
	case valid1:
		return r1, true
	default:
		return 0, false
	}
}

// Gradient returns the (unnormalised) analytic gradient of the quadric's
// implicit function at a local-space point, used to derive the exact
// surface normal (spec.md §4.1).
func (q *Quadric) Gradient(p vecmath.Vec3) vecmath.Vec3 {
	switch q.Kind {
	case Plane:
		return vecmath.NewVec3(0, 0, 1)
	case Parabol:
		f := q.parabol.focal
		return vecmath.NewVec3(2*p.X, 2*p.Y, -4*f)
	case ParabolicCylinder:
		f := q.parabolicCylinder.focal
		return vecmath.NewVec3(0, 2*p.Y, -4*f)
	case Hemisphere:
		// The implicit function x^2+y^2+(z-r)^2-r^2 has gradient
		// (2x,2y,2(z-r)), which points from the sphere's centre (0,0,r)
		// outward through the point — but that is inward with respect to
		// the hemisphere's bowl (spec.md §3: "normal pointing outward along
		// +z at the pole", i.e. toward the centre). Negate it.
		r := q.hemisphere.radius
		return vecmath.NewVec3(-2*p.X, -2*p.Y, 2*(r-p.Z))
	case Hyperbol:
		h := q.hyperbol
		zTerm := p.Z + h.z0 - (h.realFocal+h.imgFocal)/2
		return vecmath.NewVec3(2*p.X/h.a2, 2*p.Y/h.a2, -2*zTerm/h.b2)
	}
	return vecmath.Vec3{}
}

// Height evaluates the quadric's z=h(x,y) height function, used to lift the
// punched surface's sampling-proxy vertices onto the curved RT proxy
// (spec.md §3/§4.1). Hyperbol has two height branches (near/far sheet); this
// returns the branch nearer z=0, which is the sheet solstice scenes place
// facing the sampled contour.
func (q *Quadric) Height(x, y float64) (float64, bool) {
	switch q.Kind {
	case Plane:
		return 0, true
	case Parabol:
		f := q.parabol.focal
		return (x*x + y*y) / (4 * f), true
	case ParabolicCylinder:
		f := q.parabolicCylinder.focal
		return (y * y) / (4 * f), true
	case Hemisphere:
		r := q.hemisphere.radius
		rad := r*r - x*x - y*y
		if rad < 0 {
			return 0, false
		}
		return r - math.Sqrt(rad), true
	case Hyperbol:
		h := q.hyperbol
		radial := (x*x + y*y) / h.a2
		b2term := h.b2 * (1 + radial)
		if b2term < 0 {
			return 0, false
		}
		zTerm := math.Sqrt(b2term) // sheet through the local origin
		return zTerm - h.z0 + (h.realFocal+h.imgFocal)/2, true
	}
	return 0, false
}
