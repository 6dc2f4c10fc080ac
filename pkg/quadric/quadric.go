// Package quadric implements the five analytic quadric surfaces of
// spec.md §3/§4.1: exact implicit evaluation, analytic gradient/normal, and
// the stable quadratic-root solver used to refine a broad-phase triangle hit
// into an exact ray/quadric intersection.
//
// Grounded on original_source/src/ssol_quadric.c for the per-case
// constructors and parameter validation. All five cases share this file
// (constructors, NSteps) and implicit.go (implicit form, gradient, height),
// each dispatching on Kind.
package quadric

import (
	"math"

	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Kind tags the quadric variant.
type Kind int

const (
	Plane Kind = iota
	Parabol
	Hyperbol
	ParabolicCylinder
	Hemisphere
)

// Quadric is a tagged-variant analytic surface in local space, placed in
// world space by an affine transform (spec.md §3).
type Quadric struct {
	Kind      Kind
	Transform vecmath.Affine
	NStepsHint int // 0 = no hint; use curvature-derived default

	parabol           parabolParams
	hyperbol          hyperbolParams
	parabolicCylinder parabolicCylinderParams
	hemisphere        hemisphereParams
}

type parabolParams struct{ focal float64 }
type parabolicCylinderParams struct{ focal float64 }
type hemisphereParams struct{ radius float64 }
type hyperbolParams struct {
	realFocal, imgFocal float64
	a2, b2, z0          float64
}

// NewPlane builds a z=0 plane quadric.
func NewPlane(transform vecmath.Affine) *Quadric {
	return &Quadric{Kind: Plane, Transform: transform}
}

// NewParabol builds a paraboloid x^2+y^2-4*focal*z=0.
func NewParabol(focal float64, transform vecmath.Affine) (*Quadric, error) {
	if focal <= 0 {
		return nil, solverr.New(solverr.BadArgument, "parabol focal length must be positive")
	}
	return &Quadric{Kind: Parabol, Transform: transform, parabol: parabolParams{focal: focal}}, nil
}

// NewParabolicCylinder builds y^2-4*focal*z=0.
func NewParabolicCylinder(focal float64, transform vecmath.Affine) (*Quadric, error) {
	if focal <= 0 {
		return nil, solverr.New(solverr.BadArgument, "parabolic cylinder focal length must be positive")
	}
	return &Quadric{Kind: ParabolicCylinder, Transform: transform, parabolicCylinder: parabolicCylinderParams{focal: focal}}, nil
}

// NewHemisphere builds z=radius-sqrt(radius^2-x^2-y^2).
func NewHemisphere(radius float64, transform vecmath.Affine) (*Quadric, error) {
	if radius <= 0 {
		return nil, solverr.New(solverr.BadArgument, "hemisphere radius must be positive")
	}
	return &Quadric{Kind: Hemisphere, Transform: transform, hemisphere: hemisphereParams{radius: radius}}, nil
}

// NewHyperbol builds the two-sheet hyperboloid parameterised by
// (realFocal, imgFocal) per spec.md §3:
//
//	g = real+img, f = real/g, a^2 = g^2(f-f^2), b = g*|f-1/2|, z0 = g/2+b
//	(x^2+y^2)/a^2 - (z+z0-g/2)^2/b^2 + 1 = 0
func NewHyperbol(realFocal, imgFocal float64, transform vecmath.Affine) (*Quadric, error) {
	if realFocal <= 0 || imgFocal <= 0 {
		return nil, solverr.New(solverr.BadArgument, "hyperbol focal lengths must be positive")
	}
	g := realFocal + imgFocal
	f := realFocal / g
	a2 := g * g * (f - f*f)
	b := g * math.Abs(f-0.5)
	z0 := g/2 + b
	return &Quadric{
		Kind:      Hyperbol,
		Transform: transform,
		hyperbol: hyperbolParams{
			realFocal: realFocal, imgFocal: imgFocal,
			a2: a2, b2: b * b, z0: z0,
		},
	}, nil
}

// NSteps returns a heuristic discretisation step count for seeding the
// punched surface's triangulation: 3+6*sqrt(maxZ) clamped to 50, unless an
// explicit hint was set (spec.md §4.1).
func (q *Quadric) NSteps(maxZ float64) int {
	if q.NStepsHint > 0 {
		return q.NStepsHint
	}
	n := int(3 + 6*math.Sqrt(math.Max(0, maxZ)))
	if n < 3 {
		n = 3
	}
	if n > 50 {
		n = 50
	}
	return n
}
