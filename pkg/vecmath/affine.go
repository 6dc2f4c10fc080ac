package vecmath

import (
	"gonum.org/v1/gonum/mat"
)

// Affine is a 3x4 affine transform: a 3x3 linear part (rotation/scale/shear)
// plus a translation. Quadrics (spec.md §3), shapes, and instances each carry
// one of these to place their object-local geometry in world space.
//
// The linear part is backed by a gonum mat.Dense so that the inverse
// transpose needed for normal transformation reuses gonum's LU-based
// inverse rather than a hand-rolled 3x3 cofactor expansion.
type Affine struct {
	linear      *mat.Dense // 3x3
	translation Vec3
}

// Identity returns the identity affine transform.
func Identity() Affine {
	return NewAffine(mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}), Vec3{})
}

// NewAffine builds an Affine from a 3x3 linear part and a translation. The
// linear matrix is copied so later mutation of the caller's matrix does not
// alias this transform.
func NewAffine(linear *mat.Dense, translation Vec3) Affine {
	var cp mat.Dense
	cp.CloneFrom(linear)
	return Affine{linear: &cp, translation: translation}
}

// Translation returns the translation component.
func (a Affine) Translation() Vec3 { return a.translation }

// TransformPoint maps a local-space point into world space.
func (a Affine) TransformPoint(p Vec3) Vec3 {
	return a.applyLinear(p).Add(a.translation)
}

// TransformVector maps a local-space direction/vector into world space
// (no translation applied).
func (a Affine) TransformVector(v Vec3) Vec3 {
	return a.applyLinear(v)
}

func (a Affine) applyLinear(v Vec3) Vec3 {
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(a.linear, in)
	return Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// InverseTranspose returns the inverse-transpose of the linear part, used to
// transform normals (spec.md §4.1: "Transform hit point and normal back into
// world space via the quadric's rotation (inverse-transpose for normals)").
// Panics if the linear part is singular, which would mean the instance or
// quadric was set up with a degenerate transform — an Unreachable-class
// invariant violation the caller should never produce.
func (a Affine) InverseTranspose() *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(a.linear); err != nil {
		panic("vecmath: singular affine transform has no inverse-transpose")
	}
	return inv.T().(*mat.Dense)
}

// TransformNormal maps a local-space normal into world space using the
// inverse-transpose of the linear part, then renormalizes.
func (a Affine) TransformNormal(n Vec3) Vec3 {
	it := a.InverseTranspose()
	in := mat.NewVecDense(3, []float64{n.X, n.Y, n.Z})
	var out mat.VecDense
	out.MulVec(it, in)
	return Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}.Normalize()
}

// JacobianScale returns the absolute determinant of the linear part, the
// Jacobian scale factor used when accumulating a transformed shape's area
// into the sampling scene's total (spec.md §4.5).
func (a Affine) JacobianScale() float64 {
	det := mat.Det(a.linear)
	if det < 0 {
		det = -det
	}
	return det
}

// Inverse returns the affine transform that undoes a. Panics on a singular
// linear part, the same Unreachable-class invariant as InverseTranspose.
func (a Affine) Inverse() Affine {
	var inv mat.Dense
	if err := inv.Inverse(a.linear); err != nil {
		panic("vecmath: singular affine transform has no inverse")
	}
	negTranslation := mat.NewVecDense(3, []float64{-a.translation.X, -a.translation.Y, -a.translation.Z})
	var t mat.VecDense
	t.MulVec(&inv, negTranslation)
	return NewAffine(&inv, Vec3{X: t.AtVec(0), Y: t.AtVec(1), Z: t.AtVec(2)})
}

// Compose returns the affine transform equivalent to first applying inner
// then outer (outer ∘ inner), used to place a quadric's object-local
// placement inside an instance's world transform.
func Compose(outer, inner Affine) Affine {
	var linear mat.Dense
	linear.Mul(outer.linear, inner.linear)
	translation := outer.applyLinear(inner.translation).Add(outer.translation)
	return NewAffine(&linear, translation)
}
