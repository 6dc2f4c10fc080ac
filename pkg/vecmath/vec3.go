// Package vecmath provides the 3D vector, ray, and affine-transform algebra
// shared by every solstice package. It is grounded on the teacher's
// pkg/core/vec3.go and pkg/math/vec3.go, kept to the same method-per-op
// idiom and merged into a single package since solstice has no render-vs-math
// split to preserve.
package vecmath

import (
	"fmt"
	"math"
)

// Vec3 represents a 3D vector or point.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 represents a 2D vector, used for texcoords and carving vertices.
type Vec2 struct {
	X, Y float64
}

func NewVec3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }
func NewVec2(x, y float64) Vec2    { return Vec2{X: x, Y: y} }

func (v Vec3) String() string {
	return fmt.Sprintf("{%.6g, %.6g, %.6g}", v.X, v.Y, v.Z)
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Multiply(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Add returns the sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Subtract returns the difference of two vectors.
func (v Vec3) Subtract(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Multiply returns the vector scaled by a scalar.
func (v Vec3) Multiply(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// MultiplyVec returns the component-wise product of two vectors.
func (v Vec3) MultiplyVec(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Length returns the magnitude of the vector.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// LengthSquared returns the squared magnitude of the vector.
func (v Vec3) LengthSquared() float64 { return v.Dot(v) }

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// AbsDot returns the absolute value of the dot product.
func (v Vec3) AbsDot(o Vec3) float64 { return math.Abs(v.Dot(o)) }

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns a unit vector in the same direction, or the zero vector
// for a zero-length input.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Multiply(1 / l)
}

// Negate returns the negation of the vector.
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// IsZero reports whether the vector is exactly zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Equals compares two vectors with a small floating-point tolerance.
func (v Vec3) Equals(o Vec3) bool {
	const tol = 1e-9
	return math.Abs(v.X-o.X) < tol && math.Abs(v.Y-o.Y) < tol && math.Abs(v.Z-o.Z) < tol
}

// Clamp clamps every component to [lo, hi].
func (v Vec3) Clamp(lo, hi float64) Vec3 {
	return Vec3{clampf(v.X, lo, hi), clampf(v.Y, lo, hi), clampf(v.Z, lo, hi)}
}

func clampf(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Reflect reflects v about a surface with normal n (n need not be unit but
// usually is): r = v - 2*dot(v,n)*n.
func Reflect(v, n Vec3) Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract refracts the unit vector uv across a surface with normal n given
// the ratio etaiOverEtat = eta_incident / eta_transmitted, using Snell's law.
// Caller must have already checked for total internal reflection.
func Refract(uv, n Vec3, etaiOverEtat float64) Vec3 {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Basis is an orthonormal frame built around a main direction, used to
// rotate sun-direction samples drawn in a local +Z cone out to world space.
type Basis struct {
	U, V, W Vec3 // W is the main direction
}

// NewBasisFromW builds an orthonormal basis with W as the given (assumed
// unit) direction, choosing U/V by the classic "pick a non-parallel helper
// axis" construction.
func NewBasisFromW(w Vec3) Basis {
	w = w.Normalize()
	helper := Vec3{X: 1, Y: 0, Z: 0}
	if math.Abs(w.X) > 0.9 {
		helper = Vec3{X: 0, Y: 1, Z: 0}
	}
	u := helper.Cross(w).Normalize()
	v := w.Cross(u)
	return Basis{U: u, V: v, W: w}
}

// Local transforms a local-frame vector (x, y, z) into world space.
func (b Basis) Local(x, y, z float64) Vec3 {
	return b.U.Multiply(x).Add(b.V.Multiply(y)).Add(b.W.Multiply(z))
}
