package material

import (
	"math"

	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Matte is a Lambertian reflector using the shader's reflectivity as its
// albedo (spec.md §4.2 "Matte. Lambertian reflection with the shader's
// reflectivity"), grounded on the teacher's Lambertian.Scatter for the
// cosine-weighted hemisphere sampling idiom.
type Matte struct {
	Shader Shader
}

// NewMatte builds a Matte material backed by the given shader.
func NewMatte(shader Shader) *Matte {
	return &Matte{Shader: shader}
}

// minCosine guards against a near-zero cosine blowing up the reflectance
// ratio into numerical noise.
const minCosine = 1e-6

func (m *Matte) IsVirtual() bool { return false }

func (m *Matte) Sample(src *rng.Source, frag SurfaceFragment, incomingMedium Medium) (ScatterResult, bool, error) {
	n := frag.GeometryNormal
	albedo := m.Shader.Reflectivity(frag)

	direction := cosineWeightedHemisphere(src, n)
	cosTheta := direction.Dot(n)
	if cosTheta <= minCosine {
		return ScatterResult{}, false, nil
	}
	pdf := cosTheta / math.Pi

	// Per spec.md §4.2, Reflectance is the BRDF already divided by pdf, with
	// the cosine(wo,N) term left for the caller to multiply in separately.
	// For a Lambertian lobe under cosine-weighted sampling this is
	// (albedo/pi)/(cosTheta/pi) = albedo/cosTheta, which exceeds 1 for
	// grazing directions but cancels exactly once the caller's cosine
	// multiplication is applied, leaving the physical albedo.
	reflectance := albedo / cosTheta
	return ScatterResult{Direction: direction, Reflectance: reflectance, PDF: pdf, Specular: false}, true, nil
}

// cosineWeightedHemisphere draws a cosine-weighted direction in the
// hemisphere around n via Malley's method (disk sample lifted by the
// Pythagorean identity), the same construction as the teacher's
// core.RandomCosineDirection.
func cosineWeightedHemisphere(src *rng.Source, n vecmath.Vec3) vecmath.Vec3 {
	x, y := src.Disk(1)
	z := math.Sqrt(math.Max(0, 1-x*x-y*y))
	basis := vecmath.NewBasisFromW(n)
	return basis.Local(x, y, z).Normalize()
}
