// Package material implements the surface BSDFs of spec.md §4.2: Dielectric,
// Mirror, Matte, ThinDielectric, and Virtual, each exposing a single sampling
// contract that the solver's random walk (pkg/solver) drives without ever
// inspecting the concrete BSDF kind.
//
// Grounded on the teacher's pkg/material/{interfaces,dielectric,metal,
// lambertian}.go for the Scatter-contract idiom and Schlick-Fresnel helpers,
// other_examples' scottlawsonbc-raytrace phys-microfacet.go.go for the
// Beckmann D/G/F microfacet formulation, and original_source/src/ssol_brdf*.c
// for the shader-callback and thin-dielectric contracts.
package material

import (
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Medium identifies one side of a dielectric interface by a name and its
// refractive index (spec.md §4.2 "Requires (outside, inside) media"). It
// carries no absorption coefficient, so a medium itself never absorbs. The
// solver compares media by value, not pointer identity, so two
// Medium values built with the same IOR are interchangeable.
type Medium struct {
	Name string
	IOR  float64
}

// Vacuum is the medium outside every object unless a scene explicitly
// declares otherwise.
var Vacuum = Medium{Name: "vacuum", IOR: 1.0}

// Shader supplies the per-fragment reflectivity and roughness a Mirror or
// Matte material queries at shading time (spec.md §4.2 "Queries shader's
// reflectivity, roughness"), mirroring ssol_brdf_reflection.c's
// brdf_reflection_setup callback contract. A ConstantShader is sufficient for
// scenes with a single uniform coating; scenes with spatially varying soiling
// or roughness maps implement Shader directly.
type Shader interface {
	Reflectivity(frag SurfaceFragment) float64
	Roughness(frag SurfaceFragment) float64
}

// ConstantShader returns the same reflectivity and roughness everywhere.
type ConstantShader struct {
	ReflectivityValue float64
	RoughnessValue    float64
}

func (s ConstantShader) Reflectivity(SurfaceFragment) float64 { return s.ReflectivityValue }
func (s ConstantShader) Roughness(SurfaceFragment) float64    { return s.RoughnessValue }

// SurfaceFragment is built at each hit from the world position, the
// incoming direction (pointing into the surface), the geometry normal
// oriented toward the incoming ray, and the optionally fetched shading
// normal and texture coordinate (spec.md §4.2 "Surface fragment").
type SurfaceFragment struct {
	Point         vecmath.Vec3
	Incoming      vecmath.Vec3 // points into the surface
	GeometryNormal vecmath.Vec3 // oriented toward the incoming ray
	ShadingNormal vecmath.Vec3 // oriented toward the incoming ray; equals GeometryNormal if unset
	TexCoord      vecmath.Vec2
}

// OrientShadingNormal transforms a raw per-vertex shading normal by the
// inverse-transpose of the primitive's placement and flips it to face the
// incoming ray's reverse, exactly as spec.md §4.2 describes: "The fetched
// shading normal is transformed by the inverse-transpose of the primitive's
// 3x4 matrix and then renormalised; if the dot product with the incoming ray
// is positive it is flipped so it always faces the incoming ray's reverse."
func OrientShadingNormal(transform vecmath.Affine, rawNormal, incoming vecmath.Vec3) vecmath.Vec3 {
	n := transform.TransformNormal(rawNormal)
	if n.Dot(incoming) > 0 {
		n = n.Negate()
	}
	return n
}

// ScatterResult is the outcome of sampling a material at a surface
// fragment (spec.md §4.2 "Sampling contract"). Reflectance is the total
// energy factor to multiply the walker weight by; it is already divided by
// PDF where applicable, so the caller never divides by PDF itself. When PDF
// is positive, the cosine of (Direction, N) is still owed and is multiplied
// in by the caller (pkg/solver) rather than by the material, matching the
// rendering-equation estimator f_r*cosTheta/pdf. A PDF of 0 marks a delta or
// non-evaluable lobe (specular reflection/refraction, or the solving
// microfacet2 variant) whose Reflectance already is the complete weight
// multiplier; the caller must not apply a further cosine factor in that
// case.
type ScatterResult struct {
	Direction   vecmath.Vec3
	Reflectance float64 // 0 <= Reflectance <= 1 for delta lobes; unbounded otherwise, cancelling against the caller's cosine multiply
	PDF         float64 // 0 for specular or non-evaluable lobes
	Specular    bool
}

// Material is the common sampling contract every BSDF variant implements.
// Sample mirrors ssol_brdf.h's brdf_sample_func_T: given the incoming
// direction and the oriented normal, draw an outgoing direction and report
// how much energy survives the bounce.
type Material interface {
	// Sample draws (wo, pdf, reflectance) per spec.md §4.2's sampling
	// contract. survives is false if the surface absorbs the ray entirely
	// (a normal path termination, not an error). err is non-nil only for an
	// invariant violation such as a medium mismatch on a Dielectric
	// (spec.md §4.2: "the hit fails with BadOperation").
	Sample(src *rng.Source, frag SurfaceFragment, incomingMedium Medium) (result ScatterResult, survives bool, err error)

	// IsVirtual reports whether this material participates in shading at
	// all. Virtual materials are a no-op for material_shade and the walker
	// must pass the ray through undeflected (spec.md §4.2 "Virtual").
	IsVirtual() bool
}
