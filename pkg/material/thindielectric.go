package material

import (
	"math"

	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// ThinDielectric is a thin-film specular BxDF parameterised by the outside
// medium's refractive index, the slab's refractive index and absorptivity,
// and the slab thickness (spec.md §4.2 "ThinDielectric. A thin-film
// specular BxDF parameterised by (outside eta, slab eta, slab absorptivity,
// slab thickness)"), grounded on ssol_material.c's setup_thin_dielectric_bsdf
// (ssf_thin_specular_dielectric_setup). Because the slab is thin relative to
// the scene scale, a transmitted ray is not laterally displaced: it
// continues along the incoming direction, attenuated by the Beer's-law
// absorption of a single pass through the slab (thickness / cos of the
// incidence angle).
type ThinDielectric struct {
	Outside          Medium
	SlabIOR          float64
	SlabAbsorptivity float64 // per-unit-length absorption coefficient
	Thickness        float64
}

// NewThinDielectric builds a ThinDielectric material.
func NewThinDielectric(outside Medium, slabIOR, slabAbsorptivity, thickness float64) *ThinDielectric {
	return &ThinDielectric{Outside: outside, SlabIOR: slabIOR, SlabAbsorptivity: slabAbsorptivity, Thickness: thickness}
}

func (t *ThinDielectric) IsVirtual() bool { return false }

func (t *ThinDielectric) Sample(src *rng.Source, frag SurfaceFragment, incomingMedium Medium) (ScatterResult, bool, error) {
	n := frag.GeometryNormal
	wi := frag.Incoming.Normalize()
	cosI := -wi.Dot(n)

	r := FresnelDielectric(cosI, t.Outside.IOR, t.SlabIOR)
	// A thin slab reflects off both faces; the classic thin-film composite
	// reflectance (ignoring interference) is r' = r + (1-r)^2*r/(1-r^2) =
	// 2r/(1+r), which saturates at 1 as r -> 1.
	rThin := 2 * r / (1 + r)

	if src.Float64() < rThin {
		direction := vecmath.Reflect(wi, n)
		return ScatterResult{Direction: direction, Reflectance: 1, PDF: 0, Specular: true}, true, nil
	}

	pathLength := t.Thickness / math.Max(cosI, 1e-6)
	transmittance := math.Exp(-t.SlabAbsorptivity * pathLength)
	if src.Float64() >= transmittance {
		return ScatterResult{}, false, nil // absorbed in the slab
	}
	return ScatterResult{Direction: wi, Reflectance: 1, PDF: 0, Specular: true}, true, nil
}
