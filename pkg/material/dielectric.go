package material

import (
	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Dielectric is a transparent interface between two declared media (spec.md
// §4.2 "Dielectric. Requires (outside, inside) media"), built as a composite
// of specular reflection and specular transmission, each a Fresnel
// dielectric-dielectric delta lobe. Composition follows
// ssol_brdf_composite.c's brdf_composite_sample: the branch is drawn with
// probability proportional to its own Fresnel weight, and a weight-
// preserving Russian-roulette selection is used so the surviving branch
// always carries reflectance 1 (no further division is needed because the
// selection probability already absorbed the Fresnel weight).
type Dielectric struct {
	Outside, Inside Medium
}

// NewDielectric builds a Dielectric material for the given outside/inside
// media pair.
func NewDielectric(outside, inside Medium) *Dielectric {
	return &Dielectric{Outside: outside, Inside: inside}
}

func (d *Dielectric) IsVirtual() bool { return false }

func (d *Dielectric) Sample(src *rng.Source, frag SurfaceFragment, incomingMedium Medium) (ScatterResult, bool, error) {
	if incomingMedium.IOR != d.Outside.IOR {
		return ScatterResult{}, false, solverr.New(solverr.BadOperation,
			"dielectric hit with an incoming medium that does not match the material's declared outside medium")
	}

	// frag.GeometryNormal is always oriented toward the incoming ray
	// (spec.md §4.2 "Surface fragment"), so the invariant check above is
	// what fixes the entering/exiting direction: Sample is only ever
	// invoked entering from Outside into Inside.
	n := frag.GeometryNormal
	wi := frag.Incoming.Normalize()
	cosI := -wi.Dot(n)

	etaI, etaT := d.Outside.IOR, d.Inside.IOR
	r := FresnelDielectric(cosI, etaI, etaT)

	if src.Float64() < r {
		direction := vecmath.Reflect(wi, n)
		return ScatterResult{Direction: direction, Reflectance: 1, PDF: 0, Specular: true}, true, nil
	}

	direction := vecmath.Refract(wi, n, etaI/etaT)
	if direction.IsZero() {
		// Total internal reflection should already be folded into r; guard
		// against floating point edge cases at grazing incidence.
		direction = vecmath.Reflect(wi, n)
	}
	return ScatterResult{Direction: direction, Reflectance: 1, PDF: 0, Specular: true}, true, nil
}
