package material

import "math"

// FresnelDielectric computes the unpolarized Fresnel reflectance at a
// dielectric-dielectric interface for incidence cosine cosThetaI (measured
// against the normal pointing into etaI's medium) crossing from refractive
// index etaI into etaT (spec.md §4.2 "Fresnel dielectric-dielectric with
// eta_i, eta_t"). Returns 1 (total internal reflection) when the transmitted
// ray does not exist.
func FresnelDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosI := clamp(cosThetaI, -1, 1)
	if cosI < 0 {
		etaI, etaT = etaT, etaI
		cosI = -cosI
	}

	sinThetaI := math.Sqrt(math.Max(0, 1-cosI*cosI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1 // total internal reflection
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))

	rParallel := (etaT*cosI - etaI*cosThetaT) / (etaT*cosI + etaI*cosThetaT)
	rPerp := (etaI*cosI - etaT*cosThetaT) / (etaI*cosI + etaT*cosThetaT)
	return (rParallel*rParallel + rPerp*rPerp) / 2
}

// SchlickFresnel approximates reflectance at normal-incidence reflectivity
// r0 using Schlick's polynomial approximation, the same helper the teacher's
// dielectric.go uses under the name Reflectance.
func SchlickFresnel(cosine, r0 float64) float64 {
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
