package material

import (
	"math"

	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// beckmannEpsilon guards against division by zero for a vanishing roughness
// or a grazing cosine, matching phys.MicrofacetBRDF's clamp in
// other_examples' scottlawsonbc-raytrace phys-microfacet.go.go.
const beckmannEpsilon = 1e-4

// beckmannG1 is the Smith shadowing-masking term for a single direction,
// grounded on phys.MicrofacetBRDF.G1's rational approximation of the exact
// Beckmann G1 integral.
func beckmannG1(cosThetaV, cosThetaVH, roughness float64) float64 {
	if cosThetaV <= 0 || cosThetaVH <= 0 {
		return 0
	}
	tanThetaV := math.Sqrt(math.Max(0, 1-cosThetaV*cosThetaV)) / cosThetaV
	if tanThetaV <= 0 {
		return 1
	}
	a := 1 / (roughness * tanThetaV)
	if a >= 1.6 {
		return 1
	}
	return (3.535*a + 2.181*a*a) / (1 + 2.276*a + 2.577*a*a)
}

// sampleMicrofacetHalfVector importance-samples a microfacet normal from the
// Beckmann distribution in the local frame around n, using the standard
// inversion tan^2(theta_h) = -m^2*ln(1-u).
func sampleMicrofacetHalfVector(src *rng.Source, n vecmath.Vec3, roughness float64) vecmath.Vec3 {
	u1, u2 := src.Float64(), src.Float64()
	tan2Theta := -roughness * roughness * math.Log(1-u1)
	cosTheta := 1 / math.Sqrt(1+tan2Theta)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u2

	basis := vecmath.NewBasisFromW(n)
	local := vecmath.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
	return basis.Local(local.X, local.Y, local.Z).Normalize()
}

// sampleMicrofacet draws a rough-mirror bounce using the solving
// ("microfacet2") variant of spec.md §4.2: it samples a direction but
// reports no density for next-event estimation, acceptable because the
// solver never performs next-event estimation against this lobe. The
// returned weight folds in the Fresnel term, the joint shadowing-masking
// term, and the Jacobian of the half-vector-to-outgoing-direction change of
// variables, via the standard Cook-Torrance importance sampling identity
// f_r(wi,wo)*cosThetaO/pdf(wo) = F*G*dot(wo,h)/(cosThetaI*cosThetaH).
func sampleMicrofacet(src *rng.Source, wi, n vecmath.Vec3, roughness, reflectivity float64) (wo vecmath.Vec3, weight float64) {
	roughness = math.Max(roughness, beckmannEpsilon)
	h := sampleMicrofacetHalfVector(src, n, roughness)
	wo = vecmath.Reflect(wi, h)

	cosThetaI := math.Max(beckmannEpsilon, n.Dot(wi.Negate()))
	cosThetaH := math.Max(beckmannEpsilon, n.Dot(h))
	cosThetaO := n.Dot(wo)
	if cosThetaO <= 0 {
		return wo, 0 // sampled below the hemisphere; the bounce is absorbed
	}

	f := SchlickFresnel(math.Max(0, h.Dot(wo)), reflectivity)
	g := beckmannG1(cosThetaI, math.Max(0, h.Dot(wi.Negate())), roughness) *
		beckmannG1(cosThetaO, math.Max(0, h.Dot(wo)), roughness)

	weight = f * g * math.Max(0, h.Dot(wo)) / (cosThetaI * cosThetaH)
	if weight > 1 {
		weight = 1
	}
	return wo, weight
}
