package sun

import (
	"math"

	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Buie sunshape constants (spec.md §4.3, Buie, Monger & Dey 2003).
const (
	thetaSD = 4.65e-3 // rad
	thetaCS = 4.36e-2 // rad
	constA  = 9.224724736098827e-6
)

// buieParams precomputes the per-CSR constants of the Buie PDF: chi, gamma,
// k, the normalisation alpha, and the two-rectangle rejection envelope.
type buieParams struct {
	chi     float64
	gamma   float64
	k       float64
	alpha   float64
	height1 float64 // rejection envelope height on [0, thetaSD]
	height2 float64 // rejection envelope height on [thetaSD, thetaCS]
	area1   float64
	area2   float64
}

// chiOfCSR evaluates the piecewise-polynomial fit of the circumsolar ratio
// used to convert a user-facing CSR into the Buie distribution's internal
// chi parameter (Buie, Monger & Dey 2003, fitted coefficients).
func chiOfCSR(csr float64) float64 {
	switch {
	case csr > 0.145:
		return -0.04419909985804843 + csr*(1.401323894233574+csr*(-0.3639746714505299+csr*(-0.9579768560161194+1.1550475450828657*csr)))
	case csr > 0.035:
		return 0.022652077593662934 + csr*(0.5252380349996234+(2.5484334534423887-0.8763755326550412*csr)*csr)
	default:
		return 0.004733749294807862 + csr*(4.716738065192151+csr*(-463.506669149804+csr*(24745.88727411664+csr*(-606122.7511711778+5521693.445014727*csr))))
	}
}

func newBuieParams(csr float64) (*buieParams, error) {
	if csr <= 0 || csr > 0.849 {
		return nil, solverr.New(solverr.BadArgument, "buie CSR out of range")
	}
	chi := chiOfCSR(csr)

	gamma := 2.2*math.Log(0.52*chi)*math.Pow(chi, 0.43) - 0.1
	k := 0.9*math.Log(13.5*chi)*math.Pow(chi, -0.3)

	b := math.Exp(k) * math.Pow(1000, gamma) / (gamma + 2) *
		(math.Pow(thetaCS, gamma+2) - math.Pow(thetaSD, gamma+2))
	alpha := 1 / (constA + b)

	p := &buieParams{chi: chi, gamma: gamma, k: k, alpha: alpha}

	// 0.0038915695846209047 rad is the fixed zenith angle at which pdfTheta
	// peaks, independent of CSR; used only to size the rectangle-1 envelope.
	p.height1 = 1.001 * p.pdfTheta(0.0038915695846209047)
	p.height2 = p.pdfTheta(thetaSD)
	p.area1 = p.height1 * thetaSD
	p.area2 = p.height2 * (thetaCS - thetaSD)
	return p, nil
}

// phi evaluates the un-normalised Buie radial profile at zenith angle theta.
func (p *buieParams) phi(theta float64) float64 {
	if theta < thetaSD {
		return math.Cos(326*theta) / math.Cos(308*theta)
	}
	return math.Exp(p.k) * math.Pow(1000*theta, p.gamma)
}

// pdfTheta evaluates the normalised Buie PDF at theta, including the
// sin(theta) solid-angle weighting factor (spec.md §4.3).
func (p *buieParams) pdfTheta(theta float64) float64 {
	return p.alpha * p.phi(theta) * math.Sin(theta)
}

func (s *Sun) sampleBuie(src *rng.Source) vecmath.Vec3 {
	p := s.buie
	theta := p.sampleTheta(src)
	phi := 2 * math.Pi * src.Float64()

	sinTheta := math.Sin(theta)
	x := sinTheta * math.Cos(phi)
	y := sinTheta * math.Sin(phi)
	z := math.Cos(theta)
	return s.basis.Local(x, y, z)
}

// sampleTheta draws a zenith angle by acceptance-rejection against the
// two-rectangle composite envelope of spec.md §4.3.
func (p *buieParams) sampleTheta(src *rng.Source) float64 {
	for {
		useFirst := src.Float64() < p.area1/(p.area1+p.area2)
		var theta, height float64
		if useFirst {
			theta = src.Float64Range(0, thetaSD)
			height = p.height1
		} else {
			theta = src.Float64Range(thetaSD, thetaCS)
			height = p.height2
		}
		y := src.Float64Range(0, height)
		if y <= p.pdfTheta(theta) {
			return theta
		}
	}
}
