// Package sun implements the sun direction and wavelength samplers of
// spec.md §3/§4.3: a Dirac/PillBox/Buie sunshape around a main direction,
// and a piecewise-linear wavelength distribution built from the sun's
// spectrum.
//
// Grounded on spec.md §4.3's literal formulas (the constants and rejection
// envelope for the Buie circumsolar model), and on aclements-shade/sunpos.go
// for the idiom of a dense astronomy-flavoured file paired with its own
// _test.go.
package sun

import (
	"math"

	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/spectrum"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Kind tags the sun direction distribution variant.
type Kind int

const (
	Directional Kind = iota
	PillBox
	Buie
)

// Sun is the scene's sun: a direction distribution, DNI, and a sampling
// spectrum (spec.md §3).
type Sun struct {
	Kind          Kind
	MainDirection vecmath.Vec3 // unit vector, from sun toward scene
	DNI           float64      // W/m^2, > 0
	Spectrum      *spectrum.Spectrum
	HalfAngle     float64 // PillBox only, radians
	CSR           float64 // Buie only, circumsolar ratio in (0, 0.849]

	basis    vecmath.Basis
	buie     *buieParams
	cdf      []float64 // cumulative wavelength distribution, len == spectrum.Len()
	dirac    bool      // wavelength sampling degenerates to Dirac
	diracWL  float64
}

// New validates and builds a Sun. DNI must be > 0; PillBox requires
// HalfAngle > 0; Buie requires CSR in (0, 0.849].
func New(kind Kind, mainDirection vecmath.Vec3, dni float64, spec *spectrum.Spectrum, halfAngle, csr float64) (*Sun, error) {
	if dni <= 0 {
		return nil, solverr.New(solverr.BadArgument, "sun DNI must be positive")
	}
	if spec == nil {
		return nil, solverr.New(solverr.BadArgument, "sun requires a sampling spectrum")
	}
	if mainDirection.IsZero() {
		return nil, solverr.New(solverr.BadArgument, "sun main direction must be non-zero")
	}

	s := &Sun{
		Kind:          kind,
		MainDirection: mainDirection.Normalize(),
		DNI:           dni,
		Spectrum:      spec,
		HalfAngle:     halfAngle,
		CSR:           csr,
		basis:         vecmath.NewBasisFromW(mainDirection),
	}

	switch kind {
	case Directional:
	case PillBox:
		if halfAngle <= 0 {
			return nil, solverr.New(solverr.BadArgument, "pillbox half-angle must be positive")
		}
	case Buie:
		if csr <= 0 || csr > 0.849 {
			return nil, solverr.New(solverr.BadArgument, "buie CSR must be in (0, 0.849]")
		}
		p, err := newBuieParams(csr)
		if err != nil {
			return nil, err
		}
		s.buie = p
	default:
		return nil, solverr.New(solverr.BadArgument, "unknown sun direction kind")
	}

	s.setupWavelengthCDF()
	return s, nil
}

func (s *Sun) setupWavelengthCDF() {
	if s.Spectrum.Len() == 1 {
		s.dirac = true
		samples := s.Spectrum.Samples()
		s.diracWL = samples[0].Wavelength
		return
	}
	areas := s.Spectrum.CumulativeArea()
	total := areas[len(areas)-1]
	s.cdf = make([]float64, len(areas))
	if total <= 0 {
		// Degenerate all-zero intensity: fall back to uniform over samples.
		n := len(areas)
		for i := range s.cdf {
			s.cdf[i] = float64(i) / float64(n-1)
		}
		return
	}
	for i, a := range areas {
		s.cdf[i] = a / total
	}
}

// SampleWavelength draws a wavelength from the sun's spectrum by inverting
// its piecewise-linear CDF (trapezoidal area), degenerating to a Dirac
// delta for a single-sample spectrum (spec.md §4.3).
func (s *Sun) SampleWavelength(src *rng.Source) float64 {
	if s.dirac {
		return s.diracWL
	}
	samples := s.Spectrum.Samples()
	u := src.Float64()

	// Find the CDF bracket containing u.
	idx := 0
	for idx < len(s.cdf)-1 && s.cdf[idx+1] < u {
		idx++
	}
	lo, hi := idx, idx+1
	if hi >= len(s.cdf) {
		return samples[len(samples)-1].Wavelength
	}
	cdfLo, cdfHi := s.cdf[lo], s.cdf[hi]
	if cdfHi <= cdfLo {
		return samples[lo].Wavelength
	}
	t := (u - cdfLo) / (cdfHi - cdfLo)
	wlLo, wlHi := samples[lo].Wavelength, samples[hi].Wavelength
	return wlLo + t*(wlHi-wlLo)
}

// SampleDirection draws a sun direction according to the configured
// sunshape, returning a unit vector pointing from the sun toward the scene.
func (s *Sun) SampleDirection(src *rng.Source) vecmath.Vec3 {
	switch s.Kind {
	case Directional:
		return s.MainDirection
	case PillBox:
		return s.samplePillBox(src)
	case Buie:
		return s.sampleBuie(src)
	default:
		return s.MainDirection
	}
}

func (s *Sun) samplePillBox(src *rng.Source) vecmath.Vec3 {
	radius := math.Tan(s.HalfAngle / 2)
	x, y := src.Disk(radius)
	local := vecmath.NewVec3(x, y, 1).Normalize()
	return s.basis.Local(local.X, local.Y, local.Z)
}
