// Package spectrum implements the wavelength spectrum and atmosphere models
// of spec.md §3: an ordered (wavelength, intensity) table supporting clamped
// linear interpolation, and a Beer's-law uniform atmosphere built on top of
// one.
//
// Grounded on original_source/src/ssol_spectrum.c for exact interpolation
// semantics (lower-bound search, clamped endpoint lookup) and on
// aclements-shade/sun.go for the idiom of a small piecewise-linear-data file
// with its own monotonicity checks.
package spectrum

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/arfontalvo/solstice/internal/solverr"
)

// Sample is one (wavelength, intensity) point of a Spectrum.
type Sample struct {
	Wavelength float64
	Intensity  float64
}

// Spectrum is a strictly-increasing-in-wavelength, non-negative-intensity
// piecewise-linear function of wavelength (spec.md §3).
type Spectrum struct {
	wavelengths []float64
	intensities []float64
}

// New builds a Spectrum from samples, validating the invariants: at least
// one sample, strictly increasing wavelengths, non-negative intensities.
func New(samples []Sample) (*Spectrum, error) {
	if len(samples) == 0 {
		return nil, solverr.New(solverr.BadArgument, "spectrum requires at least one sample")
	}
	wl := make([]float64, len(samples))
	in := make([]float64, len(samples))
	for i, s := range samples {
		if s.Intensity < 0 {
			return nil, solverr.Newf(solverr.BadArgument, "spectrum intensity at %g is negative", s.Wavelength)
		}
		if i > 0 && s.Wavelength <= samples[i-1].Wavelength {
			return nil, solverr.New(solverr.BadArgument, "spectrum wavelengths must be strictly increasing")
		}
		wl[i] = s.Wavelength
		in[i] = s.Intensity
	}
	if !sort.Float64sAreSorted(wl) {
		return nil, solverr.New(solverr.BadArgument, "spectrum wavelengths must be sorted")
	}
	return &Spectrum{wavelengths: wl, intensities: in}, nil
}

// Len returns the number of samples.
func (s *Spectrum) Len() int { return len(s.wavelengths) }

// Bounds returns the minimum and maximum wavelength covered by the spectrum.
func (s *Spectrum) Bounds() (min, max float64) {
	return s.wavelengths[0], s.wavelengths[len(s.wavelengths)-1]
}

// Samples returns a copy of the underlying (wavelength, intensity) pairs.
func (s *Spectrum) Samples() []Sample {
	out := make([]Sample, len(s.wavelengths))
	for i := range s.wavelengths {
		out[i] = Sample{Wavelength: s.wavelengths[i], Intensity: s.intensities[i]}
	}
	return out
}

// Interpolate returns the linearly-interpolated intensity at wavelength.
// Queries outside [min, max] are clamped to the nearest endpoint
// (spec.md §3: "query outside the range is clamped to the bounding
// endpoint").
func (s *Spectrum) Interpolate(wavelength float64) float64 {
	wl := s.wavelengths
	n := len(wl)
	if wavelength <= wl[0] {
		return s.intensities[0]
	}
	if wavelength >= wl[n-1] {
		return s.intensities[n-1]
	}
	// floats.Span-style bracket: locate the first sample index >= wavelength.
	idxNext := sort.Search(n, func(i int) bool { return wl[i] >= wavelength })
	if wl[idxNext] == wavelength {
		return s.intensities[idxNext]
	}
	idxPrev := idxNext - 1
	slope := (s.intensities[idxNext] - s.intensities[idxPrev]) / (wl[idxNext] - wl[idxPrev])
	return s.intensities[idxPrev] + (wavelength-wl[idxPrev])*slope
}

// CumulativeArea returns the trapezoidal-rule running integral of the
// spectrum up to each sample point, used by pkg/sun to build the
// piecewise-linear wavelength CDF.
func (s *Spectrum) CumulativeArea() []float64 {
	n := len(s.wavelengths)
	areas := make([]float64, n)
	if n < 2 {
		return areas
	}
	segments := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dw := s.wavelengths[i] - s.wavelengths[i-1]
		segments[i-1] = 0.5 * dw * (s.intensities[i] + s.intensities[i-1])
	}
	floats.CumSum(segments, segments)
	copy(areas[1:], segments)
	return areas
}

// TotalArea returns the spectrum's total trapezoidal area, computed as the
// sum of per-segment trapezoids via gonum/floats rather than re-deriving the
// full cumulative table.
func (s *Spectrum) TotalArea() float64 {
	n := len(s.wavelengths)
	if n < 2 {
		return 0
	}
	segments := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dw := s.wavelengths[i] - s.wavelengths[i-1]
		segments[i-1] = 0.5 * dw * (s.intensities[i] + s.intensities[i-1])
	}
	return floats.Sum(segments)
}

// Includes reports whether the spectrum's wavelength range fully contains
// other's range, mirroring ssol_spectrum.c's spectrum_includes used to
// validate sun/atmosphere spectral-range compatibility.
func (s *Spectrum) Includes(other *Spectrum) bool {
	lo, hi := other.Bounds()
	sLo, sHi := s.Bounds()
	return sLo <= lo && lo <= sHi && sLo <= hi && hi <= sHi
}
