package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arfontalvo/solstice/internal/solverr"
)

func mustSpectrum(t *testing.T, samples []Sample) *Spectrum {
	t.Helper()
	s, err := New(samples)
	require.NoError(t, err)
	return s
}

func TestSpectrumInterpolateClampsOutsideRange(t *testing.T) {
	s := mustSpectrum(t, []Sample{{1, 1}, {2, 0.8}, {3, 1}})

	assert.InDelta(t, 1.0, s.Interpolate(0), 1e-12)
	assert.InDelta(t, 1.0, s.Interpolate(10), 1e-12)
	assert.InDelta(t, 0.9, s.Interpolate(1.5), 1e-12)
	assert.InDelta(t, 0.8, s.Interpolate(2), 1e-12)
}

func TestSpectrumRejectsNonMonotone(t *testing.T) {
	_, err := New([]Sample{{2, 1}, {1, 1}})
	assert.True(t, solverr.Is(err, solverr.BadArgument))
}

func TestSpectrumRejectsNegativeIntensity(t *testing.T) {
	_, err := New([]Sample{{1, -0.1}})
	assert.True(t, solverr.Is(err, solverr.BadArgument))
}

func TestSpectrumRequiresAtLeastOneSample(t *testing.T) {
	_, err := New(nil)
	assert.True(t, solverr.Is(err, solverr.BadArgument))
}

func TestSpectrumTotalAreaMatchesTrapezoid(t *testing.T) {
	s := mustSpectrum(t, []Sample{{0, 1}, {1, 1}}) // unit square
	assert.InDelta(t, 1.0, s.TotalArea(), 1e-12)
}

func TestUniformAtmosphereBeersLaw(t *testing.T) {
	k := mustSpectrum(t, []Sample{{1, 0.03}, {3, 0.03}})
	atm := NewUniform(k)
	d := 4.0
	got := atm.Transmittance(2.0, d)
	want := 0.8869 // exp(-0.12), approx
	assert.InDelta(t, want, got, 1e-3)
}
