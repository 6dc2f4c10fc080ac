package quadric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arfontalvo/solstice/pkg/vecmath"
)

func TestSolveQuadraticRootsOrderedAscending(t *testing.T) {
	// (t-1)(t-3) = t^2 -4t +3
	r0, r1, ok := SolveQuadratic(1, -4, 3)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r0, 1e-9)
	assert.InDelta(t, 3.0, r1, 1e-9)
}

func TestSolveQuadraticNoRealRoots(t *testing.T) {
	_, _, ok := SolveQuadratic(1, 0, 1)
	assert.False(t, ok)
}

func TestPlaneHitAtZHeight(t *testing.T) {
	q := NewPlane(vecmath.Identity())
	origin := vecmath.NewVec3(0, 0, 5)
	dir := vecmath.NewVec3(0, 0, -1)
	t0, ok := q.Hit(origin, dir, 0, 100, 5)
	require.True(t, ok)
	assert.InDelta(t, 5.0, t0, 1e-9)
}

func TestParabolHeightMatchesImplicitEquation(t *testing.T) {
	focal := 2.0
	q, err := NewParabol(focal, vecmath.Identity())
	require.NoError(t, err)

	x, y := 1.0, 1.5
	z, ok := q.Height(x, y)
	require.True(t, ok)
	// x^2+y^2-4*focal*z == 0
	assert.InDelta(t, 0.0, x*x+y*y-4*focal*z, 1e-9)
}

func TestNewParabolRejectsNonPositiveFocal(t *testing.T) {
	_, err := NewParabol(0, vecmath.Identity())
	assert.Error(t, err)
}

// TestHemisphereRTProxyMatchesAnalyticSphere verifies spec.md §8 property 6:
// for a hemispherical bowl of radius r, hits reconstructed via the height
// function match the analytic sphere to within 1e-8 relative error.
func TestHemisphereRTProxyMatchesAnalyticSphere(t *testing.T) {
	r := 3.0
	q, err := NewHemisphere(r, vecmath.Identity())
	require.NoError(t, err)

	for _, xy := range [][2]float64{{0, 0}, {1, 1}, {-2, 0.5}, {0, -2.9}} {
		x, y := xy[0], xy[1]
		z, ok := q.Height(x, y)
		require.True(t, ok)
		// Analytic sphere centred at (0,0,r): x^2+y^2+(z-r)^2 == r^2
		residual := x*x + y*y + (z-r)*(z-r) - r*r
		assert.InDelta(t, 0.0, residual, 1e-8*r*r)
	}
}

func TestHemisphereNormalPointsOutwardAtPole(t *testing.T) {
	r := 2.0
	q, err := NewHemisphere(r, vecmath.Identity())
	require.NoError(t, err)

	grad := q.Gradient(vecmath.NewVec3(0, 0, 0))
	n := grad.Normalize()
	assert.True(t, n.Equals(vecmath.NewVec3(0, 0, 1)))
}

func TestHyperbolImplicitFormSatisfiedAtHeight(t *testing.T) {
	q, err := NewHyperbol(5.0, 2.0, vecmath.Identity())
	require.NoError(t, err)

	x, y := 1.0, 0.5
	z, ok := q.Height(x, y)
	require.True(t, ok)
	h := q.hyperbol
	zTerm := z + h.z0 - (h.realFocal+h.imgFocal)/2
	residual := (x*x+y*y)/h.a2 - zTerm*zTerm/h.b2 + 1
	assert.InDelta(t, 0.0, residual, 1e-9)
}

func TestNSteps(t *testing.T) {
	q := &Quadric{}
	assert.Equal(t, 3, q.NSteps(0))
	assert.Equal(t, 50, q.NSteps(1000))

	q.NStepsHint = 12
	assert.Equal(t, 12, q.NSteps(1000))
}

func TestParabolicCylinderImplicitMatchesSpec(t *testing.T) {
	focal := 1.5
	q, err := NewParabolicCylinder(focal, vecmath.Identity())
	require.NoError(t, err)
	y := 2.0
	z, ok := q.Height(0, y)
	require.True(t, ok)
	assert.InDelta(t, 0.0, y*y-4*focal*z, 1e-9)
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	focal := 3.0
	q, err := NewParabol(focal, vecmath.Identity())
	require.NoError(t, err)

	f := func(x, y, z float64) float64 { return x*x + y*y - 4*focal*z }
	x, y, z := 1.2, -0.7, (1.2*1.2+0.7*0.7)/(4*focal)
	eps := 1e-6
	fd := vecmath.NewVec3(
		(f(x+eps, y, z)-f(x-eps, y, z))/(2*eps),
		(f(x, y+eps, z)-f(x, y-eps, z))/(2*eps),
		(f(x, y, z+eps)-f(x, y, z-eps))/(2*eps),
	)
	grad := q.Gradient(vecmath.NewVec3(x, y, z))
	assert.InDelta(t, fd.X, grad.X, 1e-3)
	assert.InDelta(t, fd.Y, grad.Y, 1e-3)
	assert.InDelta(t, fd.Z, grad.Z, 1e-3)
}
