package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arfontalvo/solstice/pkg/carving"
	"github.com/arfontalvo/solstice/pkg/quadric"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

func squareCarving(t *testing.T, half float64) *carving.Carving {
	t.Helper()
	c, err := carving.New([]vecmath.Vec2{
		{X: -half, Y: -half}, {X: half, Y: -half}, {X: half, Y: half}, {X: -half, Y: half},
	}, carving.AND, nil)
	require.NoError(t, err)
	return c
}

func TestNewMeshComputesTriangleAreas(t *testing.T) {
	positions := []vecmath.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m, err := NewMesh(positions, []int{0, 1, 2}, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.Area(), 1e-12)
}

func TestNewMeshRejectsBadIndices(t *testing.T) {
	positions := []vecmath.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	_, err := NewMesh(positions, []int{0, 1, 2, 3}, nil, nil)
	assert.Error(t, err)
}

func TestPunchedPlaneSamplingAreaMatchesSquareCarving(t *testing.T) {
	q := quadric.NewPlane(vecmath.Identity())
	c := squareCarving(t, 1) // 2x2 square
	p, err := NewPunched(q, []*carving.Carving{c})
	require.NoError(t, err)

	assert.InDelta(t, 4.0, p.SamplingArea(), 0.05)
	assert.InDelta(t, 4.0, p.RTArea(), 0.05)
}

func TestPunchedParaboloidRTAreaExceedsSamplingArea(t *testing.T) {
	q, err := quadric.NewParabol(5, vecmath.Identity())
	require.NoError(t, err)
	c := squareCarving(t, 1)
	p, err := NewPunched(q, []*carving.Carving{c})
	require.NoError(t, err)

	// A curved reflector always has more surface area than its projection.
	assert.Greater(t, p.RTArea(), p.SamplingArea())
}

func TestPunchedHemisphereWithoutCarving(t *testing.T) {
	q, err := quadric.NewHemisphere(2, vecmath.Identity())
	require.NoError(t, err)
	p, err := NewPunched(q, nil)
	require.NoError(t, err)

	// Half the sphere's surface area 4*pi*r^2 -> 2*pi*r^2
	want := 2 * math.Pi * 4
	assert.InDelta(t, want, p.RTArea(), want*0.05)
}

func TestRefineHitMatchesQuadricForPlane(t *testing.T) {
	q := quadric.NewPlane(vecmath.Identity())
	c := squareCarving(t, 1)
	p, err := NewPunched(q, []*carving.Carving{c})
	require.NoError(t, err)

	ray := vecmath.NewRay(vecmath.NewVec3(0, 0, 5), vecmath.NewVec3(0, 0, -1))
	point, normal, t0, ok := p.RefineHit(ray, 0, 100, 5)
	require.True(t, ok)
	assert.InDelta(t, 5.0, t0, 1e-9)
	assert.InDelta(t, 0.0, point.Z, 1e-9)
	assert.True(t, normal.Equals(vecmath.NewVec3(0, 0, 1)))
}
