package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/arfontalvo/solstice/pkg/carving"
	"github.com/arfontalvo/solstice/pkg/estimator"
	"github.com/arfontalvo/solstice/pkg/material"
	"github.com/arfontalvo/solstice/pkg/quadric"
	"github.com/arfontalvo/solstice/pkg/scene"
	"github.com/arfontalvo/solstice/pkg/shape"
	"github.com/arfontalvo/solstice/pkg/sink"
	"github.com/arfontalvo/solstice/pkg/spectrum"
	"github.com/arfontalvo/solstice/pkg/sun"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

func identityAffine() vecmath.Affine {
	return vecmath.NewAffine(mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), vecmath.Vec3{})
}

func translateZ(z float64) vecmath.Affine {
	return vecmath.NewAffine(mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), vecmath.NewVec3(0, 0, z))
}

// downFacingAt turns a +Z-facing mesh a half-turn about the x axis, so it
// faces -Z, and lifts it to height z.
func downFacingAt(z float64) vecmath.Affine {
	return vecmath.NewAffine(mat.NewDense(3, 3, []float64{1, 0, 0, 0, -1, 0, 0, 0, -1}), vecmath.NewVec3(0, 0, z))
}

func unitSquareMesh(t *testing.T) *shape.Mesh {
	t.Helper()
	positions := []vecmath.Vec3{
		vecmath.NewVec3(-1, -1, 0),
		vecmath.NewVec3(1, -1, 0),
		vecmath.NewVec3(1, 1, 0),
		vecmath.NewVec3(-1, 1, 0),
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	m, err := shape.NewMesh(positions, indices, nil, nil)
	require.NoError(t, err)
	return m
}

func overheadSun(t *testing.T, dni float64) *sun.Sun {
	t.Helper()
	spec, err := spectrum.New([]spectrum.Sample{{Wavelength: 400, Intensity: 1}, {Wavelength: 800, Intensity: 1}})
	require.NoError(t, err)
	s, err := sun.New(sun.Directional, vecmath.NewVec3(0, 0, -1), dni, spec, 0, 0)
	require.NoError(t, err)
	return s
}

// twoPlaneScene builds an emitter square at z=5 facing down and a receiver
// square at z=0 facing up directly beneath it: the simplest direct-path
// solve. The overhead sun strikes the emitter's back, which has no material,
// so each ray passes straight from the origin onto the receiver.
func twoPlaneScene(t *testing.T, receiverMaterial material.Material) (*scene.Scene, *scene.Instance, *scene.Instance) {
	t.Helper()
	mesh := unitSquareMesh(t)

	emitterObj := scene.NewObject(scene.Part{Shape: mesh, FrontMaterial: material.NewMatte(material.ConstantShader{ReflectivityValue: 1})})
	emitter := scene.NewInstance(1, emitterObj, downFacingAt(5), scene.ReceiverNone)

	receiverObj := scene.NewObject(scene.Part{Shape: mesh, FrontMaterial: receiverMaterial})
	receiver := scene.NewInstance(2, receiverObj, identityAffine(), scene.ReceiverFront)
	receiver.Sample = false

	s := scene.NewScene()
	s.AttachInstance(emitter)
	s.AttachInstance(receiver)
	s.Finalize()
	return s, emitter, receiver
}

func squareCarving(t *testing.T, half float64) *carving.Carving {
	t.Helper()
	c, err := carving.New([]vecmath.Vec2{
		{X: -half, Y: -half}, {X: half, Y: -half}, {X: half, Y: half}, {X: -half, Y: half},
	}, carving.AND, nil)
	require.NoError(t, err)
	return c
}

// twoPunchedPlaneScene mirrors twoPlaneScene but gives the receiver a
// *shape.Punched flat quadric instead of a bare *shape.Mesh, so the solve
// exercises Primitive.Hit's RefineHit branch and SamplePoint's ProjectPoint
// branch instead of only the plain-triangle path.
func twoPunchedPlaneScene(t *testing.T, receiverMaterial material.Material) (*scene.Scene, *scene.Instance, *scene.Instance) {
	t.Helper()
	emitterObj := scene.NewObject(scene.Part{Shape: unitSquareMesh(t), FrontMaterial: material.NewMatte(material.ConstantShader{ReflectivityValue: 1})})
	emitter := scene.NewInstance(1, emitterObj, downFacingAt(5), scene.ReceiverNone)

	q := quadric.NewPlane(vecmath.Identity())
	punched, err := shape.NewPunched(q, []*carving.Carving{squareCarving(t, 1)})
	require.NoError(t, err)

	receiverObj := scene.NewObject(scene.Part{Shape: punched, FrontMaterial: receiverMaterial})
	receiver := scene.NewInstance(2, receiverObj, identityAffine(), scene.ReceiverFront)
	receiver.Sample = false

	s := scene.NewScene()
	s.AttachInstance(emitter)
	s.AttachInstance(receiver)
	s.Finalize()
	return s, emitter, receiver
}

// TestSolvePunchedPlaneReceiverConservesEnergy exercises the same direct,
// normal-incidence geometry as TestSolveDirectNormalIncidenceConservesEnergy
// but with a *shape.Punched receiver, so a regression in RefineHit's normal
// orientation or the side/Front-Back computation it feeds (scene/primitive.go)
// would show up here rather than being invisible to the whole test suite.
func TestSolvePunchedPlaneReceiverConservesEnergy(t *testing.T) {
	opaque := material.NewMatte(material.ConstantShader{ReflectivityValue: 0})
	s, _, receiver := twoPunchedPlaneScene(t, opaque)
	sn := overheadSun(t, 1000)

	est, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Realisations: 2000,
		Seed:         7,
		Threads:      2,
	})
	require.NoError(t, err)

	key := estimator.ReceiverKey{Instance: receiver, Side: scene.Front}
	require.NotNil(t, est.Receivers[key])
	irr := est.Receivers[key].Irradiance.Mean(est.RealisationCount)
	assert.InDelta(t, 4000.0, irr, 4000.0*0.05)
}

// TestSolveHemisphereReceiverFocusesOverheadSun sends an overhead sun straight
// down onto a hemispherical bowl opening upward: every ray should strike the
// bowl's concave (front) face. Before the fix, Quadric.Gradient's hemisphere
// sign pointed into the bowl and Primitive.Hit's RefineHit branch never
// reoriented it, so this exact geometry would have reported every hit as
// Back (no receiver tagged on that side) and est.Receivers would stay empty;
// this pins the declared face, not the exact magnitude.
func TestSolveHemisphereReceiverFocusesOverheadSun(t *testing.T) {
	radius := 3.0
	q, err := quadric.NewHemisphere(radius, vecmath.Identity())
	require.NoError(t, err)
	punched, err := shape.NewPunched(q, nil)
	require.NoError(t, err)

	opaque := material.NewMatte(material.ConstantShader{ReflectivityValue: 0})
	receiverObj := scene.NewObject(scene.Part{Shape: punched, FrontMaterial: opaque})
	receiver := scene.NewInstance(1, receiverObj, identityAffine(), scene.ReceiverFront)

	s := scene.NewScene()
	s.AttachInstance(receiver)
	s.Finalize()

	sn := overheadSun(t, 1000)
	est, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Realisations: 2000,
		Seed:         13,
		Threads:      2,
	})
	require.NoError(t, err)

	key := estimator.ReceiverKey{Instance: receiver, Side: scene.Front}
	require.NotNil(t, est.Receivers[key])
	irr := est.Receivers[key].Irradiance.Mean(est.RealisationCount)
	// Every weight term is DNI*area*|cos theta| with |cos theta|<=1, so the
	// mean can never exceed DNI times the sampled disc's area.
	upperBound := 1000.0 * punched.SamplingArea()
	assert.Greater(t, irr, 0.0)
	assert.LessOrEqual(t, irr, upperBound*1.01)
}

func TestSolveDirectNormalIncidenceConservesEnergy(t *testing.T) {
	opaque := material.NewMatte(material.ConstantShader{ReflectivityValue: 0})
	s, _, receiver := twoPlaneScene(t, opaque)
	sn := overheadSun(t, 1000)

	est, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Realisations: 2000,
		Seed:         7,
		Threads:      2,
	})
	require.NoError(t, err)

	key := estimator.ReceiverKey{Instance: receiver, Side: scene.Front}
	require.NotNil(t, est.Receivers[key])
	irr := est.Receivers[key].Irradiance.Mean(est.RealisationCount)

	// Normal incidence onto a 2x2 unit square (area 4) at DNI 1000: every
	// realisation's weight at the emitter is 1000*4*1 = 4000, none of it
	// lost to shadowing, cosine, atmosphere, or a reflective receiver, so
	// the mean should sit close to 4000.
	assert.InDelta(t, 4000.0, irr, 4000.0*0.05)
}

func TestSolveShadowedOriginNeverScoresReceiver(t *testing.T) {
	opaque := material.NewMatte(material.ConstantShader{ReflectivityValue: 0})
	s, _, receiver := twoPlaneScene(t, opaque)

	// A blocker directly above the emitter, between it and the sun, shadows
	// every realisation sampled on the emitter.
	mesh := unitSquareMesh(t)
	blockerObj := scene.NewObject(scene.Part{Shape: mesh, FrontMaterial: material.NewMatte(material.ConstantShader{ReflectivityValue: 0})})
	blocker := scene.NewInstance(3, blockerObj, translateZ(10), scene.ReceiverNone)
	blocker.Sample = false
	s.AttachInstance(blocker)
	s.Finalize()

	sn := overheadSun(t, 1000)
	est, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Realisations: 50,
		Seed:         1,
		Threads:      1,
	})
	require.NoError(t, err)

	key := estimator.ReceiverKey{Instance: receiver, Side: scene.Front}
	assert.Nil(t, est.Receivers[key])
	assert.InDelta(t, 4000.0, est.GlobalShadow.Mean(est.RealisationCount), 1)
}

func TestSolveVirtualReceiverIsScoredAndPassedThrough(t *testing.T) {
	virtual := &material.Virtual{}
	s, _, receiver := twoPlaneScene(t, virtual)
	sn := overheadSun(t, 1000)

	est, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Realisations: 200,
		Seed:         3,
		Threads:      1,
	})
	require.NoError(t, err)

	key := estimator.ReceiverKey{Instance: receiver, Side: scene.Front}
	assert.NotNil(t, est.Receivers[key])
	assert.True(t, est.GlobalMissing.SumW == 0)
}

func TestSolveAtmosphereAttenuatesByBeersLaw(t *testing.T) {
	opaque := material.NewMatte(material.ConstantShader{ReflectivityValue: 0})
	s, _, receiver := twoPlaneScene(t, opaque)
	sn := overheadSun(t, 1000)

	extinction, err := spectrum.New([]spectrum.Sample{{Wavelength: 400, Intensity: 0.1}, {Wavelength: 800, Intensity: 0.1}})
	require.NoError(t, err)
	atm := spectrum.NewUniform(extinction)

	est, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Atmosphere:   &atm,
		Realisations: 2000,
		Seed:         11,
		Threads:      2,
	})
	require.NoError(t, err)

	key := estimator.ReceiverKey{Instance: receiver, Side: scene.Front}
	require.NotNil(t, est.Receivers[key])
	irr := est.Receivers[key].Irradiance.Mean(est.RealisationCount)
	tau := math.Exp(-0.1 * 5)
	want := 4000.0 * tau
	assert.InDelta(t, want, irr, want*0.08)
}

// failingWriter always errors, standing in for a full disk or closed
// connection underneath a sink.Writer.
type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestSolvePropagatesSinkErrorAndDiscardsPartials(t *testing.T) {
	opaque := material.NewMatte(material.ConstantShader{ReflectivityValue: 0})
	s, _, _ := twoPlaneScene(t, opaque)
	sn := overheadSun(t, 1000)

	boom := errors.New("disk full")
	w := sink.NewWriter(failingWriter{err: boom})

	est, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Realisations: 100,
		Seed:         5,
		Threads:      4,
		Sink:         w,
	})
	require.Error(t, err)
	assert.Nil(t, est)
}

func TestSolveEmptySamplingAreaIsAnError(t *testing.T) {
	s := scene.NewScene()
	s.Finalize()
	sn := overheadSun(t, 1000)

	_, err := Solve(context.Background(), Config{
		Scene:        s,
		Sun:          sn,
		Realisations: 10,
		Seed:         1,
		Threads:      1,
	})
	require.Error(t, err)
}

func TestRealisationRangesCoverTotalExactlyOnce(t *testing.T) {
	ranges := realisationRanges(17, 4)
	var total uint64
	var cursor uint64
	for _, r := range ranges {
		assert.Equal(t, cursor, r.start)
		total += r.count
		cursor += r.count
	}
	assert.EqualValues(t, 17, total)
}

func TestPathTrackerRecordsSentinelsAndTerminal(t *testing.T) {
	var got Path
	tracker := newPathTracker(PathConfig{
		SunRayLength:      10,
		InfiniteRayLength: 100,
		OnPath:            func(p Path) { got = p },
	})

	origin := vecmath.NewVec3(0, 0, 0)
	sunDir := vecmath.NewVec3(0, 0, -1)
	tracker.begin(42, origin, sunDir, 5)
	tracker.record(vecmath.NewVec3(0, 0, -5), 5)
	tracker.finish(TerminalMissing, vecmath.NewVec3(0, 0, -5), vecmath.NewVec3(0, 0, -1))

	require.Len(t, got.Vertices, 4)
	assert.EqualValues(t, 42, got.RealisationID)
	assert.Equal(t, TerminalMissing, got.Terminal)
	assert.InDelta(t, 10, got.Vertices[0].Point.Z, 1e-9)
	assert.InDelta(t, -105, got.Vertices[3].Point.Z, 1e-9)
}
