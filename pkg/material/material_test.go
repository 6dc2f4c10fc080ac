package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

func straightDownFragment() SurfaceFragment {
	return SurfaceFragment{
		Point:          vecmath.NewVec3(0, 0, 0),
		Incoming:       vecmath.NewVec3(0, 0, -1),
		GeometryNormal: vecmath.NewVec3(0, 0, 1),
		ShadingNormal:  vecmath.NewVec3(0, 0, 1),
	}
}

func TestFresnelDielectricNormalIncidenceMatchesSchlick(t *testing.T) {
	r := FresnelDielectric(1.0, 1.0, 1.5)
	want := SchlickFresnel(1.0, (1-1.5)/(1+1.5)*(1-1.5)/(1+1.5))
	assert.InDelta(t, want, r, 1e-9)
}

func TestFresnelDielectricTotalInternalReflection(t *testing.T) {
	// Shallow grazing angle going from dense to rare medium triggers TIR.
	r := FresnelDielectric(0.05, 1.5, 1.0)
	assert.Equal(t, 1.0, r)
}

func TestDielectricRejectsMismatchedIncomingMedium(t *testing.T) {
	d := NewDielectric(Vacuum, Medium{Name: "glass", IOR: 1.5})
	src := rng.NewSource(1, 0)
	_, survives, err := d.Sample(src, straightDownFragment(), Medium{Name: "glass", IOR: 1.5})
	assert.False(t, survives)
	assert.Error(t, err)
}

func TestDielectricProducesReflectOrRefractAtNormalIncidence(t *testing.T) {
	d := NewDielectric(Vacuum, Medium{Name: "glass", IOR: 1.5})
	frag := straightDownFragment()
	for seed := uint64(0); seed < 20; seed++ {
		src := rng.NewSource(seed, 0)
		result, survives, err := d.Sample(src, frag, Vacuum)
		require.NoError(t, err)
		require.True(t, survives)
		assert.Equal(t, 1.0, result.Reflectance)
		assert.Equal(t, 0.0, result.PDF)
		assert.True(t, result.Specular)
	}
}

func TestMirrorPureSpecularAtZeroRoughness(t *testing.T) {
	m := NewMirror(ConstantShader{ReflectivityValue: 1.0, RoughnessValue: 0})
	frag := straightDownFragment()
	src := rng.NewSource(7, 0)
	result, survives, err := m.Sample(src, frag, Vacuum)
	require.NoError(t, err)
	require.True(t, survives)
	assert.True(t, result.Direction.Equals(vecmath.NewVec3(0, 0, 1)))
	assert.Equal(t, 1.0, result.Reflectance)
}

func TestMirrorAbsorbsWhenReflectivityZero(t *testing.T) {
	m := NewMirror(ConstantShader{ReflectivityValue: 0.0, RoughnessValue: 0})
	src := rng.NewSource(1, 0)
	_, survives, err := m.Sample(src, straightDownFragment(), Vacuum)
	require.NoError(t, err)
	assert.False(t, survives)
}

func TestMirrorRoughBounceStaysAboveHemisphereOnAverage(t *testing.T) {
	m := NewMirror(ConstantShader{ReflectivityValue: 0.9, RoughnessValue: 0.2})
	frag := straightDownFragment()
	survivedAbove := 0
	trials := 200
	for seed := uint64(0); seed < uint64(trials); seed++ {
		src := rng.NewSource(seed, 1)
		result, survives, err := m.Sample(src, frag, Vacuum)
		require.NoError(t, err)
		if survives {
			if result.Direction.Dot(frag.GeometryNormal) > 0 {
				survivedAbove++
			}
			assert.GreaterOrEqual(t, result.Reflectance, 0.0)
		}
	}
	assert.Greater(t, survivedAbove, trials/4)
}

func TestMatteCosineWeightedDirectionStaysInHemisphere(t *testing.T) {
	m := NewMatte(ConstantShader{ReflectivityValue: 0.8})
	frag := straightDownFragment()
	for seed := uint64(0); seed < 50; seed++ {
		src := rng.NewSource(seed, 2)
		result, survives, err := m.Sample(src, frag, Vacuum)
		require.NoError(t, err)
		if survives {
			assert.Greater(t, result.Direction.Dot(frag.GeometryNormal), 0.0)
			assert.Greater(t, result.PDF, 0.0)
			// Reflectance*cosTheta should recover the albedo exactly.
			cosTheta := result.Direction.Dot(frag.GeometryNormal)
			assert.InDelta(t, 0.8, result.Reflectance*cosTheta, 1e-9)
		}
	}
}

func TestThinDielectricEitherReflectsOrTransmitsStraight(t *testing.T) {
	td := NewThinDielectric(Vacuum, 1.5, 0.0, 1e-3) // zero absorptivity: never absorbed
	frag := straightDownFragment()
	for seed := uint64(0); seed < 20; seed++ {
		src := rng.NewSource(seed, 3)
		result, survives, err := td.Sample(src, frag, Vacuum)
		require.NoError(t, err)
		require.True(t, survives)
		isReflect := result.Direction.Equals(vecmath.NewVec3(0, 0, 1))
		isTransmit := result.Direction.Equals(frag.Incoming)
		assert.True(t, isReflect || isTransmit)
	}
}

func TestVirtualMaterialIsUnshaded(t *testing.T) {
	v := Virtual{}
	assert.True(t, v.IsVirtual())
	result, survives, err := v.Sample(rng.NewSource(0, 0), straightDownFragment(), Vacuum)
	require.NoError(t, err)
	assert.True(t, survives)
	assert.True(t, result.Direction.Equals(vecmath.NewVec3(0, 0, -1)))
}

func TestOrientShadingNormalFlipsToFaceIncoming(t *testing.T) {
	identity := vecmath.Identity()
	incoming := vecmath.NewVec3(0, 0, -1)
	raw := vecmath.NewVec3(0, 0, -1) // points along the incoming ray, needs flip
	n := OrientShadingNormal(identity, raw, incoming)
	assert.True(t, n.Equals(vecmath.NewVec3(0, 0, 1)))
}
