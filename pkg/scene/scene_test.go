package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/arfontalvo/solstice/pkg/material"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/shape"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

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

func translateZ(z float64) vecmath.Affine {
	identity := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	return vecmath.NewAffine(identity, vecmath.NewVec3(0, 0, z))
}

func TestSceneTraceHitsInstancedSquare(t *testing.T) {
	mesh := unitSquareMesh(t)
	obj := NewObject(Part{Shape: mesh, FrontMaterial: &material.Virtual{}})
	inst := NewInstance(1, obj, translateZ(5), ReceiverFront)

	s := NewScene()
	s.AttachInstance(inst)
	s.Finalize()

	ray := vecmath.NewRay(vecmath.NewVec3(0, 0, 10), vecmath.NewVec3(0, 0, -1))
	hit, ok := s.Trace(ray, 1e-6, 1e6, RayQuery{})
	require.True(t, ok)
	assert.InDelta(t, 5, hit.T, 1e-9)
	assert.Equal(t, Front, hit.Side)

	id, isReceiver := inst.ReceiverID(hit.Side)
	assert.True(t, isReceiver)
	assert.EqualValues(t, 1, id)
}

func TestSceneTraceMissesBehindSquare(t *testing.T) {
	mesh := unitSquareMesh(t)
	obj := NewObject(Part{Shape: mesh, FrontMaterial: &material.Virtual{}})
	inst := NewInstance(1, obj, translateZ(5), ReceiverNone)

	s := NewScene()
	s.AttachInstance(inst)
	s.Finalize()

	ray := vecmath.NewRay(vecmath.NewVec3(10, 10, 0), vecmath.NewVec3(0, 0, 1))
	_, ok := s.Trace(ray, 1e-6, 1e6, RayQuery{})
	assert.False(t, ok)
}

func TestSceneOccludedDiscardsVirtualMaterial(t *testing.T) {
	mesh := unitSquareMesh(t)
	obj := NewObject(Part{Shape: mesh, FrontMaterial: &material.Virtual{}})
	inst := NewInstance(1, obj, translateZ(5), ReceiverNone)

	s := NewScene()
	s.AttachInstance(inst)
	s.Finalize()

	ray := vecmath.NewRay(vecmath.NewVec3(0, 0, 10), vecmath.NewVec3(0, 0, -1))
	assert.False(t, s.Occluded(ray, 1e-6, 1e6, nil, Front))
}

func TestSceneOccludedBlockedByOpaqueMaterial(t *testing.T) {
	mesh := unitSquareMesh(t)
	obj := NewObject(Part{Shape: mesh, FrontMaterial: material.NewMatte(material.ConstantShader{ReflectivityValue: 0.5})})
	inst := NewInstance(1, obj, translateZ(5), ReceiverNone)

	s := NewScene()
	s.AttachInstance(inst)
	s.Finalize()

	ray := vecmath.NewRay(vecmath.NewVec3(0, 0, 10), vecmath.NewVec3(0, 0, -1))
	assert.True(t, s.Occluded(ray, 1e-6, 1e6, nil, Front))
}

func TestSceneExcludesSampleFalseInstanceFromSamplingArea(t *testing.T) {
	mesh := unitSquareMesh(t)
	obj := NewObject(Part{Shape: mesh, FrontMaterial: material.NewMatte(material.ConstantShader{ReflectivityValue: 0.5})})

	sampled := NewInstance(1, obj, translateZ(5), ReceiverNone)
	excluded := NewInstance(2, obj, translateZ(10), ReceiverNone)
	excluded.Sample = false

	s := NewScene()
	s.AttachInstance(sampled)
	s.AttachInstance(excluded)
	s.Finalize()

	assert.InDelta(t, mesh.Area(), s.SamplingArea(), 1e-9)
}

func TestSceneExcludesAllVirtualObjectFromSamplingArea(t *testing.T) {
	mesh := unitSquareMesh(t)
	obj := NewObject(Part{Shape: mesh, FrontMaterial: &material.Virtual{}, BackMaterial: &material.Virtual{}})
	inst := NewInstance(1, obj, translateZ(5), ReceiverNone)

	s := NewScene()
	s.AttachInstance(inst)
	s.Finalize()

	assert.Equal(t, 0.0, s.SamplingArea())
}

func TestSamplingAcceleratorSampleStaysOnSquare(t *testing.T) {
	mesh := unitSquareMesh(t)
	obj := NewObject(Part{Shape: mesh, FrontMaterial: material.NewMatte(material.ConstantShader{ReflectivityValue: 0.5})})
	inst := NewInstance(1, obj, translateZ(5), ReceiverNone)

	s := NewScene()
	s.AttachInstance(inst)
	s.Finalize()

	src := rng.NewSource(1, 0)
	for i := 0; i < 50; i++ {
		point, normal, _, prim, ok := s.sampling.Sample(src)
		require.True(t, ok)
		assert.Same(t, inst, prim.Instance)
		assert.InDelta(t, 5, point.Z, 1e-9)
		assert.InDelta(t, 1, normal.Length(), 1e-9)
	}
}
