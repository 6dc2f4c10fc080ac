package scenecfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arfontalvo/solstice/pkg/scene"
)

const twoPlaneFixture = `
sun:
  kind: directional
  direction: [0, 0, -1]
  dni: 1000
  spectrum:
    - {wavelength: 400, intensity: 1}
    - {wavelength: 800, intensity: 1}

materials:
  mirror:
    kind: mirror
    shader: {reflectivity: 0.9}
  absorber:
    kind: matte
    shader: {reflectivity: 0}

shapes:
  square:
    kind: rect
    half_width: 1
    half_height: 1

objects:
  emitter:
    parts:
      - {shape: square, front_material: mirror}
  receiver:
    parts:
      - {shape: square, front_material: absorber}

instances:
  sun_panel:
    object: emitter
    translation: [0, 0, 5]
    receiver: none
  ground:
    object: receiver
    translation: [0, 0, 0]
    receiver: front
    sample: false

solve:
  realisations: 100
  seed: 1
  threads: 1
`

func TestLoadBuildsSolvableSceneFromYAML(t *testing.T) {
	built, err := Load([]byte(twoPlaneFixture))
	require.NoError(t, err)

	assert.NotNil(t, built.Sun)
	assert.Nil(t, built.Atmosphere)
	assert.InDelta(t, 1000, built.Sun.DNI, 1e-9)

	assert.EqualValues(t, 100, built.Solve.Realisations)
	assert.EqualValues(t, 1, built.Solve.Seed)
	assert.Equal(t, 1, built.Solve.Threads)

	require.Len(t, built.Scene.Instances(), 2)
	assert.Greater(t, built.Scene.SamplingArea(), 0.0)
}

func TestLoadRejectsUnknownShapeReference(t *testing.T) {
	doc := `
sun:
  kind: directional
  direction: [0, 0, -1]
  dni: 1000
  spectrum:
    - {wavelength: 400, intensity: 1}

objects:
  broken:
    parts:
      - {shape: does_not_exist}

instances: {}
solve: {realisations: 1, seed: 1, threads: 1}
`
	_, err := Load([]byte(doc))
	require.Error(t, err)
}

func TestLoadRejectsUnknownOrientation(t *testing.T) {
	doc := `
sun:
  kind: directional
  direction: [0, 0, -1]
  dni: 1000
  spectrum:
    - {wavelength: 400, intensity: 1}

shapes:
  square: {kind: rect, half_width: 1, half_height: 1}

objects:
  panel:
    parts:
      - {shape: square, front_material: ""}

instances:
  p:
    object: panel
    orientation: sideways

solve: {realisations: 1, seed: 1, threads: 1}
`
	_, err := Load([]byte(doc))
	require.Error(t, err)
}

func TestLoadQuadricShapeWithCarving(t *testing.T) {
	doc := `
sun:
  kind: directional
  direction: [0, 0, -1]
  dni: 1000
  spectrum:
    - {wavelength: 400, intensity: 1}

materials:
  mirror: {kind: mirror, shader: {reflectivity: 1}}

shapes:
  dish:
    kind: quadric
    quadric_kind: parabol
    focal: 2
    carve_half_width: 1
    carve_half_height: 1

objects:
  concentrator:
    parts:
      - {shape: dish, front_material: mirror}

instances:
  c1:
    object: concentrator
    receiver: none

solve: {realisations: 1, seed: 1, threads: 1}
`
	built, err := Load([]byte(doc))
	require.NoError(t, err)
	require.Len(t, built.Scene.Instances(), 1)
}

func TestLoadAtmosphereSection(t *testing.T) {
	doc := `
sun:
  kind: directional
  direction: [0, 0, -1]
  dni: 1000
  spectrum:
    - {wavelength: 400, intensity: 1}

atmosphere:
  extinction:
    - {wavelength: 400, intensity: 0.02}
    - {wavelength: 800, intensity: 0.02}

instances: {}
solve: {realisations: 1, seed: 1, threads: 1}
`
	built, err := Load([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, built.Atmosphere)
	assert.InDelta(t, 1, built.Atmosphere.Transmittance(400, 0), 1e-9)
}

func TestLoadInvalidYAMLIsAnError(t *testing.T) {
	_, err := Load([]byte("sun: [this is not a mapping"))
	require.Error(t, err)
}

func TestLoadReceiverMaskBoth(t *testing.T) {
	doc := `
sun:
  kind: directional
  direction: [0, 0, -1]
  dni: 1000
  spectrum:
    - {wavelength: 400, intensity: 1}

materials:
  absorber: {kind: matte, shader: {reflectivity: 0}}

shapes:
  square: {kind: rect, half_width: 1, half_height: 1}

objects:
  slab:
    parts:
      - {shape: square, front_material: absorber, back_material: absorber}

instances:
  s1:
    object: slab
    receiver: both

solve: {realisations: 1, seed: 1, threads: 1}
`
	built, err := Load([]byte(doc))
	require.NoError(t, err)
	inst := built.Scene.Instances()[0]
	_, frontIsReceiver := inst.ReceiverID(scene.Front)
	_, backIsReceiver := inst.ReceiverID(scene.Back)
	assert.True(t, frontIsReceiver)
	assert.True(t, backIsReceiver)
}
