package material

import (
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Mirror queries a Shader for reflectivity and roughness at each hit
// (spec.md §4.2 "Mirror. Queries shader's reflectivity, roughness"). A zero
// roughness is pure specular reflection weighted by a constant-reflectivity
// Fresnel term; a positive roughness switches to the Beckmann microfacet
// solving variant.
type Mirror struct {
	Shader Shader
}

// NewMirror builds a Mirror material backed by the given shader.
func NewMirror(shader Shader) *Mirror {
	return &Mirror{Shader: shader}
}

func (m *Mirror) IsVirtual() bool { return false }

func (m *Mirror) Sample(src *rng.Source, frag SurfaceFragment, incomingMedium Medium) (ScatterResult, bool, error) {
	n := frag.GeometryNormal
	wi := frag.Incoming.Normalize()
	reflectivity := m.Shader.Reflectivity(frag)
	roughness := m.Shader.Roughness(frag)

	if roughness <= 0 {
		direction := vecmath.Reflect(wi, n)
		survives := src.Float64() < reflectivity
		if !survives {
			return ScatterResult{}, false, nil
		}
		return ScatterResult{Direction: direction, Reflectance: 1, PDF: 0, Specular: true}, true, nil
	}

	direction, weight := sampleMicrofacet(src, wi, n, roughness, reflectivity)
	if weight <= 0 {
		return ScatterResult{}, false, nil
	}
	return ScatterResult{Direction: direction, Reflectance: weight, PDF: 0, Specular: false}, true, nil
}
