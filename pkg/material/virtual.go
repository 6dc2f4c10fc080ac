package material

import "github.com/arfontalvo/solstice/pkg/rng"

// Virtual is not shaded: material_shade is a no-op, and hits against it
// still participate in receiver scoring and virtual-discarding ray
// filtering (spec.md §4.2 "Virtual"). The walker steps the ray straight
// through without deflection, using the shading normal passthrough.
type Virtual struct{}

func (Virtual) IsVirtual() bool { return true }

// Sample is never called by the walker for a Virtual material (the walker
// passes the ray through unconditionally instead), but is implemented to
// satisfy the Material interface: it returns the incoming direction
// unchanged at full reflectance.
func (Virtual) Sample(src *rng.Source, frag SurfaceFragment, incomingMedium Medium) (ScatterResult, bool, error) {
	return ScatterResult{Direction: frag.Incoming, Reflectance: 1, PDF: 0, Specular: true}, true, nil
}
