package scene

import "github.com/arfontalvo/solstice/pkg/material"

// Part is one (shape, front-material, back-material) triple of an Object
// (spec.md §4.5 "Each object holds a list of (shape, front-material,
// back-material) triples"). Either material may be nil, meaning that side
// is unshaded and absorbs nothing (never hit in practice since a side
// without a material should not face any ray, but left nil-safe rather than
// panicking).
type Part struct {
	Shape         Shape
	FrontMaterial material.Material
	BackMaterial  material.Material
}

// Object is shared geometry: one or more Parts, instanced into the scene by
// reference. Multiple Instances may point at the same Object, each
// supplying its own placement transform (spec.md §4.5 "Instances share
// these accelerators and only carry a transform").
type Object struct {
	Parts []Part
}

// NewObject builds an Object from its parts.
func NewObject(parts ...Part) *Object {
	return &Object{Parts: parts}
}

// isAllVirtual reports whether every part's visible sides are virtual,
// making the object materially irrelevant for sampling purposes (spec.md
// §4.5 "a materially-irrelevant instance (all Virtual)").
func (o *Object) isAllVirtual() bool {
	for _, p := range o.Parts {
		if p.FrontMaterial != nil && !p.FrontMaterial.IsVirtual() {
			return false
		}
		if p.BackMaterial != nil && !p.BackMaterial.IsVirtual() {
			return false
		}
	}
	return true
}
