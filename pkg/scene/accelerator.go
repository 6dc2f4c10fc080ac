package scene

import "github.com/arfontalvo/solstice/pkg/vecmath"

// aabb is an axis-aligned bounding box, grounded on the teacher's
// pkg/core/aabb.go.
type aabb struct {
	Min, Max vecmath.Vec3
}

func (b aabb) union(o aabb) aabb {
	return aabb{
		Min: vecmath.NewVec3(minOf2(b.Min.X, o.Min.X), minOf2(b.Min.Y, o.Min.Y), minOf2(b.Min.Z, o.Min.Z)),
		Max: vecmath.NewVec3(maxOf2(b.Max.X, o.Max.X), maxOf2(b.Max.Y, o.Max.Y), maxOf2(b.Max.Z, o.Max.Z)),
	}
}

func (b aabb) center() vecmath.Vec3 { return b.Min.Add(b.Max).Multiply(0.5) }

func (b aabb) longestAxis() int {
	size := b.Max.Subtract(b.Min)
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

func (b aabb) hit(ray vecmath.Ray, tMin, tMax float64) bool {
	axes := [3][3]float64{
		{b.Min.X, b.Max.X, ray.Origin.X},
		{b.Min.Y, b.Max.Y, ray.Origin.Y},
		{b.Min.Z, b.Max.Z, ray.Origin.Z},
	}
	dirs := [3]float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}
	for axis := 0; axis < 3; axis++ {
		min, max, origin := axes[axis][0], axes[axis][1], axes[axis][2]
		dir := dirs[axis]
		if dir > -1e-12 && dir < 1e-12 {
			if origin < min || origin > max {
				return false
			}
			continue
		}
		inv := 1.0 / dir
		t1 := (min - origin) * inv
		t2 := (max - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

func minOf2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
func maxOf2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// HitFilter resolves the per-hit decisions of spec.md §4.1 "Hit filter":
// self-intersection, virtual-material discarding for shadow/drafting rays,
// and punched-surface refinement rejection (refinement itself happens
// inside Primitive.Hit; the filter only decides accept/reject once a
// refined hit is in hand).
type HitFilter func(hit PrimitiveHit) bool

// AcceptAll is a HitFilter that accepts every hit.
func AcceptAll(PrimitiveHit) bool { return true }

const leafThreshold = 8

// bvhNode is an internal or leaf node of the accelerator.
type bvhNode struct {
	box        aabb
	left, right *bvhNode
	primitives []*Primitive
}

// Accelerator is a median-split bounding volume hierarchy over Primitives,
// generalizing the teacher's pkg/core/bvh.go to carry a per-query
// HitFilter instead of baking filtering into the Shape interface.
type Accelerator struct {
	root       *bvhNode
	primitives []*Primitive
}

// NewAccelerator builds an Accelerator over the given primitives. It is
// immutable afterward, matching spec.md §5's "ray-tracing accelerators are
// immutable for the duration of a solve."
func NewAccelerator(primitives []*Primitive) *Accelerator {
	cp := make([]*Primitive, len(primitives))
	copy(cp, primitives)
	return &Accelerator{root: build(cp), primitives: cp}
}

func boundsOf(primitives []*Primitive) aabb {
	if len(primitives) == 0 {
		return aabb{}
	}
	min, max := primitives[0].BoundingBox()
	box := aabb{Min: min, Max: max}
	for _, p := range primitives[1:] {
		pMin, pMax := p.BoundingBox()
		box = box.union(aabb{Min: pMin, Max: pMax})
	}
	return box
}

func build(primitives []*Primitive) *bvhNode {
	box := boundsOf(primitives)
	if len(primitives) <= leafThreshold {
		return &bvhNode{box: box, primitives: primitives}
	}

	axis := box.longestAxis()
	splitPos := axisValue(box.center(), axis)

	var left, right []*Primitive
	for _, p := range primitives {
		pMin, pMax := p.BoundingBox()
		center := aabb{Min: pMin, Max: pMax}.center()
		if axisValue(center, axis) < splitPos {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &bvhNode{box: box, primitives: primitives}
	}

	return &bvhNode{box: box, left: build(left), right: build(right)}
}

func axisValue(v vecmath.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Hit traverses the accelerator for the closest filter-accepted hit in
// [tMin, tMax].
func (a *Accelerator) Hit(ray vecmath.Ray, tMin, tMax float64, filter HitFilter) (PrimitiveHit, bool) {
	if a.root == nil {
		return PrimitiveHit{}, false
	}
	return a.hitNode(a.root, ray, tMin, tMax, filter)
}

func (a *Accelerator) hitNode(node *bvhNode, ray vecmath.Ray, tMin, tMax float64, filter HitFilter) (PrimitiveHit, bool) {
	if !node.box.hit(ray, tMin, tMax) {
		return PrimitiveHit{}, false
	}

	if node.primitives != nil {
		var best PrimitiveHit
		found := false
		closest := tMax
		for _, p := range node.primitives {
			hit, ok := p.Hit(ray, tMin, closest)
			if !ok || !filter(hit) {
				continue
			}
			closest = hit.T
			best = hit
			found = true
		}
		return best, found
	}

	var best PrimitiveHit
	found := false
	closest := tMax
	if node.left != nil {
		if hit, ok := a.hitNode(node.left, ray, tMin, closest, filter); ok {
			closest, best, found = hit.T, hit, true
		}
	}
	if node.right != nil {
		if hit, ok := a.hitNode(node.right, ray, tMin, closest, filter); ok {
			best, found = hit, true
		}
	}
	return best, found
}
