// Package scene implements the scene graph of spec.md §4.5: objects as
// (shape, front-material, back-material) triples, instances that place a
// shared object in world space, and the paired ray-tracing/sampling
// accelerators built over the RT and sampling shape proxies.
//
// Grounded on the teacher's pkg/core/bvh.go and pkg/core/aabb.go for the
// median-split BVH idiom (generalized here to carry a hit-filter callback
// per spec.md §4.1 "Hit filter"), pkg/geometry/triangle.go for the
// Moller-Trumbore triangle intersection, and original_source/src/
// ssol_scene.c and ssol_instance.c for the attach/area-bookkeeping and
// receiver-mask semantics.
package scene

import (
	"github.com/arfontalvo/solstice/pkg/shape"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Shape is any geometry a Part can reference: it must expose its
// ray-tracing and sampling mesh proxies (spec.md §4.5: the two accelerators
// are "distinguished only by which shape-proxy is attached").
type Shape interface {
	Proxies() (rt, sampling *shape.Mesh)
}

// Refinable is implemented by shapes whose RT proxy is only a broad-phase
// approximation that must be refined against an analytic surface (spec.md
// §4.1 "Exact hit resolution on punched surfaces"). *shape.Punched
// implements this; a bare *shape.Mesh does not, and its triangle hit is
// already exact.
type Refinable interface {
	RefineHit(ray vecmath.Ray, tMin, tMax, hint float64) (point, normal vecmath.Vec3, t float64, ok bool)
}

// Projectable is implemented by shapes whose sampling proxy is a planar
// stand-in for a curved analytic surface: an origin sampled on the proxy
// must be snapped onto the true quadric and have its normal recomputed
// analytically before use (spec.md §4.4 step 1 "snap pos onto the analytic
// quadric and recompute the normal analytically"). *shape.Punched implements
// this; a bare *shape.Mesh's sampling proxy already lies on the real surface.
type Projectable interface {
	ProjectPoint(instanceLocalPoint vecmath.Vec3) (point, normal vecmath.Vec3)
}
