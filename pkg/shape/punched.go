package shape

import (
	"math"

	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/carving"
	"github.com/arfontalvo/solstice/pkg/quadric"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Punched is a quadric restricted to a planar 2D contour by an ordered list
// of carvings (spec.md §3/§4.1). It holds two companion 3D meshes built from
// the carved 2D triangulation: the ray-tracing proxy (vertices lifted onto
// the quadric via its height function) and the sampling proxy (vertices
// stay in the z=0 plane, carrying the true projected area).
type Punched struct {
	Quadric  *quadric.Quadric
	Carvings []*carving.Carving

	RTMesh       *Mesh
	SamplingMesh *Mesh
}

// NewPunched triangulates the carved contour and builds both proxy meshes
// (spec.md §4.1 steps 1-4).
func NewPunched(q *quadric.Quadric, carvings []*carving.Carving) (*Punched, error) {
	if q == nil {
		return nil, solverr.New(solverr.BadArgument, "punched surface requires a quadric")
	}

	verts2D, tris, err := seedAndClip(q, carvings)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, solverr.New(solverr.BadOperation, "carving produced an empty surface")
	}

	samplingPositions := make([]vecmath.Vec3, len(verts2D))
	rtPositions := make([]vecmath.Vec3, len(verts2D))
	for i, v := range verts2D {
		samplingPositions[i] = q.Transform.TransformPoint(vecmath.NewVec3(v.X, v.Y, 0))
		h, ok := q.Height(v.X, v.Y)
		if !ok {
			// Degenerate point outside the quadric's domain (e.g. beyond a
			// hemisphere's equator): lift at z=0 so the proxy stays
			// well-formed; such vertices are pruned by the carving bounds
			// in practice.
			h = 0
		}
		rtPositions[i] = q.Transform.TransformPoint(vecmath.NewVec3(v.X, v.Y, h))
	}

	samplingMesh, err := NewMesh(samplingPositions, tris, nil, nil)
	if err != nil {
		return nil, err
	}
	rtMesh, err := NewMesh(rtPositions, tris, nil, nil)
	if err != nil {
		return nil, err
	}

	return &Punched{Quadric: q, Carvings: carvings, RTMesh: rtMesh, SamplingMesh: samplingMesh}, nil
}

// RTArea returns the ray-tracing proxy's area.
func (p *Punched) RTArea() float64 { return p.RTMesh.Area() }

// SamplingArea returns the sampling proxy's (projected, planar) area.
func (p *Punched) SamplingArea() float64 { return p.SamplingMesh.Area() }

// Proxies returns the ray-tracing and sampling proxy meshes (spec.md §4.5:
// "distinguished only by which shape-proxy is attached (RT proxy vs
// sampling proxy)").
func (p *Punched) Proxies() (rt, sampling *Mesh) { return p.RTMesh, p.SamplingMesh }

// seedAndClip builds the regular seed triangulation for the quadric and
// keeps only the triangles whose centroid survives the carving chain
// (spec.md §4.1 steps 1-3; see package doc in carving for the centroid-
// classification simplification of the polygon-mesh boolean).
func seedAndClip(q *quadric.Quadric, carvings []*carving.Carving) ([]vecmath.Vec2, []int, error) {
	var verts []vecmath.Vec2
	var tris []int

	if q.Kind == quadric.Hemisphere {
		radius, err := enclosingRadius(carvings, q)
		if err != nil {
			return nil, nil, err
		}
		nsteps := q.NSteps(radius)
		verts, tris = triangulateDisk(radius, nsteps)
	} else {
		min, max, ok := carving.Bounds(carvings)
		if !ok {
			return nil, nil, solverr.New(solverr.BadArgument, "non-hemisphere punched surface requires at least one AND carving")
		}
		maxZ := 0.0
		for _, c := range []vecmath.Vec2{min, max} {
			if h, ok := q.Height(c.X, c.Y); ok && h > maxZ {
				maxZ = h
			}
		}
		nsteps := q.NSteps(maxZ)
		verts, tris = triangulateGrid(min, max, nsteps)
	}

	if len(carvings) == 0 {
		return verts, tris, nil
	}

	kept := make([]int, 0, len(tris))
	for i := 0; i < len(tris); i += 3 {
		a, b, c := verts[tris[i]], verts[tris[i+1]], verts[tris[i+2]]
		centroid := vecmath.NewVec2((a.X+b.X+c.X)/3, (a.Y+b.Y+c.Y)/3)
		if carving.Includes(carvings, centroid) {
			kept = append(kept, tris[i], tris[i+1], tris[i+2])
		}
	}
	return verts, kept, nil
}

// enclosingRadius returns the enclosing radius used to seed a hemisphere's
// triangulated disk (spec.md §4.1 step 1: "or the enclosing radius (for
// hemisphere)"), derived from the AND carvings' bounds, or the hemisphere's
// own radius if no carving is present.
func enclosingRadius(carvings []*carving.Carving, q *quadric.Quadric) (float64, error) {
	min, max, ok := carving.Bounds(carvings)
	if !ok {
		// No carving: the whole hemisphere is the surface.
		return hemisphereRadius(q), nil
	}
	r := 0.0
	for _, c := range []vecmath.Vec2{min, {X: min.X, Y: max.Y}, {X: max.X, Y: min.Y}, max} {
		d := math.Hypot(c.X, c.Y)
		if d > r {
			r = d
		}
	}
	return r, nil
}

func hemisphereRadius(q *quadric.Quadric) float64 {
	// The quadric does not export its radius directly; derive it from the
	// height at the pole vs the equator using the implicit equation
	// (z=0 -> x^2+y^2 = 2*r*z height relation breaks down at the rim, so
	// instead probe Height at increasing x until it stops returning ok).
	lo, hi := 0.0, 1.0
	for {
		if _, ok := q.Height(hi, 0); !ok {
			break
		}
		lo = hi
		hi *= 2
		if hi > 1e6 {
			break
		}
	}
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if _, ok := q.Height(mid, 0); ok {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// triangulateGrid seeds a regular nsteps x nsteps grid over [min,max]
// (spec.md §4.1 step 2).
func triangulateGrid(min, max vecmath.Vec2, nsteps int) ([]vecmath.Vec2, []int) {
	if nsteps < 1 {
		nsteps = 1
	}
	verts := make([]vecmath.Vec2, 0, (nsteps+1)*(nsteps+1))
	idx := func(i, j int) int { return i*(nsteps+1) + j }

	dx := (max.X - min.X) / float64(nsteps)
	dy := (max.Y - min.Y) / float64(nsteps)
	for i := 0; i <= nsteps; i++ {
		for j := 0; j <= nsteps; j++ {
			verts = append(verts, vecmath.NewVec2(min.X+float64(i)*dx, min.Y+float64(j)*dy))
		}
	}

	var tris []int
	for i := 0; i < nsteps; i++ {
		for j := 0; j < nsteps; j++ {
			v00, v10, v01, v11 := idx(i, j), idx(i+1, j), idx(i, j+1), idx(i+1, j+1)
			tris = append(tris, v00, v10, v11, v00, v11, v01)
		}
	}
	return verts, tris
}

// triangulateDisk seeds a fan-of-rings triangulated disk of the given
// radius with nsteps radial rings (spec.md §4.1 step 2, hemisphere case).
func triangulateDisk(radius float64, nsteps int) ([]vecmath.Vec2, []int) {
	if nsteps < 1 {
		nsteps = 1
	}
	segments := nsteps * 4
	verts := []vecmath.Vec2{{X: 0, Y: 0}}
	ringStart := make([]int, nsteps+1)
	ringStart[0] = 0

	for ring := 1; ring <= nsteps; ring++ {
		r := radius * float64(ring) / float64(nsteps)
		ringStart[ring] = len(verts)
		for s := 0; s < segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			verts = append(verts, vecmath.NewVec2(r*math.Cos(theta), r*math.Sin(theta)))
		}
	}

	var tris []int
	// Hub fan connecting the centre to the first ring.
	first := ringStart[1]
	for s := 0; s < segments; s++ {
		a := first + s
		b := first + (s+1)%segments
		tris = append(tris, 0, a, b)
	}
	// Quad strips between successive rings.
	for ring := 1; ring < nsteps; ring++ {
		inner := ringStart[ring]
		outer := ringStart[ring+1]
		for s := 0; s < segments; s++ {
			i0 := inner + s
			i1 := inner + (s+1)%segments
			o0 := outer + s
			o1 := outer + (s+1)%segments
			tris = append(tris, i0, o0, o1, i0, o1, i1)
		}
	}
	return verts, tris
}
