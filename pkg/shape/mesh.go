// Package shape implements the Mesh and Punched shape variants of
// spec.md §3: an indexed triangle mesh with optional per-vertex attributes,
// and a quadric-plus-carvings punched surface with its ray-tracing and
// sampling proxy meshes.
//
// Grounded on pkg/geometry/triangle_mesh.go of the teacher for the
// indexed-mesh idiom and pkg/geometry/bvh.go for the "mesh carries its own
// area" accounting; the punched-surface construction itself is grounded on
// original_source/src/ssol_shape.c.
package shape

import (
	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Mesh is an indexed triangle mesh. Normals and UVs are optional
// (spec.md §3: "position required; normal and texcoord optional").
type Mesh struct {
	Positions []vecmath.Vec3
	Normals   []vecmath.Vec3 // optional, per-vertex
	UVs       []vecmath.Vec2 // optional, per-vertex
	Indices   []int          // triangle list, len%3==0

	triangleAreas []float64
	totalArea     float64
}

// NewMesh validates and builds a Mesh, precomputing per-triangle areas.
func NewMesh(positions []vecmath.Vec3, indices []int, normals []vecmath.Vec3, uvs []vecmath.Vec2) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, solverr.New(solverr.BadArgument, "mesh indices must be a multiple of 3")
	}
	if normals != nil && len(normals) != len(positions) {
		return nil, solverr.New(solverr.BadArgument, "mesh normals must match vertex count")
	}
	if uvs != nil && len(uvs) != len(positions) {
		return nil, solverr.New(solverr.BadArgument, "mesh uvs must match vertex count")
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(positions) {
			return nil, solverr.New(solverr.BadArgument, "mesh triangle index out of range")
		}
	}

	m := &Mesh{Positions: positions, Normals: normals, UVs: uvs, Indices: indices}
	m.computeAreas()
	return m, nil
}

func (m *Mesh) computeAreas() {
	n := len(m.Indices) / 3
	m.triangleAreas = make([]float64, n)
	for i := 0; i < n; i++ {
		v0, v1, v2 := m.TriangleVertices(i)
		area := v1.Subtract(v0).Cross(v2.Subtract(v0)).Length() * 0.5
		m.triangleAreas[i] = area
		m.totalArea += area
	}
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// TriangleVertices returns the three vertex positions of triangle i.
func (m *Mesh) TriangleVertices(i int) (v0, v1, v2 vecmath.Vec3) {
	base := i * 3
	return m.Positions[m.Indices[base]], m.Positions[m.Indices[base+1]], m.Positions[m.Indices[base+2]]
}

// TriangleArea returns the precomputed area of triangle i, accumulated from
// its cross-product as per spec.md §4.1.
func (m *Mesh) TriangleArea(i int) float64 { return m.triangleAreas[i] }

// Area returns the mesh's total area (accumulated from per-triangle
// cross-products, spec.md §4.1).
func (m *Mesh) Area() float64 { return m.totalArea }

// Proxies returns the ray-tracing and sampling proxies for this shape. A
// bare Mesh has no punched-surface duality, so both proxies are itself
// (spec.md §4.5 distinguishes accelerators "only by which shape-proxy is
// attached"; a flat mesh has only one proxy to offer).
func (m *Mesh) Proxies() (rt, sampling *Mesh) { return m, m }

// BoundingBox returns the mesh's axis-aligned bounding box.
func (m *Mesh) BoundingBox() (min, max vecmath.Vec3) {
	if len(m.Positions) == 0 {
		return vecmath.Vec3{}, vecmath.Vec3{}
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min = vecmath.NewVec3(minf(min.X, p.X), minf(min.Y, p.Y), minf(min.Z, p.Z))
		max = vecmath.NewVec3(maxf(max.X, p.X), maxf(max.Y, p.Y), maxf(max.Z, p.Z))
	}
	return min, max
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
