// Package carving implements the 2D polygon contours used to "punch" a
// quadric (spec.md §3/§4.1): an ordered polygon, a clipping operation
// (AND/SUB), and composition of several carvings against a seed
// triangulation.
//
// Grounded on aclements-shade/poly.go for the idiom of a small
// insertion-order polygon-geometry file in an otherwise render-focused
// package, generalized from shadow-polygon tracing to an explicit AND/SUB
// clip. The exact Star-CliPpeR polygon-mesh boolean referenced by spec.md's
// prose is a full computational-geometry subsystem with no counterpart in
// the retrieval pack; this package implements the AND/SUB semantics via
// per-triangle centroid classification against the polygon boundary (a
// point-location test, not edge-splitting), which is sufficient for the
// Monte-Carlo area sampling the rest of the solver performs as long as the
// seed triangulation is fine relative to the carving's features (see
// DESIGN.md).
package carving

import (
	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// Op is the boolean clipping operation a Carving applies.
type Op int

const (
	// AND keeps only the area inside the carving's polygon.
	AND Op = iota
	// SUB removes the area inside the carving's polygon.
	SUB
)

// Carving is an ordered 2D polygon plus the operation it applies when
// composed onto a seed mesh, and an opaque caller context (spec.md §3).
// Vertices are read directly from Vertices; this package stores Context but
// never reads it.
type Carving struct {
	Vertices []vecmath.Vec2
	Op       Op
	Context  interface{}
}

// New builds a Carving, validating that it has at least 3 vertices.
func New(vertices []vecmath.Vec2, op Op, ctx interface{}) (*Carving, error) {
	if len(vertices) < 3 {
		return nil, solverr.New(solverr.BadArgument, "carving requires at least 3 vertices")
	}
	return &Carving{Vertices: vertices, Op: op, Context: ctx}, nil
}

// Bounds returns the axis-aligned bounding rectangle of the carving's
// vertices.
func (c *Carving) Bounds() (min, max vecmath.Vec2) {
	min, max = c.Vertices[0], c.Vertices[0]
	for _, v := range c.Vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
	}
	return
}

// Contains reports whether point p lies inside the polygon using the
// even-odd ray-casting rule.
func (c *Carving) Contains(p vecmath.Vec2) bool {
	inside := false
	n := len(c.Vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := c.Vertices[i], c.Vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xIntersect := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// Bounds returns the axis-aligned bounding rectangle of the union of the
// AND-operation carvings' vertices (spec.md §4.1 step 1), used to seed the
// regular triangulation for non-hemisphere quadrics.
func Bounds(carvings []*Carving) (min, max vecmath.Vec2, ok bool) {
	first := true
	for _, c := range carvings {
		if c.Op != AND {
			continue
		}
		cmin, cmax := c.Bounds()
		if first {
			min, max = cmin, cmax
			first = false
			continue
		}
		if cmin.X < min.X {
			min.X = cmin.X
		}
		if cmin.Y < min.Y {
			min.Y = cmin.Y
		}
		if cmax.X > max.X {
			max.X = cmax.X
		}
		if cmax.Y > max.Y {
			max.Y = cmax.Y
		}
	}
	return min, max, !first
}

// Includes reports whether point p survives the full ordered chain of
// carvings: it must lie inside every AND carving and outside every SUB
// carving that precedes/composes with it (spec.md: "Multiple carvings
// compose left-to-right").
func Includes(carvings []*Carving, p vecmath.Vec2) bool {
	for _, c := range carvings {
		inside := c.Contains(p)
		switch c.Op {
		case AND:
			if !inside {
				return false
			}
		case SUB:
			if inside {
				return false
			}
		}
	}
	return true
}
