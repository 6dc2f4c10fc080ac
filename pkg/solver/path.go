package solver

import "github.com/arfontalvo/solstice/pkg/vecmath"

// Terminal classifies how a recorded path ended (spec.md §4.4 "Path
// recording ... the terminal classification").
type Terminal int

const (
	TerminalMissing Terminal = iota
	TerminalShadow
	TerminalSuccess
)

func (t Terminal) String() string {
	switch t {
	case TerminalMissing:
		return "missing"
	case TerminalShadow:
		return "shadow"
	case TerminalSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// PathVertex is one recorded point along a walk, with the Monte-Carlo
// weight carried at that point.
type PathVertex struct {
	Point  vecmath.Vec3
	Weight float64
}

// Path is one realisation's recorded walk: its vertices in walk order
// (including the sun-side and, on a miss, sky-side sentinel vertices) and
// its terminal classification.
type Path struct {
	RealisationID uint64
	Vertices      []PathVertex
	Terminal      Terminal
}

// PathConfig configures optional per-realisation path recording (spec.md
// §4.4 "Path recording"). A recorded path holds the sun-side sentinel, the
// origin sample, one vertex per receiver visit and, on a miss, the sky-side
// sentinel; scatter points on surfaces that are not receivers are not
// recorded.
type PathConfig struct {
	// SunRayLength is the distance the sun-side sentinel vertex is placed
	// back toward the sun from the origin sample.
	SunRayLength float64
	// InfiniteRayLength is the distance the sky-side sentinel vertex is
	// placed along a ray that ultimately misses the scene.
	InfiniteRayLength float64
	// OnPath receives each completed realisation's recorded path. It is
	// called from whichever worker thread produced the path, so it must be
	// safe for concurrent use.
	OnPath func(Path)
}

// pathTracker accumulates one in-flight realisation's vertices before
// handing the finished Path to PathConfig.OnPath. One pathTracker is reused
// across a thread's realisations, matching the walker's one-per-thread
// scratch-state pattern (spec.md §5).
type pathTracker struct {
	cfg   PathConfig
	id    uint64
	verts []PathVertex
}

func newPathTracker(cfg PathConfig) *pathTracker {
	return &pathTracker{cfg: cfg}
}

// begin starts a new realisation's path: the sun-side sentinel extended
// back toward the sun from origin, followed by origin itself.
func (t *pathTracker) begin(id uint64, origin, sunDir vecmath.Vec3, weight float64) {
	t.id = id
	t.verts = t.verts[:0]
	sentinel := origin.Subtract(sunDir.Multiply(t.cfg.SunRayLength))
	t.verts = append(t.verts, PathVertex{Point: sentinel, Weight: weight}, PathVertex{Point: origin, Weight: weight})
}

// record appends one walk vertex.
func (t *pathTracker) record(point vecmath.Vec3, weight float64) {
	t.verts = append(t.verts, PathVertex{Point: point, Weight: weight})
}

// finish appends the sky-side sentinel on a miss, then hands the completed
// path to the configured callback.
func (t *pathTracker) finish(terminal Terminal, lastPoint, lastDir vecmath.Vec3) {
	if terminal == TerminalMissing {
		sky := lastPoint.Add(lastDir.Multiply(t.cfg.InfiniteRayLength))
		t.verts = append(t.verts, PathVertex{Point: sky, Weight: 0})
	}
	if t.cfg.OnPath == nil {
		return
	}
	t.cfg.OnPath(Path{
		RealisationID: t.id,
		Vertices:      append([]PathVertex(nil), t.verts...),
		Terminal:      terminal,
	})
}
