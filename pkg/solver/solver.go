// Package solver implements the path-trace realisation loop of spec.md
// §4.4-§5: the per-realisation random walk (walker.go), its concurrent
// fan-out across worker threads with an atomic error latch, and the
// post-loop merge into a single estimator.
//
// Grounded on the teacher's pkg/integrator/path_tracing.go for the
// random-walk control-flow idiom and pkg/renderer/worker_pool.go for the
// parallel-worker shape, generalized here from a channel/WaitGroup pool to
// an errgroup fan-out per original_source/src/ssol_solver.c's static
// per-thread realisation split and atomic error latch.
package solver

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arfontalvo/solstice/internal/obslog"
	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/estimator"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/scene"
	"github.com/arfontalvo/solstice/pkg/sink"
	"github.com/arfontalvo/solstice/pkg/spectrum"
	"github.com/arfontalvo/solstice/pkg/sun"
)

// Config configures one solve (spec.md §4.4/§5).
type Config struct {
	Scene        *scene.Scene
	Sun          *sun.Sun
	Atmosphere   *spectrum.Atmosphere // nil: no attenuation
	Realisations uint64
	Seed         uint64 // the caller's initial RNG state (spec.md §5)
	Threads      int    // 0: runtime.NumCPU()
	MaxDepth     int    // 0: DefaultMaxDepth

	// Sink, if non-nil, receives one fixed-layout record per receiver visit
	// (spec.md §6). Records carry no run identifier, so records from
	// concurrent solves sharing one sink cannot be told apart by run.
	Sink *sink.Writer
	// RunID tags this solve's log lines and, if zero, is generated fresh;
	// it never appears in the sink's wire-format records, which stay
	// exactly as spec.md §6 defines them.
	RunID uuid.UUID

	// Path, if non-nil, enables per-realisation path recording (spec.md
	// §4.4 "Path recording").
	Path *PathConfig

	Logger obslog.Logger // nil: obslog.Nop{}
}

// Solve runs Config.Realisations realisations across Config.Threads worker
// goroutines and returns the merged estimator (spec.md §4.4, §5). On the
// first error raised by any thread, the shared context is cancelled, every
// other thread finishes its current realisation and exits without starting
// another, and every partial is discarded: the caller receives only the
// latched error (spec.md §7 "Partial estimators from failing threads are
// discarded").
func Solve(ctx context.Context, cfg Config) (*estimator.Estimator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = obslog.Nop{}
	}
	if cfg.RunID == uuid.Nil {
		cfg.RunID = uuid.New()
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	sampledArea := cfg.Scene.SamplingArea()
	if sampledArea <= 0 {
		return nil, solverr.New(solverr.BadOperation, "solver: scene has an empty sampling area")
	}

	logger.Printf("solve %s: starting %d realisations across %d threads", cfg.RunID, cfg.Realisations, threads)

	ranges := realisationRanges(cfg.Realisations, threads)
	partials := make([]*estimator.Estimator, threads)

	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < threads; t++ {
		t := t
		rg := ranges[t]
		g.Go(func() error {
			src := rng.NewSource(cfg.Seed, uint64(t))
			partial := estimator.New(sampledArea, sampledArea)
			var tracker *pathTracker
			if cfg.Path != nil {
				tracker = newPathTracker(*cfg.Path)
			}
			w := &walker{
				scene:      cfg.Scene,
				sun:        cfg.Sun,
				atmosphere: cfg.Atmosphere,
				maxDepth:   maxDepth,
				sink:       cfg.Sink,
				tracker:    tracker,
				est:        partial,
			}

			for i := uint64(0); i < rg.count; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				id := rg.start + i
				if err := w.runRealisation(src, id); err != nil {
					return err
				}
				partial.RealisationCount++
			}
			partials[t] = partial
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Printf("solve %s: failed: %v", cfg.RunID, err)
		return nil, err
	}

	merged := estimator.Merge(partials)
	logger.Printf("solve %s: completed %d realisations", cfg.RunID, merged.RealisationCount)
	return merged, nil
}

type realisationRange struct {
	start, count uint64
}

// realisationRanges splits total realisations into threads contiguous,
// statically-assigned blocks (spec.md §5 "distributes realisation indices
// statically across threads; there is no inter-realisation communication").
func realisationRanges(total uint64, threads int) []realisationRange {
	ranges := make([]realisationRange, threads)
	base := total / uint64(threads)
	rem := total % uint64(threads)
	var cursor uint64
	for t := 0; t < threads; t++ {
		count := base
		if uint64(t) < rem {
			count++
		}
		ranges[t] = realisationRange{start: cursor, count: count}
		cursor += count
	}
	return ranges
}
