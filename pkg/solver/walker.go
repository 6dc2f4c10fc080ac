package solver

import (
	"math"

	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/estimator"
	"github.com/arfontalvo/solstice/pkg/material"
	"github.com/arfontalvo/solstice/pkg/rng"
	"github.com/arfontalvo/solstice/pkg/scene"
	"github.com/arfontalvo/solstice/pkg/sink"
	"github.com/arfontalvo/solstice/pkg/spectrum"
	"github.com/arfontalvo/solstice/pkg/sun"
	"github.com/arfontalvo/solstice/pkg/vecmath"
)

// DefaultMaxDepth is the walk's default scatter-event budget D (spec.md
// §4.4 "For up to D = 4 scatter events").
const DefaultMaxDepth = 4

// shadowEpsilon and bounceEpsilon guard against immediate self-intersection
// at a ray's own origin; the hit filter's self-intersection rejection
// (spec.md §4.1) already excludes the exact departure primitive, but a small
// tMin still protects against a coplanar neighbour at the same point.
const shadowEpsilon = 1e-6
const bounceEpsilon = 1e-6

// walker drives one thread's share of the realisation loop: one scene, one
// sun, an optional atmosphere, and the partial estimator and sink this
// thread's realisations accumulate into (spec.md §5 "Per-thread mutable
// state: one RNG stream ... one partial estimator table").
type walker struct {
	scene      *scene.Scene
	sun        *sun.Sun
	atmosphere *spectrum.Atmosphere
	maxDepth   int
	sink       *sink.Writer
	tracker    *pathTracker

	est *estimator.Estimator
}

// runRealisation executes the per-realisation algorithm of spec.md §4.4
// steps 1-7 once, folding its contribution into w.est.
func (w *walker) runRealisation(src *rng.Source, id uint64) error {
	origin, geomNormal, _, prim, ok := w.scene.SampleOrigin(src)
	if !ok {
		return solverr.New(solverr.BadOperation, "solver: sampling scene has no area to sample from")
	}
	primary := prim.Instance
	area := prim.Area()
	sampledArea := w.scene.SamplingArea()

	sunDir := w.sun.SampleDirection(src)
	wavelength := w.sun.SampleWavelength(src)

	cosTheta := sunDir.Dot(geomNormal)
	absCos := math.Abs(cosTheta)
	weight := w.sun.DNI * sampledArea * absCos
	cosLoss := w.sun.DNI * sampledArea * (1 - absCos)

	w.est.RecordOrigin(primary, area, absCos)
	w.est.RecordCosLoss(primary, cosLoss)

	side := scene.Front
	normal := geomNormal
	if cosTheta >= 0 {
		side = scene.Back
		normal = geomNormal.Negate()
	}

	if w.tracker != nil {
		w.tracker.begin(id, origin, sunDir, weight)
	}

	shadowRay := vecmath.NewRay(origin, sunDir.Negate())
	if w.scene.Occluded(shadowRay, shadowEpsilon, math.Inf(1), prim, side) {
		w.est.RecordShadowed(primary, weight)
		if w.tracker != nil {
			w.tracker.finish(TerminalShadow, origin, sunDir)
		}
		return nil
	}

	visitedReceiver := false
	absorptivityLoss := 0.0
	reflectivityLoss := 0.0

	currentPrim := prim
	currentSide := side
	currentPoint := origin
	currentNormal := normal
	rayDir := sunDir
	depth := 0

	terminal := TerminalSuccess
	for {
		if _, isReceiver := currentPrim.Instance.ReceiverID(currentSide); isReceiver {
			visitedReceiver = true
			if err := w.scoreReceiver(id, currentPrim, currentSide, primary, wavelength, weight, absorptivityLoss, reflectivityLoss, cosLoss, currentPoint, rayDir, currentNormal, depth); err != nil {
				return err
			}
		}

		mat := currentPrim.Material(currentSide)
		if mat == nil || mat.IsVirtual() {
			// Advance past the current hit along the same direction without
			// consuming the scatter-event budget (spec.md §4.4 step 6
			// "advance the ray to just past the current hit distance along
			// its current direction").
			nextHit, hit := w.scene.Trace(vecmath.NewRay(currentPoint, rayDir), bounceEpsilon, math.Inf(1), scene.RayQuery{From: currentPrim, FromSide: currentSide})
			if !hit {
				terminal = TerminalMissing
				break
			}
			weight = w.applyAtmosphere(wavelength, nextHit.T, weight, &absorptivityLoss)
			currentPrim, currentSide, currentPoint, currentNormal = nextHit.Primitive, nextHit.Side, nextHit.Point, nextHit.Normal
			continue
		}

		if depth >= w.maxDepth {
			break
		}

		frag := material.SurfaceFragment{
			Point:          currentPoint,
			Incoming:       rayDir,
			GeometryNormal: currentNormal,
			ShadingNormal:  currentNormal,
		}
		result, survives, err := mat.Sample(src, frag, material.Vacuum)
		if err != nil {
			return err
		}
		if !survives {
			reflectivityLoss += weight
			weight = 0
			break
		}

		r := result.Reflectance
		if result.PDF > 0 {
			r *= result.Direction.Dot(currentNormal)
		}
		reflectivityLoss += (1 - r) * weight
		weight *= r
		if weight <= 0 {
			break
		}
		depth++

		nextRay := vecmath.NewRay(currentPoint, result.Direction)
		nextHit, hit := w.scene.Trace(nextRay, bounceEpsilon, math.Inf(1), scene.RayQuery{From: currentPrim, FromSide: currentSide})
		if !hit {
			rayDir = result.Direction
			terminal = TerminalMissing
			break
		}
		weight = w.applyAtmosphere(wavelength, nextHit.T, weight, &absorptivityLoss)
		currentPrim, currentSide, currentPoint, currentNormal, rayDir = nextHit.Primitive, nextHit.Side, nextHit.Point, nextHit.Normal, result.Direction
	}

	if !visitedReceiver {
		w.est.RecordMissing(weight)
	}
	if w.tracker != nil {
		w.tracker.finish(terminal, currentPoint, rayDir)
	}
	return nil
}

// applyAtmosphere attenuates weight by the Beer's-law transmittance of the
// ray segment just traversed when an atmosphere is attached (spec.md §4.4
// step 6).
func (w *walker) applyAtmosphere(wavelength, distance, weight float64, absorptivityLoss *float64) float64 {
	if w.atmosphere == nil {
		return weight
	}
	tau := w.atmosphere.Transmittance(wavelength, distance)
	*absorptivityLoss += (1 - tau) * weight
	return weight * tau
}

// scoreReceiver folds one visit to a receiver-tagged side into the partial
// estimator and, when a sink is attached, appends the fixed-layout hit
// record of spec.md §6.
func (w *walker) scoreReceiver(realisationID uint64, prim *scene.Primitive, side scene.Side, primary *scene.Instance, wavelength, weight, absorptivityLoss, reflectivityLoss, cosLoss float64, point, inDir, normal vecmath.Vec3, depth int) error {
	key := estimator.ReceiverKey{Instance: prim.Instance, Side: side}
	triangle := -1
	if prim.Instance.PerPrimitiveScoring {
		triangle = prim.TriangleIndex
	}
	w.est.ScoreReceiver(key, primary, triangle, weight, absorptivityLoss, reflectivityLoss, cosLoss)

	if w.tracker != nil {
		w.tracker.record(point, weight)
	}

	if w.sink == nil {
		return nil
	}
	receiverID, _ := prim.Instance.ReceiverID(side)
	return w.sink.Write(sink.Record{
		RealisationID: realisationID,
		SegmentID:     uint32(depth),
		ReceiverID:    int32(receiverID),
		Wavelength:    float32(wavelength),
		Pos:           [3]float32{float32(point.X), float32(point.Y), float32(point.Z)},
		InDir:         [3]float32{float32(inDir.X), float32(inDir.Y), float32(inDir.Z)},
		Normal:        [3]float32{float32(normal.X), float32(normal.Y), float32(normal.Z)},
		Weight:        weight,
	})
}
