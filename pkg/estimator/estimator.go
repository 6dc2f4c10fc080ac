package estimator

import "github.com/arfontalvo/solstice/pkg/scene"

// ReceiverKey identifies one (instance, side) receiver-tagged surface
// (spec.md §3 "a per-receiver table keyed by instance-pointer-and-side").
type ReceiverKey struct {
	Instance *scene.Instance
	Side     scene.Side
}

// ReceiverAccumulators holds the four named quantities spec.md §3 attaches
// to a receiver-tagged side: integrated irradiance, absorptivity loss,
// reflectivity loss, and cosine loss.
type ReceiverAccumulators struct {
	Irradiance       Accumulator
	AbsorptivityLoss Accumulator
	ReflectivityLoss Accumulator
	CosLoss          Accumulator
}

func (r *ReceiverAccumulators) merge(o *ReceiverAccumulators) {
	r.Irradiance.Merge(o.Irradiance)
	r.AbsorptivityLoss.Merge(o.AbsorptivityLoss)
	r.ReflectivityLoss.Merge(o.ReflectivityLoss)
	r.CosLoss.Merge(o.CosLoss)
}

// PrimitiveKey identifies one triangle of one receiver-tagged side, used
// only when PerPrimitiveScoring is enabled on the sampled instance
// (spec.md §4.4 "If per-primitive scoring is on, also add to the
// primitive-indexed nested accumulator").
type PrimitiveKey struct {
	ReceiverKey
	Triangle int
}

// PrimaryData is the per-sampled-instance entry: shadow and cosine loss
// accumulated at the origin primitive, plus the nested per-receiver table
// reaching the same four quantities for every (primary, receiver) pair that
// this primary's walks actually visited (spec.md §3).
type PrimaryData struct {
	CosLoss    Accumulator
	ShadowLoss Accumulator
	Area       float64

	baseSunCosSum float64
	NbSamples     uint64
	NbFailed      uint64

	ByReceiver map[ReceiverKey]*ReceiverAccumulators
}

// BaseSunCos returns the running mean of |cos θ| at the origin sample for
// this primary (original_source/src/ssol_estimator_c.h's base_sun_cos,
// supplemented per SPEC_FULL.md).
func (p *PrimaryData) BaseSunCos() float64 {
	if p.NbSamples == 0 {
		return 0
	}
	return p.baseSunCosSum / float64(p.NbSamples)
}

func newPrimaryData(area float64) *PrimaryData {
	return &PrimaryData{Area: area, ByReceiver: make(map[ReceiverKey]*ReceiverAccumulators)}
}

func (p *PrimaryData) receiver(key ReceiverKey) *ReceiverAccumulators {
	r, ok := p.ByReceiver[key]
	if !ok {
		r = &ReceiverAccumulators{}
		p.ByReceiver[key] = r
	}
	return r
}

func (p *PrimaryData) merge(o *PrimaryData) {
	p.CosLoss.Merge(o.CosLoss)
	p.ShadowLoss.Merge(o.ShadowLoss)
	p.baseSunCosSum += o.baseSunCosSum
	p.NbSamples += o.NbSamples
	p.NbFailed += o.NbFailed
	for key, acc := range o.ByReceiver {
		p.receiver(key).merge(acc)
	}
}

// Estimator is one partial (per-thread) or merged (final) accumulator
// table, matching the shape of original_source/src/ssol_estimator_c.h's
// ssol_estimator.
type Estimator struct {
	RealisationCount uint64
	FailedCount      uint64

	GlobalShadow  Accumulator
	GlobalMissing Accumulator

	Receivers map[ReceiverKey]*ReceiverAccumulators
	Primaries map[*scene.Instance]*PrimaryData
	Primitives map[PrimitiveKey]*ReceiverAccumulators // sparse, only when scoring is per-primitive

	SampledArea float64
	PrimaryArea float64
}

// New returns an empty partial estimator. sampledArea and primaryArea are
// the scene's cached sampling-scene and ray-tracing-scene areas (spec.md
// §3 "Scene ... cached: the summed area of the sampling scene").
func New(sampledArea, primaryArea float64) *Estimator {
	return &Estimator{
		Receivers:   make(map[ReceiverKey]*ReceiverAccumulators),
		Primaries:   make(map[*scene.Instance]*PrimaryData),
		Primitives:  make(map[PrimitiveKey]*ReceiverAccumulators),
		SampledArea: sampledArea,
		PrimaryArea: primaryArea,
	}
}

func (e *Estimator) receiver(key ReceiverKey) *ReceiverAccumulators {
	r, ok := e.Receivers[key]
	if !ok {
		r = &ReceiverAccumulators{}
		e.Receivers[key] = r
	}
	return r
}

// primary returns the per-primary entry for instance, or nil if the
// instance is not sample-enabled (mirrors
// ssol_estimator_c.h's estimator_get_primary_entity_data: "if
// (!instance->sample) return NULL").
func (e *Estimator) primary(instance *scene.Instance, area float64) *PrimaryData {
	if !instance.Sample {
		return nil
	}
	p, ok := e.Primaries[instance]
	if !ok {
		p = newPrimaryData(area)
		e.Primaries[instance] = p
	}
	return p
}

// RecordOrigin records one realisation's origin sample against its primary
// instance: the running base-sun-cosine mean and the sample counter
// (spec.md §4.4 step 3, supplemented per SPEC_FULL.md's base_sun_cos).
func (e *Estimator) RecordOrigin(primary *scene.Instance, area, baseSunCos float64) {
	p := e.primary(primary, area)
	if p == nil {
		return
	}
	p.baseSunCosSum += baseSunCos
	p.NbSamples++
}

// RecordShadowed scores a shadowed realisation's weight into the global and
// per-primary shadow accumulators and the primary's failed-sample counter
// (spec.md §4.4 step 5).
func (e *Estimator) RecordShadowed(primary *scene.Instance, weight float64) {
	e.GlobalShadow.Add(weight)
	e.FailedCount++
	if p := e.Primaries[primary]; p != nil {
		p.ShadowLoss.Add(weight)
		p.NbFailed++
	}
}

// RecordCosLoss scores a realisation's cosine loss into the per-primary
// accumulator (spec.md §4.4 step 3).
func (e *Estimator) RecordCosLoss(primary *scene.Instance, cosLoss float64) {
	if p := e.Primaries[primary]; p != nil {
		p.CosLoss.Add(cosLoss)
	}
}

// RecordMissing scores a realisation's surviving weight into the global
// missing accumulator when no receiver side was ever visited (spec.md §4.4
// step 7).
func (e *Estimator) RecordMissing(weight float64) {
	e.GlobalMissing.Add(weight)
}

// ScoreReceiver adds one realisation's irradiance/loss contributions to the
// side's top-level receiver accumulators, the sampled primary's nested
// per-receiver accumulators, and — when triangle >= 0 — the sparse
// per-primitive table (spec.md §4.4 step 6).
func (e *Estimator) ScoreReceiver(key ReceiverKey, primary *scene.Instance, triangle int, irradiance, absorptivityLoss, reflectivityLoss, cosLoss float64) {
	add := func(r *ReceiverAccumulators) {
		r.Irradiance.Add(irradiance)
		r.AbsorptivityLoss.Add(absorptivityLoss)
		r.ReflectivityLoss.Add(reflectivityLoss)
		r.CosLoss.Add(cosLoss)
	}

	add(e.receiver(key))

	if p := e.Primaries[primary]; p != nil {
		add(p.receiver(key))
	}

	if triangle >= 0 {
		pk := PrimitiveKey{ReceiverKey: key, Triangle: triangle}
		r, ok := e.Primitives[pk]
		if !ok {
			r = &ReceiverAccumulators{}
			e.Primitives[pk] = r
		}
		add(r)
	}
}

// Merge folds another partial estimator's tallies into this one, unioning
// every key and summing paired accumulators, as described in spec.md §9
// ("the merge step iterates the union of keys ... and sums paired
// (sum_w, sum_w²)").
func (e *Estimator) Merge(o *Estimator) {
	e.RealisationCount += o.RealisationCount
	e.FailedCount += o.FailedCount
	e.GlobalShadow.Merge(o.GlobalShadow)
	e.GlobalMissing.Merge(o.GlobalMissing)

	for key, acc := range o.Receivers {
		e.receiver(key).merge(acc)
	}
	for instance, data := range o.Primaries {
		p, ok := e.Primaries[instance]
		if !ok {
			p = newPrimaryData(data.Area)
			e.Primaries[instance] = p
		}
		p.merge(data)
	}
	for key, acc := range o.Primitives {
		r, ok := e.Primitives[key]
		if !ok {
			r = &ReceiverAccumulators{}
			e.Primitives[key] = r
		}
		r.merge(acc)
	}
}

// Merge unions a slice of partial estimators into one final table, matching
// the post-parallel-loop merge barrier of spec.md §5.
func Merge(partials []*Estimator) *Estimator {
	if len(partials) == 0 {
		return New(0, 0)
	}
	out := New(partials[0].SampledArea, partials[0].PrimaryArea)
	for _, p := range partials {
		out.Merge(p)
	}
	return out
}
