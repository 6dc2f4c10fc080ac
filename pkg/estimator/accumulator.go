// Package estimator implements the Monte-Carlo accumulator tables of
// spec.md §3 "Estimator": a realisation count, global missing/shadow
// weight, a per-receiver table keyed by (instance, side), and a per-primary
// table nesting the same per-receiver shape plus shadow/cosine-loss
// bookkeeping.
//
// Grounded on original_source/src/ssol_estimator_c.h for the exact table
// shape (mc_data, mc_per_receiver_1side_data, mc_per_primary_data); the
// hash tables there become Go maps keyed by instance pointer (and, for the
// top-level receiver table, instance+side) rather than an intrusive
// open-addressing table, since Go's builtin map already does what
// htable_receiver/htable_primary do by hand.
package estimator

import "math"

// Accumulator is the online (sum_w, sum_w²) pair spec.md §3 attaches to
// every named quantity. Mean/variance/standard error are derived against
// the caller-supplied realisation count N, not against how many times Add
// was called — a quantity that was never reached by a given realisation
// implicitly contributes zero, and the Monte-Carlo estimate divides by the
// total number of realisations, not the number of nonzero contributions.
type Accumulator struct {
	SumW  float64
	SumW2 float64
}

// Add records one realisation's contribution w (zero contributions are
// simply not called; N is tracked separately by the owning table).
func (a *Accumulator) Add(w float64) {
	a.SumW += w
	a.SumW2 += w * w
}

// Merge folds another accumulator's sums into this one (spec.md §9:
// "the merge step ... sums paired (sum_w, sum_w²). Merge order is
// irrelevant numerically at the precision required.").
func (a *Accumulator) Merge(o Accumulator) {
	a.SumW += o.SumW
	a.SumW2 += o.SumW2
}

// Mean returns sum_w / n.
func (a Accumulator) Mean(n uint64) float64 {
	if n == 0 {
		return 0
	}
	return a.SumW / float64(n)
}

// Variance returns sum_w²/n − mean².
func (a Accumulator) Variance(n uint64) float64 {
	if n == 0 {
		return 0
	}
	mean := a.Mean(n)
	v := a.SumW2/float64(n) - mean*mean
	if v < 0 {
		// Rounding can push a near-zero variance slightly negative.
		v = 0
	}
	return v
}

// StandardError returns sqrt(variance/n).
func (a Accumulator) StandardError(n uint64) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(a.Variance(n) / float64(n))
}
