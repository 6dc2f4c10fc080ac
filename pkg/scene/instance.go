package scene

import "github.com/arfontalvo/solstice/pkg/vecmath"

// ReceiverMask tags which side(s) of an instance are scoring receivers
// (spec.md §6 "receiver_id = +instance_id for FRONT, -instance_id for
// BACK").
type ReceiverMask uint8

const (
	ReceiverNone  ReceiverMask = 0
	ReceiverFront ReceiverMask = 1 << 0
	ReceiverBack  ReceiverMask = 1 << 1
)

// Side identifies which face of a primitive a ray struck.
type Side int

const (
	Front Side = iota
	Back
)

// Instance places a shared Object in world space. Its ID is the basis of
// the receiver hit log's signed receiver_id (spec.md §6); the hit filter's
// self-intersection test (spec.md §4.1) compares primitives and sides, not
// IDs.
type Instance struct {
	ID        uint64
	Object    *Object
	Transform vecmath.Affine
	Receiver  ReceiverMask

	// Sample excludes the instance from the sampling scene when false,
	// while keeping it in the ray-tracing scene (spec.md §4.5).
	Sample bool

	// PerPrimitiveScoring additionally accumulates a per-triangle estimator
	// entry for this instance (spec.md §8 property E5).
	PerPrimitiveScoring bool
}

// NewInstance builds an Instance with Sample defaulting to true.
func NewInstance(id uint64, object *Object, transform vecmath.Affine, receiver ReceiverMask) *Instance {
	return &Instance{ID: id, Object: object, Transform: transform, Receiver: receiver, Sample: true}
}

// ReceiverID returns the signed receiver identifier for the given side, or
// 0 if that side is not tagged as a receiver (spec.md §6).
func (inst *Instance) ReceiverID(side Side) (int64, bool) {
	switch side {
	case Front:
		if inst.Receiver&ReceiverFront != 0 {
			return int64(inst.ID), true
		}
	case Back:
		if inst.Receiver&ReceiverBack != 0 {
			return -int64(inst.ID), true
		}
	}
	return 0, false
}

// excludedFromSampling reports whether this instance should be left out of
// the sampling scene (spec.md §4.5).
func (inst *Instance) excludedFromSampling() bool {
	return !inst.Sample || inst.Object.isAllVirtual()
}
