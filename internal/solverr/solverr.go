// Package solverr defines the error kinds of the solstice solver (spec.md §7).
//
// Errors are not distinct Go types per kind; instead a Kind is attached to an
// underlying cause via pkg/errors so that setup failures keep their stack
// context while callers can still dispatch on the kind with Is/KindOf.
package solverr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories a solstice operation can raise.
type Kind int

const (
	// BadArgument means the caller violated a contract: nil input,
	// out-of-range index, inconsistent sizes, unknown variant tag,
	// non-positive focal length, negative extinction, eta <= 0, a
	// non-monotone spectrum, or mismatched sun/atmosphere spectral ranges.
	BadArgument Kind = iota
	// MemoryError means allocation failed; the caller must fully unwind.
	MemoryError
	// BadOperation means an operational inconsistency: a medium mismatch
	// at a dielectric boundary, an empty sampling scene, or attaching a
	// resource that is already attached elsewhere.
	BadOperation
	// IoError means a downstream sink write failed.
	IoError
	// Unreachable means an internal invariant was violated; fatal.
	Unreachable
)

func (k Kind) String() string {
	switch k {
	case BadArgument:
		return "bad_argument"
	case MemoryError:
		return "memory_error"
	case BadOperation:
		return "bad_operation"
	case IoError:
		return "io_error"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// kindError wraps a cause with a Kind so errors.Is/As can dispatch on it.
type kindError struct {
	kind  Kind
	cause error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.cause)
}

func (e *kindError) Unwrap() error { return e.cause }

// New builds a new error of the given kind with a message, recording a stack
// trace at the call site the way pkg/errors.New does.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, cause: errors.New(msg)}
}

// Newf builds a new error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, cause: errors.Errorf(format, args...)}
}

// Wrap attaches a kind to an existing error, preserving its cause chain.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, cause: errors.Wrap(err, msg)}
}

// KindOf returns the Kind attached to err, and whether one was found by
// walking the cause chain.
func KindOf(err error) (Kind, bool) {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
