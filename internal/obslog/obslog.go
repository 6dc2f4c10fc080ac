// Package obslog wraps zap behind the small Logger interface the solver
// packages consume, the way gopher3D's internal/engine wraps zap behind its
// own logging seam.
package obslog

import (
	"go.uber.org/zap"
)

// Logger is the consumer-facing logging seam (spec.md §6 specifies logging
// only at the boundary). Printf-style so callers outside this module can
// plug in their own logger without importing zap.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Zap adapts a *zap.SugaredLogger to Logger.
type Zap struct {
	sugar *zap.SugaredLogger
}

// NewProduction builds a Zap logger backed by zap's production config.
func NewProduction() (*Zap, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Zap{sugar: l.Sugar()}, nil
}

// NewDevelopment builds a Zap logger backed by zap's development config
// (human-readable, used by cmd/solstice and tests).
func NewDevelopment() (*Zap, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Zap{sugar: l.Sugar()}, nil
}

func (z *Zap) Printf(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

// Fields mirrors the structured fields attached to solve/setup log lines.
func (z *Zap) Fields(msg string, keysAndValues ...interface{}) {
	z.sugar.Infow(msg, keysAndValues...)
}

// Sync flushes any buffered log entries.
func (z *Zap) Sync() error { return z.sugar.Sync() }

// Nop is a Logger that discards everything, used as the default when the
// caller does not supply one.
type Nop struct{}

func (Nop) Printf(string, ...interface{}) {}
