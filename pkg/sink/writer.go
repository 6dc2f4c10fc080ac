package sink

import (
	"bytes"
	"io"
	"sync"

	"github.com/arfontalvo/solstice/internal/solverr"
)

// Writer appends Records to an underlying io.Writer, serializing concurrent
// calls so records from distinct solver threads are never interleaved
// (spec.md §6: "writes from distinct threads must not interleave partial
// records (serialised at the sink)").
type Writer struct {
	mu  sync.Mutex
	dst io.Writer
}

// NewWriter wraps dst as a receiver hit log sink.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst}
}

// Write appends one record. The record is encoded into a scratch buffer
// before the lock is held only long enough to perform the underlying write,
// so encoding cost is not serialized across threads, only the I/O itself.
func (w *Writer) Write(rec Record) error {
	var buf bytes.Buffer
	buf.Grow(RecordSize)
	rec.Encode(&buf)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.dst.Write(buf.Bytes()); err != nil {
		return solverr.New(solverr.IoError, "sink: failed to write receiver hit record")
	}
	return nil
}

// WriteBatch appends a realisation's records in order under a single lock
// acquisition, guaranteeing they are never split by a concurrent writer's
// records.
func (w *Writer) WriteBatch(recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	buf.Grow(RecordSize * len(recs))
	for _, rec := range recs {
		rec.Encode(&buf)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.dst.Write(buf.Bytes()); err != nil {
		return solverr.New(solverr.IoError, "sink: failed to write receiver hit record batch")
	}
	return nil
}
