// Package sink implements the receiver hit log of spec.md §6: a
// fixed-layout binary record per receiver visit, and a writer that
// serializes concurrent appends so records from distinct solver threads
// never interleave.
//
// Grounded on the teacher's pkg/loaders/ply.go for the idiom of a small
// binary-format package built directly on encoding/binary with its own
// round-trip test, adapted here from a bulk file loader to a streaming
// per-record appender.
package sink

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/arfontalvo/solstice/internal/solverr"
)

// RecordSize is the exact on-wire size in bytes of one Record (spec.md §6).
const RecordSize = 8 + 8 + 4 + 4 + 4 + 4*3 + 4*3 + 4*3 + 8 + 4*2

// Record is one receiver-hit log entry, laid out exactly per spec.md §6.
// Fields are written in declaration order with no padding: the wire format
// is not Go's in-memory struct layout, which is why Write/decode walk the
// fields individually rather than binary.Write(w, order, &record).
type Record struct {
	RealisationID uint64
	Date          int64 // always 0 in this version
	SegmentID     uint32
	ReceiverID    int32 // +instance_id for FRONT, -instance_id for BACK
	Wavelength    float32
	Pos           [3]float32
	InDir         [3]float32
	Normal        [3]float32
	Weight        float64
	UV            [2]float32
}

// Encode appends the record's fixed-layout binary form to buf, little
// endian throughout.
func (r Record) Encode(buf *bytes.Buffer) {
	var scratch [8]byte
	order := binary.LittleEndian

	order.PutUint64(scratch[:8], r.RealisationID)
	buf.Write(scratch[:8])
	order.PutUint64(scratch[:8], uint64(r.Date))
	buf.Write(scratch[:8])
	order.PutUint32(scratch[:4], r.SegmentID)
	buf.Write(scratch[:4])
	order.PutUint32(scratch[:4], uint32(r.ReceiverID))
	buf.Write(scratch[:4])
	putFloat32(buf, scratch[:4], r.Wavelength)
	for _, v := range r.Pos {
		putFloat32(buf, scratch[:4], v)
	}
	for _, v := range r.InDir {
		putFloat32(buf, scratch[:4], v)
	}
	for _, v := range r.Normal {
		putFloat32(buf, scratch[:4], v)
	}
	order.PutUint64(scratch[:8], math.Float64bits(r.Weight))
	buf.Write(scratch[:8])
	for _, v := range r.UV {
		putFloat32(buf, scratch[:4], v)
	}
}

func putFloat32(buf *bytes.Buffer, scratch []byte, v float32) {
	binary.LittleEndian.PutUint32(scratch, math.Float32bits(v))
	buf.Write(scratch)
}

// Decode reads one fixed-layout record from r, for round-trip testing and
// offline inspection of a sink's output.
func Decode(r io.Reader) (Record, error) {
	raw := make([]byte, RecordSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		if err == io.EOF {
			return Record{}, err
		}
		return Record{}, solverr.New(solverr.IoError, "sink: short read decoding record")
	}

	order := binary.LittleEndian
	var rec Record
	off := 0
	rec.RealisationID = order.Uint64(raw[off:])
	off += 8
	rec.Date = int64(order.Uint64(raw[off:]))
	off += 8
	rec.SegmentID = order.Uint32(raw[off:])
	off += 4
	rec.ReceiverID = int32(order.Uint32(raw[off:]))
	off += 4
	rec.Wavelength = math.Float32frombits(order.Uint32(raw[off:]))
	off += 4
	for i := range rec.Pos {
		rec.Pos[i] = math.Float32frombits(order.Uint32(raw[off:]))
		off += 4
	}
	for i := range rec.InDir {
		rec.InDir[i] = math.Float32frombits(order.Uint32(raw[off:]))
		off += 4
	}
	for i := range rec.Normal {
		rec.Normal[i] = math.Float32frombits(order.Uint32(raw[off:]))
		off += 4
	}
	rec.Weight = math.Float64frombits(order.Uint64(raw[off:]))
	off += 8
	for i := range rec.UV {
		rec.UV[i] = math.Float32frombits(order.Uint32(raw[off:]))
		off += 4
	}
	return rec, nil
}
