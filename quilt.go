// Package quilt assembles byte ranges that arrive in arbitrary order into
// one contiguous buffer, and tracks which ranges are still missing.
//
// A Quilt accepts writes at arbitrary offsets, as data shows up out of
// sequence from chunked downloads, reordered network segments, or sparse
// file writes. At any point it can report the gaps that remain, and it hands
// out the assembled buffer without copying it again: each incoming chunk is
// copied exactly once, into its final position.
package quilt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/dacapoday/quilt/coverage"
	"github.com/dacapoday/quilt/mem"
)

// Quilt is a logical byte buffer accepting writes at arbitrary offsets.
// It owns a backing store holding the bytes and a coverage index recording
// which ranges have been written. Offsets never written read as zero bytes.
//
// Quilt requires no initialization - just declare and use:
//
//	var q Quilt
//	q.PutAt(16, []byte{2, 3})
//	q.PutAt(0, []byte{0, 1})
//
// Quilt is not safe for concurrent use. The store write and the index
// insert inside PutAt are two separate steps; callers sharing a Quilt
// across goroutines must hold one lock around every call.
type Quilt struct {
	store mem.Store
	index coverage.Index
}

// PutAt copies p into the buffer at offset off and records [off, off+len(p))
// as written, growing the buffer as needed. Writing the same offset twice
// keeps the bytes of the last write. An empty p is a no-op.
//
// PutAt either fully applies or rejects the write before any mutation:
// a negative offset fails with ErrInvalidRange, an offset/length combination
// past the addressable size with ErrCapacityOverflow.
func (q *Quilt) PutAt(off int64, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := q.store.WriteAt(p, off); err != nil {
		return err
	}
	return q.index.Add(coverage.Range{Start: off, End: off + int64(len(p))})
}

// FillAt writes n copies of b starting at offset off.
func (q *Quilt) FillAt(off int64, b byte, n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidRange, n)
	}
	if n == 0 {
		return nil
	}
	if n > math.MaxInt {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrCapacityOverflow, n, off)
	}
	return q.PutAt(off, bytes.Repeat([]byte{b}, int(n)))
}

// PutUint8At writes v at offset off.
func (q *Quilt) PutUint8At(off int64, v uint8) error {
	return q.PutAt(off, []byte{v})
}

// PutUint16At writes v at offset off in big-endian (network) byte order.
func (q *Quilt) PutUint16At(off int64, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return q.PutAt(off, b[:])
}

// PutUint32At writes v at offset off in big-endian (network) byte order.
func (q *Quilt) PutUint32At(off int64, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return q.PutAt(off, b[:])
}

// PutUint64At writes v at offset off in big-endian (network) byte order.
func (q *Quilt) PutUint64At(off int64, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return q.PutAt(off, b[:])
}

// WriteAt is PutAt with the io.WriterAt signature, so a Quilt can sit
// behind any random-access copy helper.
func (q *Quilt) WriteAt(p []byte, off int64) (n int, err error) {
	if err := q.PutAt(off, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Reassemble returns the assembled buffer as a shared view, without
// copying. Gaps that were never written read as zero bytes; completeness is
// not required, check Complete or Gaps first if it matters. The view stays
// valid and frozen across later writes to the quilt.
func (q *Quilt) Reassemble() []byte {
	return q.store.Snapshot()
}

// WriteTo writes the assembled buffer to w. It implements io.WriterTo.
func (q *Quilt) WriteTo(w io.Writer) (n int64, err error) {
	return q.store.WriteTo(w)
}

// Gaps returns the ranges of [0, Size()) not yet written, in ascending
// order. The sequence is lazy and can be ranged over any number of times.
func (q *Quilt) Gaps() iter.Seq[coverage.Range] {
	return q.index.Gaps(q.store.Size())
}

// Complete reports whether every byte in [0, Size()) has been written.
func (q *Quilt) Complete() bool {
	return q.index.Covered(q.store.Size())
}

// BytesWritten returns the number of distinct bytes written so far.
// Overlapping writes count once.
func (q *Quilt) BytesWritten() int64 {
	return q.index.Bytes()
}

// Size returns the current buffer length: the highest offset ever written.
// It never decreases.
func (q *Quilt) Size() int64 {
	return q.store.Size()
}

// Ranges returns a copy of the written ranges, sorted, disjoint, and
// maximally merged.
func (q *Quilt) Ranges() []coverage.Range {
	return q.index.Ranges()
}

// Reserve pre-sizes the backing store's capacity for a buffer of at least
// n bytes. The size is unchanged.
func (q *Quilt) Reserve(n int64) {
	q.store.Reserve(n)
}
