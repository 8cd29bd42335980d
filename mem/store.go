// Package mem provides the in-memory backing store for a quilt: an owned,
// growable, zero-filled byte region with copy-on-write snapshots.
package mem

import (
	"fmt"
	"io"
	"math"
)

// Store is a growable contiguous byte region. Writing past the end grows the
// store and zero-fills the gap below the write; the store never shrinks.
//
// Store requires no initialization - just declare and use:
//
//	var s Store
//	s.WriteAt([]byte("hello"), 0)
//
// Store is not safe for concurrent use; callers that share one across
// goroutines must serialize access themselves.
type Store struct {
	buf []byte

	// shared marks that a snapshot aliases buf. The next mutation moves
	// the live region to a fresh allocation so the snapshot stays frozen.
	shared bool
}

// Size returns the current length of the store in bytes.
// It never decreases.
func (s *Store) Size() int64 {
	return int64(len(s.buf))
}

// Reserve grows the spare capacity so the store can reach a length of at
// least n bytes without another allocation. The length is unchanged.
// Reserve is advisory; a size that is not addressable is ignored.
func (s *Store) Reserve(n int64) {
	if n <= int64(cap(s.buf)) || n > math.MaxInt {
		return
	}
	buf := make([]byte, len(s.buf), n)
	copy(buf, s.buf)
	s.buf = buf
	s.shared = false
}

// WriteAt writes len(p) bytes at offset off, growing the store as needed.
// It implements io.WriterAt. Offsets written more than once keep the bytes
// of the last write.
//
// WriteAt returns ErrInvalidRange for a negative offset and
// ErrCapacityOverflow when off+len(p) exceeds the addressable size. The
// store is unchanged on error.
func (s *Store) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidRange, off)
	}
	if off > math.MaxInt64-int64(len(p)) || off+int64(len(p)) > math.MaxInt {
		return 0, fmt.Errorf("%w: %d bytes at offset %d", ErrCapacityOverflow, len(p), off)
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := off + int64(len(p))
	s.mutable(end)
	return copy(s.buf[off:end], p), nil
}

// ReadAt reads len(p) bytes from offset off. It implements io.ReaderAt.
// Offsets that were never written read as zero bytes. A read reaching past
// the current size returns io.EOF after the available bytes.
func (s *Store) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidRange, off)
	}
	if off >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n = copy(p, s.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Snapshot returns the current contents as a shared view without copying.
// The view stays valid and frozen for as long as the caller keeps it: the
// next mutation of the store clones the live region instead of touching
// bytes a snapshot can see, and the garbage collector owns the handout.
//
// The view is a full slice expression, so appending to it cannot reach the
// store's spare capacity.
func (s *Store) Snapshot() []byte {
	if len(s.buf) == 0 {
		return nil
	}
	s.shared = true
	return s.buf[:len(s.buf):len(s.buf)]
}

// WriteTo writes the entire contents to w. It implements io.WriterTo.
func (s *Store) WriteTo(w io.Writer) (n int64, err error) {
	if len(s.buf) == 0 {
		return 0, nil
	}
	c, err := w.Write(s.buf)
	return int64(c), err
}

// mutable grows the store to at least n bytes and makes the region private
// to the store. New space reads as zero: fresh allocations are zeroed by
// the runtime, and spare capacity is never written ahead of the length.
func (s *Store) mutable(n int64) {
	length := max(n, int64(len(s.buf)))
	if !s.shared && length <= int64(cap(s.buf)) {
		s.buf = s.buf[:length]
		return
	}

	// Snapshots alias the current buffer, or the buffer is full: move to
	// a fresh allocation. Geometric growth keeps repeated extension
	// amortized O(1) per byte.
	capacity := 2 * int64(cap(s.buf))
	if capacity < length || capacity > math.MaxInt {
		capacity = length
	}
	buf := make([]byte, length, capacity)
	copy(buf, s.buf)
	s.buf = buf
	s.shared = false
}
