// Package coverage tracks which half-open byte ranges of a logical buffer
// have been written.
//
// The index keeps its ranges sorted, disjoint, and maximally merged: two
// ranges that overlap or touch are always coalesced into one. The minimal
// representation bounds every operation by the number of ranges it actually
// touches and makes gap queries a single pass.
package coverage

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
)

// ErrInvalidRange reports a zero-length, inverted, or negative range.
var ErrInvalidRange = errors.New("invalid range")

// Range is a half-open interval [Start, End) of byte offsets.
type Range struct {
	Start, End int64
}

// Len returns the number of bytes the range spans.
func (r Range) Len() int64 {
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Offsets returns the absolute start offsets of the fixed-size frames that
// fit inside the range, in ascending order. A trailing partial frame is not
// included. Useful for re-requesting lost frames of a known size that fall
// into a gap.
func (r Range) Offsets(frameSize int64) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if frameSize <= 0 {
			return
		}
		for off := r.Start; off+frameSize <= r.End; off += frameSize {
			if !yield(off) {
				return
			}
		}
	}
}

// Index records which ranges of a buffer have been written.
//
// Index requires no initialization - just declare and use:
//
//	var idx Index
//	idx.Add(Range{Start: 0, End: 5})
//
// Index is not safe for concurrent use.
type Index struct {
	r       []Range
	written int64
}

// Add registers r as written, coalescing it with every stored range it
// overlaps or touches. After Add the index is sorted by Start and no two
// ranges overlap or are adjacent.
//
// The search costs O(log n); the merge costs O(k) for the k ranges the new
// one subsumes, which is 0-2 for the common extend-or-fill writes.
//
// Add returns ErrInvalidRange if r is empty, inverted, or starts at a
// negative offset. The index is unchanged on error. Re-adding coverage that
// already exists is a no-op merge.
func (idx *Index) Add(r Range) error {
	if r.Start < 0 || r.Start >= r.End {
		return fmt.Errorf("%w: %v", ErrInvalidRange, r)
	}

	// Leftmost stored range with r.Start <= End: the first one that can
	// overlap or touch r.
	lo := sort.Search(len(idx.r), func(i int) bool {
		return r.Start <= idx.r[i].End
	})

	// Scan right over every range that overlaps or touches r.
	hi := lo
	for hi < len(idx.r) && idx.r[hi].Start <= r.End {
		hi++
	}

	if lo == hi {
		// Nothing to merge: plain sorted insert.
		idx.r = append(idx.r, Range{})
		copy(idx.r[lo+1:], idx.r[lo:])
		idx.r[lo] = r
		idx.written += r.Len()
		return nil
	}

	merged := Range{
		Start: min(r.Start, idx.r[lo].Start),
		End:   max(r.End, idx.r[hi-1].End),
	}
	for _, old := range idx.r[lo:hi] {
		idx.written -= old.Len()
	}
	idx.written += merged.Len()

	idx.r[lo] = merged
	idx.r = append(idx.r[:lo+1], idx.r[hi:]...)
	return nil
}

// Gaps returns the uncovered ranges within [0, upper), in ascending order.
// The sequence is lazy and can be ranged over any number of times; each
// iteration walks the current coverage once.
func (idx *Index) Gaps(upper int64) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		pos := int64(0)
		for _, r := range idx.r {
			if pos >= upper {
				return
			}
			if pos < r.Start {
				if !yield(Range{Start: pos, End: min(r.Start, upper)}) {
					return
				}
			}
			pos = r.End
		}
		if pos < upper {
			yield(Range{Start: pos, End: upper})
		}
	}
}

// Covered reports whether every offset in [0, upper) has been written.
func (idx *Index) Covered(upper int64) bool {
	if upper <= 0 {
		return true
	}
	// Ranges are maximally merged, so a covered prefix is always a single
	// range starting at zero.
	return len(idx.r) > 0 && idx.r[0].Start == 0 && idx.r[0].End >= upper
}

// Bytes returns the total number of distinct bytes covered. The total is
// maintained inside Add, so this is O(1).
func (idx *Index) Bytes() int64 {
	return idx.written
}

// Len returns the number of stored ranges.
func (idx *Index) Len() int {
	return len(idx.r)
}

// Ranges returns a copy of the stored ranges in ascending order.
func (idx *Index) Ranges() []Range {
	return slices.Clone(idx.r)
}
