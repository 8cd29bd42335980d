package coverage

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddInvalid(t *testing.T) {
	var idx Index

	for _, r := range []Range{
		{Start: 5, End: 5},
		{Start: 7, End: 3},
		{Start: -1, End: 4},
	} {
		err := idx.Add(r)
		require.ErrorIs(t, err, ErrInvalidRange, "Add(%v)", r)
	}

	require.Zero(t, idx.Len(), "index mutated by rejected Add")
	require.Zero(t, idx.Bytes(), "total mutated by rejected Add")
}

func TestAddDisjoint(t *testing.T) {
	var idx Index

	require.NoError(t, idx.Add(Range{Start: 20, End: 30}))
	require.NoError(t, idx.Add(Range{Start: 0, End: 5}))
	require.NoError(t, idx.Add(Range{Start: 10, End: 15}))

	want := []Range{{0, 5}, {10, 15}, {20, 30}}
	require.Equal(t, want, idx.Ranges())
	require.EqualValues(t, 20, idx.Bytes())
}

func TestAddMergesAdjacent(t *testing.T) {
	var idx Index

	require.NoError(t, idx.Add(Range{Start: 0, End: 10}))
	require.NoError(t, idx.Add(Range{Start: 15, End: 20}))
	require.NoError(t, idx.Add(Range{Start: 10, End: 15}))

	require.Equal(t, []Range{{0, 20}}, idx.Ranges())
	require.EqualValues(t, 20, idx.Bytes())
}

func TestAddMergesOverlap(t *testing.T) {
	var idx Index

	require.NoError(t, idx.Add(Range{Start: 0, End: 4}))
	require.NoError(t, idx.Add(Range{Start: 2, End: 6}))

	require.Equal(t, []Range{{0, 6}}, idx.Ranges())
	require.EqualValues(t, 6, idx.Bytes())
}

func TestAddSubsumesEverything(t *testing.T) {
	var idx Index

	for start := int64(0); start < 100; start += 10 {
		require.NoError(t, idx.Add(Range{Start: start, End: start + 5}))
	}
	require.Equal(t, 10, idx.Len())

	require.NoError(t, idx.Add(Range{Start: 0, End: 100}))
	require.Equal(t, []Range{{0, 100}}, idx.Ranges())
	require.EqualValues(t, 100, idx.Bytes())
}

func TestAddIdempotent(t *testing.T) {
	var idx Index

	require.NoError(t, idx.Add(Range{Start: 5, End: 10}))
	before := idx.Ranges()

	require.NoError(t, idx.Add(Range{Start: 5, End: 10}))
	require.Equal(t, before, idx.Ranges())
	require.EqualValues(t, 5, idx.Bytes())
}

func TestGaps(t *testing.T) {
	var idx Index
	require.NoError(t, idx.Add(Range{Start: 5, End: 10}))
	require.NoError(t, idx.Add(Range{Start: 15, End: 20}))

	for _, tc := range []struct {
		upper int64
		want  []Range
	}{
		{upper: 25, want: []Range{{0, 5}, {10, 15}, {20, 25}}},
		{upper: 20, want: []Range{{0, 5}, {10, 15}}},
		{upper: 18, want: []Range{{0, 5}, {10, 15}}},
		{upper: 12, want: []Range{{0, 5}, {10, 12}}},
		{upper: 3, want: []Range{{0, 3}}},
		{upper: 0, want: nil},
	} {
		require.Equal(t, tc.want, slices.Collect(idx.Gaps(tc.upper)), "upper=%d", tc.upper)
	}
}

func TestGapsEmptyIndex(t *testing.T) {
	var idx Index
	require.Equal(t, []Range{{0, 7}}, slices.Collect(idx.Gaps(7)))
	require.Nil(t, slices.Collect(idx.Gaps(0)))
}

func TestGapsRestartable(t *testing.T) {
	var idx Index
	require.NoError(t, idx.Add(Range{Start: 2, End: 4}))

	gaps := idx.Gaps(6)
	first := slices.Collect(gaps)
	second := slices.Collect(gaps)
	require.Equal(t, first, second)

	// Early break must not disturb later iterations.
	for range gaps {
		break
	}
	require.Equal(t, first, slices.Collect(gaps))
}

func TestCovered(t *testing.T) {
	var idx Index

	require.True(t, idx.Covered(0), "empty interval is always covered")
	require.False(t, idx.Covered(1))

	require.NoError(t, idx.Add(Range{Start: 0, End: 10}))
	require.True(t, idx.Covered(10))
	require.True(t, idx.Covered(7))
	require.False(t, idx.Covered(11))

	require.NoError(t, idx.Add(Range{Start: 12, End: 20}))
	require.False(t, idx.Covered(20), "hole at [10, 12)")

	require.NoError(t, idx.Add(Range{Start: 10, End: 12}))
	require.True(t, idx.Covered(20))
}

func TestOffsets(t *testing.T) {
	r := Range{Start: 10, End: 30}

	require.Equal(t, []int64{10, 15, 20, 25}, slices.Collect(r.Offsets(5)))
	require.Equal(t, []int64{10, 17}, slices.Collect(r.Offsets(7)), "trailing partial frame is dropped")
	require.Equal(t, []int64{10}, slices.Collect(r.Offsets(20)))
	require.Nil(t, slices.Collect(r.Offsets(21)), "frame larger than the range")
	require.Nil(t, slices.Collect(r.Offsets(0)), "nonsense frame size")
}

// TestAddRandomized feeds random overlapping, adjacent, and disjoint writes
// into the index in random order and checks that the result always equals
// the set union of the writes in minimal merged form.
func TestAddRandomized(t *testing.T) {
	const upper = 64

	for seed := int64(0); seed < 64; seed++ {
		rng := rand.New(rand.NewSource(seed))

		var idx Index
		covered := make([]bool, upper)

		for range 48 {
			start := rng.Int63n(upper)
			length := 1 + rng.Int63n(upper-start)
			r := Range{Start: start, End: start + length}

			require.NoError(t, idx.Add(r), "seed %d: Add(%v)", seed, r)
			for off := r.Start; off < r.End; off++ {
				covered[off] = true
			}
		}

		ranges := idx.Ranges()

		// Sorted, disjoint, non-adjacent.
		var total int64
		for i, r := range ranges {
			require.Less(t, r.Start, r.End, "seed %d: empty range stored", seed)
			if i > 0 {
				require.Less(t, ranges[i-1].End, r.Start, "seed %d: overlap or adjacency", seed)
			}
			total += r.Len()
		}
		require.Equal(t, total, idx.Bytes(), "seed %d: running total drifted", seed)

		// Equal to the brute-force union.
		var want []Range
		for off := int64(0); off < upper; {
			if !covered[off] {
				off++
				continue
			}
			end := off
			for end < upper && covered[end] {
				end++
			}
			want = append(want, Range{Start: off, End: end})
			off = end
		}
		require.Equal(t, want, ranges, "seed %d", seed)

		// Gaps are the exact complement within [0, upper).
		seen := make([]bool, upper)
		for _, r := range ranges {
			for off := r.Start; off < r.End; off++ {
				seen[off] = true
			}
		}
		for gap := range idx.Gaps(upper) {
			for off := gap.Start; off < gap.End; off++ {
				require.False(t, seen[off], "seed %d: offset %d both covered and gap", seed, off)
				seen[off] = true
			}
		}
		for off, ok := range seen {
			require.True(t, ok, "seed %d: offset %d neither covered nor gap", seed, off)
		}
	}
}
