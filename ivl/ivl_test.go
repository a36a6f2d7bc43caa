package ivl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCoalescesOverlapping(t *testing.T) {
	in := Set{"chr1": {{0, 10}, {5, 15}, {20, 30}, {30, 40}}}
	out := Merge(in)
	require.Len(t, out["chr1"], 2)
	assert.Equal(t, Range{0, 15}, out["chr1"][0])
	assert.Equal(t, Range{20, 40}, out["chr1"][1])
}

func TestMergeIsIdempotent(t *testing.T) {
	in := Set{"chr1": {{0, 10}, {5, 15}, {100, 200}}}
	once := Merge(in)
	twice := Merge(once)
	assert.Equal(t, once, twice)
}

func TestIntersectBasic(t *testing.T) {
	a := Set{"chr1": {{0, 100}}}
	b := Set{"chr1": {{50, 150}, {200, 300}}}
	out := Intersect(a, b)
	require.Len(t, out["chr1"], 1)
	assert.Equal(t, Range{50, 100}, out["chr1"][0])
}

func TestIntersectEmptyWhenContigAbsentFromOneSide(t *testing.T) {
	a := Set{"chr1": {{0, 100}}}
	b := Set{"chr2": {{0, 100}}}
	out := Intersect(a, b)
	assert.Empty(t, out["chr1"])
	assert.Empty(t, out["chr2"])
	assert.Empty(t, out)
}

func TestSortedContigsOrdersAscending(t *testing.T) {
	s := Set{"chr2": nil, "chr10": nil, "chr1": nil}
	assert.Equal(t, []string{"chr1", "chr10", "chr2"}, SortedContigs(s))
}
