package coordmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengxinchang/pgr-go/alnmap"
)

type fakeSeqs map[string]string

func (f fakeSeqs) Get(name string, start, end uint64) (string, error) {
	s, ok := f[name]
	if !ok {
		return "", fmt.Errorf("no such sequence %q", name)
	}
	if end > uint64(len(s)) {
		return "", fmt.Errorf("end out of range")
	}
	return s[start:end], nil
}

func TestBuildIndexAndOverlappingForwardMatch(t *testing.T) {
	records := []alnmap.Record{
		{AlnBlockID: 1, Type: alnmap.TypeMatch, TargetName: "chrT", TS: 100, TE: 200, QueryName: "q1", QS: 0, QE: 100, Orientation: 0},
	}
	idx := BuildIndex(records)
	blocks := idx.Overlapping("q1", 10)
	require.Len(t, blocks, 1)

	mappings := MapCoordinate(blocks, "q1", 10, NewVariantPosCache(nil, nil))
	require.Len(t, mappings, 1)
	assert.True(t, mappings[0].HasTarget)
	assert.Equal(t, uint32(110), mappings[0].TargetPos)
}

func TestMapCoordinateReverseOrientationMatch(t *testing.T) {
	blocks := []Block{
		{Type: alnmap.TypeMatch, TargetName: "chrT", TS: 100, TE: 200, QueryName: "q1", QS: 0, QE: 100, Orientation: 1},
	}
	mappings := MapCoordinate(blocks, "q1", 10, NewVariantPosCache(nil, nil))
	require.Len(t, mappings, 1)
	assert.True(t, mappings[0].HasTarget)
	// qe=100, coordinate=10 -> (100-10)+100 = 190
	assert.Equal(t, uint32(190), mappings[0].TargetPos)
}

func TestMapCoordinateVariantBlockRealignsAndMaps(t *testing.T) {
	seqs := fakeSeqs{
		"chrT": "AAAACCCCTTTTGGGG",
		"q1":   "AAAACCCCTTTTGGGG",
	}
	blocks := []Block{
		{Type: alnmap.TypeVariant, TargetName: "chrT", TS: 0, TE: 16, QueryName: "q1", QS: 0, QE: 16, Orientation: 0},
	}
	cache := NewVariantPosCache(seqs, seqs)
	mappings := MapCoordinate(blocks, "q1", 5, cache)
	require.Len(t, mappings, 1)
	assert.True(t, mappings[0].HasTarget)
	assert.Equal(t, uint32(5), mappings[0].TargetPos)
}

func TestMapCoordinateUnalignableVariantBlockReportsNoTarget(t *testing.T) {
	seqs := fakeSeqs{} // Get always fails
	blocks := []Block{
		{Type: alnmap.TypeVariant, TargetName: "chrT", TS: 0, TE: 16, QueryName: "q1", QS: 0, QE: 16, Orientation: 0},
	}
	cache := NewVariantPosCache(seqs, seqs)
	mappings := MapCoordinate(blocks, "q1", 5, cache)
	require.Len(t, mappings, 1)
	assert.False(t, mappings[0].HasTarget)
}

func TestSortedUint32(t *testing.T) {
	assert.Equal(t, []uint32{1, 2, 5}, SortedUint32([]uint32{5, 1, 2}))
}
