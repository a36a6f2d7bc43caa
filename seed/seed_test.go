package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hp(qs, qe uint32, qo uint8, ts, te uint32, to uint8) HitPair {
	return HitPair{Query: Range{Bgn: qs, End: qe, Or: qo}, Target: Range{Bgn: ts, End: te, Or: to}}
}

func TestSparseAlignSingleHit(t *testing.T) {
	hits := []HitPair{hp(0, 10, 0, 0, 10, 0)}
	chains := SparseAlign(hits, Opts{MaxSpan: 8, GapPenalty: 0.5})
	require.Len(t, chains, 1)
	assert.Equal(t, 10.0, chains[0].Score)
	assert.Len(t, chains[0].Hits, 1)
}

func TestSparseAlignTwoColinearHits(t *testing.T) {
	hits := []HitPair{
		hp(0, 10, 0, 0, 10, 0),
		hp(20, 30, 0, 20, 30, 0),
	}
	chains := SparseAlign(hits, Opts{MaxSpan: 8, GapPenalty: 0.5})
	require.Len(t, chains, 1)
	assert.Len(t, chains[0].Hits, 2)
	assert.InDelta(t, 10.0, chains[0].Score, 1e-9)
}

func TestSparseAlignPartitionsEveryHit(t *testing.T) {
	hits := []HitPair{
		hp(0, 10, 0, 0, 10, 0),
		hp(5, 15, 1, 100, 110, 0), // disjoint orientation and far on target: its own chain
		hp(200, 210, 0, 200, 210, 0),
	}
	chains := SparseAlign(hits, Opts{MaxSpan: 8, GapPenalty: 0.5, OrientationStrict: true})
	total := 0
	for _, c := range chains {
		total += len(c.Hits)
	}
	assert.Equal(t, len(hits), total)
}

func TestSparseAlignOrientationStrict(t *testing.T) {
	hits := []HitPair{
		hp(0, 10, 0, 0, 10, 0),
		hp(20, 30, 1, 20, 30, 0), // relative orientation differs (1 vs 0)
	}
	chains := SparseAlign(hits, Opts{MaxSpan: 8, GapPenalty: 0.5, OrientationStrict: true})
	// each hit must end up in its own chain since relative orientations differ
	require.Len(t, chains, 2)
	for _, c := range chains {
		assert.Len(t, c.Hits, 1)
	}
}

func TestSparseAlignMaxGap(t *testing.T) {
	g := uint32(5)
	hits := []HitPair{
		hp(0, 10, 0, 0, 10, 0),
		hp(50, 60, 0, 50, 60, 0), // gap of 40 > G=5, must not connect
	}
	chains := SparseAlign(hits, Opts{MaxSpan: 8, GapPenalty: 0.5, MaxGap: &g})
	require.Len(t, chains, 2)
}

func TestSparseAlignQueryStartStrictlyIncreasing(t *testing.T) {
	hits := []HitPair{
		hp(0, 10, 0, 0, 10, 0),
		hp(5, 12, 0, 5, 12, 0),
		hp(20, 30, 0, 20, 30, 0),
	}
	chains := SparseAlign(hits, Opts{MaxSpan: 8, GapPenalty: 0.1})
	for _, c := range chains {
		for i := 1; i < len(c.Hits); i++ {
			assert.Less(t, c.Hits[i-1].Query.Bgn, c.Hits[i].Query.Bgn)
		}
	}
}

func TestHashHitPairDeterministic(t *testing.T) {
	h := hp(1, 2, 0, 3, 4, 1)
	assert.Equal(t, HashHitPair(h), HashHitPair(h))
}

func TestSparseAlignPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() {
		SparseAlign(nil, Opts{MaxSpan: 8, GapPenalty: 0.5})
	})
}
