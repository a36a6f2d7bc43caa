// Package seed implements the sparse chainer: it groups seed-match pairs
// between a query fragment and a target sequence into co-linear alignment
// chains using a banded dynamic-programming recurrence.
//
// The algorithm and its variable names are ported from pgr-db's
// aln::sparse_aln, generalized to the chainer/bundle split used by the rest
// of this module.
package seed

import (
	"sort"

	"github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
)

// Range is a half-open interval with an orientation flag (0 = forward, 1 =
// reverse) on one axis (query or target) of a HitPair.
type Range struct {
	Bgn, End uint32
	Or       uint8 // 0 or 1
}

// Len returns End-Bgn as a float64, matching the f32 arithmetic of the
// original sparse_aln scoring (HitPair lengths are always query-start <
// query-end so this is never negative in practice).
func (r Range) Len() float64 { return float64(r.End) - float64(r.Bgn) }

// HitPair is one seed's matched occurrence on query and target: ((qs, qe,
// qo), (ts, te, to)).
type HitPair struct {
	Query  Range
	Target Range
}

// RelOrientation returns the effective relative orientation of the hit,
// Query.Or XOR Target.Or.
func (h HitPair) RelOrientation() uint8 { return h.Query.Or ^ h.Target.Or }

func hashHitPair(h HitPair) uint64 {
	var buf [20]byte
	putU32(buf[0:], h.Query.Bgn)
	putU32(buf[4:], h.Query.End)
	buf[8] = h.Query.Or
	putU32(buf[9:], h.Target.Bgn)
	putU32(buf[13:], h.Target.End)
	buf[17] = h.Target.Or
	return farm.Hash64(buf[:18])
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// Chain is a co-linear, non-empty, ordered run of HitPairs, plus the score
// accumulated for that run by SparseAlign.
type Chain struct {
	Score float64
	Hits  []HitPair
}

// Opts configures SparseAlign.
type Opts struct {
	// MaxSpan (W) bounds how many distinct query-start predecessors are
	// examined per node.
	MaxSpan int
	// GapPenalty (λ) scales the gap term subtracted from a transition's score.
	GapPenalty float64
	// MaxGap (G), if non-nil, bounds the query-axis and target-axis gap
	// between consecutive HitPairs in a chain.
	MaxGap *uint32
	// OrientationStrict, if true, forbids chaining HitPairs whose relative
	// orientation (Query.Or ^ Target.Or) differ.
	OrientationStrict bool
}

type node struct {
	score  float64
	predOK bool
	pred   int // index into the sorted hits slice
}

// SparseAlign chains hits into co-linear runs. It partitions every input
// HitPair into exactly one output Chain; a zero-length input is a
// programming error (the caller is expected to have already
// special-cased "no hits").
func SparseAlign(hits []HitPair, opts Opts) []Chain {
	if len(hits) == 0 {
		log.Panicf("seed.SparseAlign: empty HitPair input")
	}
	sorted := make([]HitPair, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Query.Bgn < sorted[j].Query.Bgn
	})

	nodes := make([]node, len(sorted))
	nodes[0] = node{score: sorted[0].Query.Len()}

	for i := 1; i < len(sorted); i++ {
		hp := sorted[i]
		best := node{}
		bestScore := 0.0
		distinctPreds := map[uint32]bool{}
		for j := i - 1; j >= 0; j-- {
			pre := sorted[j]
			if pre.Query.Bgn == hp.Query.Bgn {
				continue
			}
			if opts.OrientationStrict && pre.RelOrientation() != hp.RelOrientation() {
				continue
			}
			if opts.MaxGap != nil {
				g := float64(*opts.MaxGap)
				if hp.Query.Or == hp.Target.Or {
					if abs64(float64(hp.Query.Bgn)-float64(pre.Query.End)) > g ||
						abs64(float64(hp.Target.Bgn)-float64(pre.Target.End)) > g {
						continue
					}
				} else {
					if abs64(float64(hp.Query.Bgn)-float64(pre.Query.End)) > g ||
						abs64(float64(hp.Target.End)-float64(pre.Target.Bgn)) > g {
						continue
					}
				}
			}
			distinctPreds[pre.Query.Bgn] = true
			s := nodes[j].score + hp.Query.Len()
			var gap float64
			if hp.Query.Or == hp.Target.Or {
				gap = abs64(float64(hp.Query.Bgn)-float64(pre.Query.End)) +
					abs64(float64(hp.Target.Bgn)-float64(pre.Target.End))
			} else {
				gap = abs64(float64(hp.Query.Bgn)-float64(pre.Query.End)) +
					abs64(float64(hp.Target.End)-float64(pre.Target.Bgn))
			}
			s -= opts.GapPenalty * gap
			if s > bestScore {
				bestScore = s
				best = node{score: s, predOK: true, pred: j}
			}
			if len(distinctPreds) >= opts.MaxSpan {
				break
			}
		}
		if bestScore > 0 {
			nodes[i] = best
		} else {
			nodes[i] = node{score: hp.Query.Len()}
		}
	}

	visited := make([]bool, len(sorted))
	unvisited := len(sorted)
	var out []Chain
	for unvisited > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, v := range visited {
			if v {
				continue
			}
			if bestIdx == -1 || nodes[i].score >= bestScore {
				bestScore = nodes[i].score
				bestIdx = i
			}
		}
		var track []int
		v := bestIdx
		for v >= 0 {
			if visited[v] {
				break
			}
			track = append(track, v)
			if nodes[v].predOK {
				v = nodes[v].pred
			} else {
				v = -1
			}
		}
		if len(track) == 0 {
			break
		}
		for _, idx := range track {
			visited[idx] = true
			unvisited--
		}
		// reverse track
		for l, r := 0, len(track)-1; l < r; l, r = l+1, r-1 {
			track[l], track[r] = track[r], track[l]
		}
		chainHits := make([]HitPair, len(track))
		for i, idx := range track {
			chainHits[i] = sorted[idx]
		}
		out = append(out, Chain{Score: bestScore, Hits: chainHits})
	}
	return out
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// HashHitPair farm-hashes a HitPair. Exported so callers that need to
// dedup/bucket HitPairs before calling SparseAlign (package svaln uses this
// to drop duplicate hit rows from its input) don't have to re-derive a key.
func HashHitPair(h HitPair) uint64 { return hashHitPair(h) }
