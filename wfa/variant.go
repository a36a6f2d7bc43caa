package wfa

import "bytes"

// PairOp tags one column of an aligned-base-pair walk.
type PairOp byte

const (
	OpMatch    PairOp = 'M'
	OpMismatch PairOp = 'X'
	OpInsert   PairOp = 'I' // target has a gap, query has a base
	OpDelete   PairOp = 'D' // target has a base, query has a gap
)

// PairCell is one column of AlnPairMap's walk: the target/query positions
// (0-based, pointing at the base that will be consumed by this column) and
// its op.
type PairCell struct {
	TPos, QPos uint32
	Op         PairOp
}

// AlnPairMap walks two same-length aligned byte strings (gap-padded with
// '-') and tags each column with the position it consumes on each side and
// whether it is a match, mismatch, insertion, or deletion. Ported from
// aln::aln_pair_map.
func AlnPairMap(alnTarget, alnQuery []byte) []PairCell {
	out := make([]PairCell, len(alnTarget))
	var tPos, qPos uint32
	for i := range alnTarget {
		tb, qb := alnTarget[i], alnQuery[i]
		cell := PairCell{TPos: tPos, QPos: qPos}
		switch {
		case tb == qb:
			cell.Op = OpMatch
		case tb == '-':
			cell.Op = OpInsert
		case qb == '-':
			cell.Op = OpDelete
		default:
			cell.Op = OpMismatch
		}
		out[i] = cell
		if tb != '-' {
			tPos++
		}
		if qb != '-' {
			qPos++
		}
	}
	return out
}

// Variant is a VCF-like {SNV, INS, DEL} record extracted from an aligned
// base-pair walk: TPos/QPos are the 0-based target/query anchor positions, Type is
// 'X' (substitution run), 'I' (insertion) or 'D' (deletion), and Ref/Alt are
// the target/query allele strings (an indel's Ref/Alt is anchor-base
// prefixed, per VCF convention).
type Variant struct {
	TPos, QPos uint32
	Type       byte
	Ref, Alt   string
}

type pendingCell struct{ t, q, op byte }

type lastMatch struct {
	tPos, qPos   uint32
	op           byte
	tChar, qChar byte
}

// GetVariantsFromAlnPairMap aggregates a column walk into Variant records:
// runs of consecutive X/I/D columns are merged into a single variant, with
// indel variants prefixed by the base immediately preceding the run (the VCF
// anchor-base convention), taken from the last M column seen. Ported from
// aln::get_variants_from_aln_pair_map.
func GetVariantsFromAlnPairMap(pairs []PairCell, target, query []byte) []Variant {
	var variants []Variant
	var current []pendingCell
	prev := lastMatch{op: 'U', tChar: '-', qChar: '-'}

	flush := func() {
		if len(current) == 0 {
			return
		}
		var tSeg, qSeg bytes.Buffer
		for _, c := range current {
			if c.t != '-' {
				tSeg.WriteByte(c.t)
			}
			if c.q != '-' {
				qSeg.WriteByte(c.q)
			}
		}
		tStr, qStr := tSeg.String(), qSeg.String()
		switch {
		case len(tStr) == len(qStr):
			variants = append(variants, Variant{TPos: prev.tPos + 1, QPos: prev.qPos + 1, Type: 'X', Ref: tStr, Alt: qStr})
		case len(tStr) > len(qStr):
			variants = append(variants, Variant{
				TPos: prev.tPos, QPos: prev.qPos, Type: 'D',
				Ref: string(prev.tChar) + tStr,
				Alt: string(prev.qChar) + qStr,
			})
		default:
			variants = append(variants, Variant{
				TPos: prev.tPos, QPos: prev.qPos, Type: 'I',
				Ref: string(prev.tChar) + tStr,
				Alt: string(prev.qChar) + qStr,
			})
		}
		current = current[:0]
	}

	for _, c := range pairs {
		switch c.Op {
		case OpMatch:
			flush()
			prev = lastMatch{tPos: c.TPos, qPos: c.QPos, op: 'M', tChar: target[c.TPos], qChar: query[c.QPos]}
		case OpMismatch:
			current = append(current, pendingCell{t: target[c.TPos], q: query[c.QPos], op: 'X'})
		case OpInsert:
			current = append(current, pendingCell{t: '-', q: query[c.QPos], op: 'I'})
		case OpDelete:
			current = append(current, pendingCell{t: target[c.TPos], q: '-', op: 'D'})
		}
	}
	flush()
	return variants
}

// GetWFAVariantSegments wraps AlignBases the way aln::get_wfa_variant_segments
// does: the left_padding leading bases on each side are assumed identical
// and skipped, both strings are reversed before alignment so that any gap
// the wavefront introduces is pushed to the left (VCF's leftmost-anchor
// convention), and the coordinates are flipped back to forward order before
// variant aggregation.
//
// It returns ok=false if the wavefront aligner failed to reach the end
// within its step budget; the caller is expected to fall back to
// GetSWVariantSegments in that case.
func GetWFAVariantSegments(target, query []byte, leftPadding int, maxWFLength uint32, mismatch, open, extend int) ([]Variant, bool) {
	if maxWFLength == 0 {
		lenDiff := len(query) - len(target)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		maxWFLength = uint32(2 * lenDiff)
		if maxWFLength < 128 {
			maxWFLength = 128
		}
	}

	rt := reversedCopy(target[leftPadding:])
	rq := reversedCopy(query[leftPadding:])
	tLenMinusOne := leftPadding + len(rt) - 1
	qLenMinusOne := leftPadding + len(rq) - 1

	alnT, alnQ, ok := AlignBases(rt, rq, maxWFLength, mismatch, open, extend)
	if !ok {
		return nil, false
	}

	pairs := AlnPairMap(alnT, alnQ)
	for d := 0; d < leftPadding; d++ {
		pairs = append(pairs, PairCell{TPos: uint32(len(rt) + d), QPos: uint32(len(rq) + d), Op: OpMatch})
	}
	for i := range pairs {
		pairs[i].TPos = uint32(tLenMinusOne) - pairs[i].TPos
		pairs[i].QPos = uint32(qLenMinusOne) - pairs[i].QPos
	}
	reversePairs(pairs)

	return GetVariantsFromAlnPairMap(pairs, target, query), true
}

// GetSWVariantSegments is the Smith-Waterman-fallback analogue of
// GetWFAVariantSegments: no reversal trick is needed since AlignBasesSW
// already returns forward-order alignment.
func GetSWVariantSegments(target, query []byte, leftPadding int, mismatch, open, extend int) []Variant {
	alnT, alnQ := AlignBasesSW(target[leftPadding:], query[leftPadding:], mismatch, open, extend)
	pairs := make([]PairCell, 0, leftPadding+len(alnT))
	for d := 0; d < leftPadding; d++ {
		pairs = append(pairs, PairCell{TPos: uint32(d), QPos: uint32(d), Op: OpMatch})
	}
	for _, c := range AlnPairMap(alnT, alnQ) {
		c.TPos += uint32(leftPadding)
		c.QPos += uint32(leftPadding)
		pairs = append(pairs, c)
	}
	return GetVariantsFromAlnPairMap(pairs, target, query)
}

func reversePairs(p []PairCell) {
	for l, r := 0, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
}
