// Package wfa implements a reverse-direction wavefront aligner and
// Smith-Waterman fallback, plus the per-base variant extractor that
// turns an aligned base pair into VCF-style {SNV, INS, DEL} records.
//
// The wavefront recurrence and the SW fallback are ported from pgr-db's
// aln::wfa_align_bases / aln::sw_align_bases, keeping the same penalty
// convention (mismatch, gap-open, gap-extend as positive costs) and the same
// "align the whole thing, fail if the step/length budget is exceeded" shape.
package wfa

import "github.com/grailbio/base/log"

// MaxWFSteps bounds the number of score layers the aligner will compute
// before giving up.
const MaxWFSteps = 1024

// cellKind distinguishes which of the three wavefront matrices a cell's
// predecessor sits in; kindNone marks the start of the recurrence.
type cellKind int

const (
	kindNone cellKind = iota
	kindM
	kindI
	kindD
)

// mCell is a fully-resolved M[s][k] cell: off is the offset reached after
// greedy match-extension, rawOff is the offset before extension (the number
// of matched bases taken is off-rawOff), and src/srcS name the predecessor
// that produced rawOff.
type mCell struct {
	off, rawOff int
	src         cellKind
	srcS        int
}

// gapCell is an I[s][k] or D[s][k] cell: off is the offset reached, and
// src/srcS name the predecessor (kindM for a gap-open, kindI/kindD itself
// for a gap-extend).
type gapCell struct {
	off  int
	src  cellKind
	srcS int
}

type wfLayer struct {
	m map[int]mCell
	i map[int]gapCell
	d map[int]gapCell
}

func newLayer() wfLayer {
	return wfLayer{m: map[int]mCell{}, i: map[int]gapCell{}, d: map[int]gapCell{}}
}

// AlignBases runs gap-affine wavefront alignment of target against query and
// returns the aligned byte strings (with '-' gap characters) if the
// wavefront reaches the bottom-right corner within maxWFLength diagonals and
// MaxWFSteps score steps. It returns ok=false otherwise.
func AlignBases(target, query []byte, maxWFLength uint32, mismatch, open, extend int) (alnTarget, alnQuery []byte, ok bool) {
	tlen, qlen := len(target), len(query)
	endK := tlen - qlen

	extend1 := func(l *wfLayer, k int) {
		c, has := l.m[k]
		if !has {
			return
		}
		off := c.off
		for off < tlen && off-k >= 0 && off-k < qlen && target[off] == query[off-k] {
			off++
		}
		c.off = off
		l.m[k] = c
	}

	layers := make([]wfLayer, 1, 64)
	layers[0] = newLayer()
	layers[0].m[0] = mCell{off: 0, rawOff: 0, src: kindNone}
	extend1(&layers[0], 0)

	reached := func(s int) bool {
		c, has := layers[s].m[endK]
		return has && c.off == tlen && c.off-endK == qlen
	}
	if reached(0) {
		return buildAlignment(target, query, layers, 0, endK)
	}

	maxDiag := int(maxWFLength)

	for s := 1; s <= MaxWFSteps; s++ {
		cur := newLayer()
		lo, hi := -qlen, tlen
		if lo < -maxDiag {
			lo = -maxDiag
		}
		if hi > maxDiag {
			hi = maxDiag
		}
		for k := lo; k <= hi; k++ {
			// insertion (query has an extra base not present in target):
			// off unchanged, diagonal increases by 1, so the predecessor
			// sits at k+1.
			var ins gapCell
			insOK := false
			if so := s - open - extend; so >= 0 {
				if v, ok := layers[so].m[k+1]; ok {
					ins = gapCell{off: v.off, src: kindM, srcS: so}
					insOK = true
				}
			}
			if se := s - extend; se >= 0 {
				if v, ok := layers[se].i[k+1]; ok && (!insOK || v.off > ins.off) {
					ins = gapCell{off: v.off, src: kindI, srcS: se}
					insOK = true
				}
			}
			if insOK {
				cur.i[k] = ins
			}

			// deletion (target has an extra base not present in query):
			// off increases by 1, diagonal decreases by 1, so the
			// predecessor sits at k-1.
			var del gapCell
			delOK := false
			if so := s - open - extend; so >= 0 {
				if v, ok := layers[so].m[k-1]; ok {
					del = gapCell{off: v.off + 1, src: kindM, srcS: so}
					delOK = true
				}
			}
			if se := s - extend; se >= 0 {
				if v, ok := layers[se].d[k-1]; ok && (!delOK || v.off+1 > del.off) {
					del = gapCell{off: v.off + 1, src: kindD, srcS: se}
					delOK = true
				}
			}
			if delOK {
				cur.d[k] = del
			}

			// mismatch substitution, extending M by one base.
			var m mCell
			mOK := false
			if sx := s - mismatch; sx >= 0 {
				if v, ok := layers[sx].m[k]; ok {
					m = mCell{rawOff: v.off + 1, src: kindM, srcS: sx}
					mOK = true
				}
			}
			if insOK && (!mOK || ins.off > m.rawOff) {
				m = mCell{rawOff: ins.off, src: kindI, srcS: s}
				mOK = true
			}
			if delOK && (!mOK || del.off > m.rawOff) {
				m = mCell{rawOff: del.off, src: kindD, srcS: s}
				mOK = true
			}
			if mOK {
				if m.rawOff > tlen {
					m.rawOff = tlen
				}
				m.off = m.rawOff
				cur.m[k] = m
			}
		}
		for k := range cur.m {
			extend1(&cur, k)
		}
		layers = append(layers, cur)
		if reached(s) {
			return buildAlignment(target, query, layers, s, endK)
		}
	}
	log.Debug.Printf("wfa: exhausted %d steps without reaching end (tlen=%d qlen=%d)", MaxWFSteps, tlen, qlen)
	return nil, nil, false
}

// buildAlignment walks the backpointers left in layers, starting from
// M[s][k], down to the (0,0) base case, emitting aligned bytes (with '-' gap
// characters) in reverse and then flipping them into forward order.
func buildAlignment(target, query []byte, layers []wfLayer, s, k int) (alnTarget, alnQuery []byte, ok bool) {
	var at, aq []byte

	state := kindM
	off := layers[s].m[k].off

	for {
		switch state {
		case kindM:
			m := layers[s].m[k]
			for off > m.rawOff {
				off--
				at = append(at, target[off])
				aq = append(aq, query[off-k])
			}
			off = m.rawOff
			switch m.src {
			case kindNone:
				reverseBytes(at)
				reverseBytes(aq)
				return at, aq, true
			case kindM:
				off--
				at = append(at, target[off])
				aq = append(aq, query[off-k])
				s = m.srcS
			case kindI, kindD:
				state = m.src
			}
		case kindI:
			// insertion: query has a base the target doesn't; off is
			// unchanged across the edit and the predecessor sits at
			// diagonal k+1, in the score layer recorded in srcS.
			ic := layers[s].i[k]
			k++
			at = append(at, '-')
			aq = append(aq, query[off-k])
			s = ic.srcS
			if ic.src == kindM {
				state = kindM
			}
		case kindD:
			// deletion: target has a base the query doesn't; off and k
			// both step back by one, to diagonal k-1.
			dc := layers[s].d[k]
			off--
			at = append(at, target[off])
			aq = append(aq, '-')
			k--
			s = dc.srcS
			if dc.src == kindM {
				state = kindM
			}
		}
	}
}

func reverseBytes(b []byte) {
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
}
