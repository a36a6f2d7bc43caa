package wfa

import "math"

const negInf = math.MinInt32 / 2

// AlignBasesSW is the quadratic affine-gap global alignment fallback used
// when AlignBases fails (the step/length budget of the wavefront aligner was
// exceeded). It mirrors pgr-db's aln::sw_align_bases: both input strings are
// reversed before the Needleman-Wunsch-with-affine-gaps recurrence runs, and
// the backward traceback (high index to low) then produces the alignment
// directly in forward order without a final reversal.
func AlignBasesSW(target, query []byte, mismatch, open, extend int) (alnTarget, alnQuery []byte) {
	t := reversedCopy(target)
	q := reversedCopy(query)
	tlen, qlen := len(t), len(q)

	match := make([]int, tlen+1)
	e := make([]int, tlen+1)
	f := make([]int, tlen+1)
	for i := 0; i <= tlen; i++ {
		if i == 0 {
			match[i] = 0
			e[i] = negInf
		} else {
			match[i] = -open - i*extend
			e[i] = -open - i*extend
		}
		f[i] = negInf
	}

	type back struct{ dt, dq int8 }
	trace := make([][]back, tlen+1)
	for i := range trace {
		trace[i] = make([]back, qlen+1)
	}
	for i := 1; i <= tlen; i++ {
		trace[i][0] = back{-1, 0}
	}

	for j := 1; j <= qlen; j++ {
		prevMatch := make([]int, tlen+1)
		copy(prevMatch, match)

		match[0] = -open - j*extend
		e[0] = negInf
		f[0] = -open - j*extend
		trace[0][j] = back{0, -1}

		for i := 1; i <= tlen; i++ {
			s := prevMatch[i-1]
			if t[i-1] != q[j-1] {
				s -= mismatch
			}

			eVal := negInf
			if e[i-1] != negInf {
				eVal = e[i-1] - extend
			}
			fVal := negInf
			if f[i] != negInf {
				fVal = f[i] - extend
			}

			switch {
			case s > eVal && s > fVal:
				trace[i][j] = back{-1, -1}
				match[i] = s
			case eVal > fVal:
				trace[i][j] = back{-1, 0}
				match[i] = eVal
			default:
				trace[i][j] = back{0, -1}
				match[i] = fVal
			}

			o := match[i] - open
			if o > eVal {
				e[i] = o
			} else {
				e[i] = eVal
			}
			if o > fVal {
				f[i] = o
			} else {
				f[i] = fVal
			}
		}
	}

	tPos, qPos := tlen, qlen
	for tPos != 0 || qPos != 0 {
		d := trace[tPos][qPos]
		if d.dt != 0 {
			tPos--
			alnTarget = append(alnTarget, t[tPos])
		} else {
			alnTarget = append(alnTarget, '-')
		}
		if d.dq != 0 {
			qPos--
			alnQuery = append(alnQuery, q[qPos])
		} else {
			alnQuery = append(alnQuery, '-')
		}
	}
	return alnTarget, alnQuery
}

func reversedCopy(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
