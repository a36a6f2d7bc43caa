package bundle

// AlnType tags one edge of a bundle-vs-bundle alignment path.
type AlnType int

const (
	Match AlnType = iota
	Insertion
	Deletion
	Begin
)

// PathElement is one step of an AlignBundles traceback: the query/target
// Segment indices it pairs, the edge type, their bundle ids (carried
// through for the caller's reporting convenience), and this edge's
// contribution to the running diff_len/max_len normalization.
type PathElement struct {
	QIdx, TIdx                int
	Type                      AlnType
	QBundleID, TBundleID      int
	DiffLenDelta, MaxLenDelta int
}

func segLen(s Segment) int64 {
	d := int64(s.End) - int64(s.Bgn)
	if d < 0 {
		return -d
	}
	return d
}

// AlignBundles aligns two ordered Segment lists with a Needleman-Wunsch-like
// DP whose edges are Match (q_idx,t_idx share a bundle id and direction,
// scored 2*min(len)), Insertion/Deletion (one side only, scored -2*len), and
// return the normalized diff score (diff_len/max_len), the raw diff_len and
// max_len, and the traceback path in forward (query/target start to end)
// order. Ported from pgr-bin's align_bundles, including its deliberate
// non-normalization of the very first (q_idx=0,t_idx=0) Match edge (that
// edge's score is 2*min_len with no addition from a (-1,-1) predecessor,
// since there is none — preserved verbatim rather than "fixed", since
// changing it would change every downstream traceback path).
func AlignBundles(qBundles, tBundles []Segment) (normalizedDiff float64, diffLen, maxLen int, path []PathElement) {
	qCount, tCount := len(qBundles), len(tBundles)
	if qCount == 0 || tCount == 0 {
		return 0, 0, 1, nil
	}

	score := make([][]int64, qCount)
	edge := make([][]AlnType, qCount)
	for i := range score {
		score[i] = make([]int64, tCount)
		edge[i] = make([]AlnType, tCount)
	}

	best := func(qIdx, tIdx int) (AlnType, int64) {
		q, tb := qBundles[qIdx], tBundles[tIdx]
		qLen, tLen := segLen(q), segLen(tb)
		minLen := qLen
		if tLen < minLen {
			minLen = tLen
		}

		bestType, bestScore := Match, int64(-1)<<62

		if qIdx == 0 && tIdx == 0 && q.BundleID == tb.BundleID && q.Direction == tb.Direction {
			bestType, bestScore = Match, 2*minLen
		} else if qIdx == 0 && tIdx == 0 {
			bestType, bestScore = Begin, 0
		}
		if qIdx > 0 && tIdx > 0 && q.BundleID == tb.BundleID && q.Direction == tb.Direction {
			bestType, bestScore = Match, 2*minLen+score[qIdx-1][tIdx-1]
		}
		if tIdx > 0 {
			s := -2*qLen + score[qIdx][tIdx-1]
			if s > bestScore {
				bestType, bestScore = Deletion, s
			}
		}
		if qIdx > 0 {
			s := -2*tLen + score[qIdx-1][tIdx]
			if s > bestScore {
				bestType, bestScore = Insertion, s
			}
		}
		return bestType, bestScore
	}

	for tIdx := 0; tIdx < tCount; tIdx++ {
		for qIdx := 0; qIdx < qCount; qIdx++ {
			t, s := best(qIdx, tIdx)
			edge[qIdx][tIdx] = t
			score[qIdx][tIdx] = s
		}
	}

	qIdx, tIdx := qCount-1, tCount-1
	diffLenTotal, maxLenTotal := 0, 1
	for {
		qq, tt := qIdx, tIdx
		t := edge[qIdx][tIdx]
		var diffDelta, maxDelta int
		switch t {
		case Match:
			qLen := int(segLen(qBundles[qIdx]))
			tLen := int(segLen(tBundles[tIdx]))
			if qLen > tLen {
				diffDelta = qLen - tLen
				maxDelta = qLen
			} else {
				diffDelta = tLen - qLen
				maxDelta = tLen
			}
			qIdx--
			tIdx--
		case Insertion:
			qLen := int(segLen(qBundles[qIdx]))
			diffDelta, maxDelta = qLen, qLen
			qIdx--
		case Deletion:
			tLen := int(segLen(tBundles[tIdx]))
			diffDelta, maxDelta = tLen, tLen
			tIdx--
		case Begin:
			goto done
		}
		diffLenTotal += diffDelta
		maxLenTotal += maxDelta
		path = append(path, PathElement{
			QIdx: qq, TIdx: tt, Type: t,
			QBundleID: qBundles[qq].BundleID, TBundleID: tBundles[tt].BundleID,
			DiffLenDelta: diffDelta, MaxLenDelta: maxDelta,
		})
		if qIdx < 0 || tIdx < 0 {
			break
		}
	}
done:
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return float64(diffLenTotal) / float64(maxLenTotal), diffLenTotal, maxLenTotal, path
}
