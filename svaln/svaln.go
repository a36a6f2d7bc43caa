// Package svaln implements cmd/pgr-sv-aln: chain a candidate's seed hits
// and WFA-align the gaps between chained hits into alnmap rows. Seed
// hits arrive pre-computed — building the seed index itself is out of
// scope here, exactly as pgr-map-coordinate and pgr-group-svcnd already
// take their upstream data as given.
package svaln

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zhengxinchang/pgr-go/alnmap"
	"github.com/zhengxinchang/pgr-go/seed"
	"github.com/zhengxinchang/pgr-go/wfa"
)

// Candidate is one SV-candidate alignment window: the target/query
// subsequence pair it spans, plus the seed hits chained within it.
type Candidate struct {
	AlnID           string
	TargetName      string
	TS              uint32
	QueryName       string
	QS              uint32
	Orientation     uint8
	TargetSeq       string
	QuerySeq        string
	Hits            []seed.HitPair
	BlockTypeSuffix string // "", "_D", or "_O" — propagated from the enclosing alnmap block
}

// ReadCandidates parses the svaln input format:
//
//	## <aln_id>\t<target_name>\t<ts>\t<query_name>\t<qs>\t<orientation>\t<block_type_suffix>
//	<target_sequence>
//	<query_sequence>
//	<qs>\t<qe>\t<qo>\t<ts>\t<te>\t<to>   (one line per seed hit, repeated)
//	...
//
// A blank line or the next "##" header ends the current candidate.
func ReadCandidates(r io.Reader) ([]Candidate, error) {
	var out []Candidate
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 64*1024*1024)

	var cur *Candidate
	stage := 0 // 0 = expect target seq, 1 = expect query seq, 2 = expect hit rows
	line := 0
	flush := func() {
		if cur != nil {
			out = append(out, *cur)
		}
		cur = nil
	}

	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			flush()
			stage = 0
			continue
		}
		if strings.HasPrefix(text, "##") {
			flush()
			header := strings.Split(strings.TrimPrefix(text, "##"), "\t")
			header[0] = strings.TrimSpace(header[0])
			if len(header) != 7 {
				return nil, fmt.Errorf("svaln: line %d: expected 7 header fields, got %d", line, len(header))
			}
			ts, err := strconv.ParseUint(header[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("svaln: line %d: ts: %w", line, err)
			}
			qs, err := strconv.ParseUint(header[4], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("svaln: line %d: qs: %w", line, err)
			}
			orientation, err := strconv.ParseUint(header[5], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("svaln: line %d: orientation: %w", line, err)
			}
			cur = &Candidate{
				AlnID:           header[0],
				TargetName:      header[1],
				TS:              uint32(ts),
				QueryName:       header[3],
				QS:              uint32(qs),
				Orientation:     uint8(orientation),
				BlockTypeSuffix: header[6],
			}
			stage = 0
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("svaln: line %d: hit row before a \"##\" header", line)
		}
		switch stage {
		case 0:
			cur.TargetSeq = text
			stage = 1
		case 1:
			cur.QuerySeq = text
			stage = 2
		default:
			hit, err := parseHitRow(text)
			if err != nil {
				return nil, fmt.Errorf("svaln: line %d: %w", line, err)
			}
			cur.Hits = append(cur.Hits, hit)
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("svaln: %w", err)
	}
	return out, nil
}

func parseHitRow(text string) (seed.HitPair, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != 6 {
		return seed.HitPair{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}
	vals := make([]uint64, 6)
	for i, f := range fields {
		bits := 32
		if i == 2 || i == 5 {
			bits = 8
		}
		v, err := strconv.ParseUint(f, 10, bits)
		if err != nil {
			return seed.HitPair{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = v
	}
	return seed.HitPair{
		Query:  seed.Range{Bgn: uint32(vals[0]), End: uint32(vals[1]), Or: uint8(vals[2])},
		Target: seed.Range{Bgn: uint32(vals[3]), End: uint32(vals[4]), Or: uint8(vals[5])},
	}, nil
}

// WFAParams are the penalties AlignCandidate passes to wfa.GetWFAVariantSegments.
type WFAParams struct {
	MaxWFLength           uint32
	Mismatch, Open, Extend int
	MaxLenDiff            int // gap length-difference threshold at or above which a gap is reported as a failure rather than aligned
}

// DefaultWFAParams matches the penalties pgr-map-coordinate's VariantPosCache
// and the original pgr-bin tools use throughout: mismatch 4, gap-open 4,
// gap-extend 1.
var DefaultWFAParams = WFAParams{MaxWFLength: 384, Mismatch: 4, Open: 4, Extend: 1, MaxLenDiff: 128}

// AlignCandidate chains cand's hits (picking the highest-scoring chain) and
// walks its gaps, producing one alnmap.Record per emitted M/V/S row. Block
// ids are assigned as an incrementing row serial: every row, including each
// V row of one aligned gap, gets its own AlnBlockID, so no two rows of the
// output share an id.
func AlignCandidate(cand Candidate, chainOpts seed.Opts, wfaParams WFAParams) []alnmap.Record {
	hits := dedupHits(cand.Hits)
	if len(hits) == 0 {
		return nil
	}
	chains := seed.SparseAlign(hits, chainOpts)
	best := chains[0]
	for _, c := range chains[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	var recs []alnmap.Record
	blockID := 0
	nextID := func() int { blockID++; return blockID }

	emitM := func(qBgn, qEnd, tBgn, tEnd uint32) {
		recs = append(recs, alnmap.Record{
			AlnBlockID: nextID(),
			Type:       alnmap.Type("M" + cand.BlockTypeSuffix),
			TargetName: cand.TargetName, TS: cand.TS + tBgn, TE: cand.TS + tEnd,
			QueryName: cand.QueryName, QS: cand.QS + qBgn, QE: cand.QS + qEnd,
			Orientation: cand.Orientation,
		})
	}
	emitS := func(qBgn, qEnd, tBgn, tEnd uint32, reason string) {
		recs = append(recs, alnmap.Record{
			AlnBlockID: nextID(),
			Type:       alnmap.Type("S" + cand.BlockTypeSuffix),
			TargetName: cand.TargetName, TS: cand.TS + tBgn, TE: cand.TS + tEnd,
			QueryName: cand.QueryName, QS: cand.QS + qBgn, QE: cand.QS + qEnd,
			Orientation: cand.Orientation,
			Reason:      reason,
		})
	}
	emitGap := func(qBgn, qEnd, tBgn, tEnd uint32) {
		tSeg := cand.TargetSeq[tBgn:tEnd]
		qSeg := cand.QuerySeq[qBgn:qEnd]
		if len(tSeg) == 0 || len(qSeg) == 0 {
			emitS(qBgn, qEnd, tBgn, tEnd, alnmap.ReasonShortSeq)
			return
		}
		lenDiff := len(tSeg) - len(qSeg)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff >= wfaParams.MaxLenDiff {
			emitS(qBgn, qEnd, tBgn, tEnd, alnmap.ReasonLengthDiff)
			return
		}
		variants, ok := wfa.GetWFAVariantSegments([]byte(tSeg), []byte(qSeg), 0, wfaParams.MaxWFLength, wfaParams.Mismatch, wfaParams.Open, wfaParams.Extend)
		if !ok {
			emitS(qBgn, qEnd, tBgn, tEnd, alnmap.ReasonAlignFailed)
			return
		}
		if len(variants) == 0 {
			emitM(qBgn, qEnd, tBgn, tEnd)
			return
		}
		for _, v := range variants {
			recs = append(recs, alnmap.Record{
				AlnBlockID: nextID(),
				Type:       alnmap.Type("V" + cand.BlockTypeSuffix),
				TargetName: cand.TargetName, TS: cand.TS + tBgn, TE: cand.TS + tEnd,
				QueryName: cand.QueryName, QS: cand.QS + qBgn, QE: cand.QS + qEnd,
				Orientation:     cand.Orientation,
				VariantRefCoord: cand.TS + tBgn + v.TPos,
				RefSegment:      v.Ref,
				AltSegment:      v.Alt,
			})
		}
	}

	chainHits := best.Hits
	prevTEnd, prevQEnd := uint32(0), uint32(0)
	for _, h := range chainHits {
		if h.Target.Bgn > prevTEnd || h.Query.Bgn > prevQEnd {
			emitGap(prevQEnd, h.Query.Bgn, prevTEnd, h.Target.Bgn)
		}
		emitM(h.Query.Bgn, h.Query.End, h.Target.Bgn, h.Target.End)
		prevTEnd, prevQEnd = h.Target.End, h.Query.End
	}
	tLen, qLen := uint32(len(cand.TargetSeq)), uint32(len(cand.QuerySeq))
	if prevTEnd < tLen || prevQEnd < qLen {
		emitGap(prevQEnd, qLen, prevTEnd, tLen)
	}
	return recs
}

// dedupHits drops duplicate seed hits: upstream seed-hit sources can report
// the same (query, target) span pair more than once, and letting a
// duplicate through would let SparseAlign double-count its score
// contribution.
func dedupHits(hits []seed.HitPair) []seed.HitPair {
	seen := make(map[uint64]bool, len(hits))
	out := make([]seed.HitPair, 0, len(hits))
	for _, h := range hits {
		key := seed.HashHitPair(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}

// WriteHeader writes the "## <aln_id> ..." comment line preceding a
// candidate's rows.
func WriteHeader(w io.Writer, cand Candidate) error {
	_, err := fmt.Fprintf(w, "## %s\t%s\t%d\t%s\t%d\t%d\t%s\n",
		cand.AlnID, cand.TargetName, cand.TS, cand.QueryName, cand.QS, cand.Orientation, cand.BlockTypeSuffix)
	return err
}
