// Package svanalysis implements cmd/pgr-generate-sv-analysis: principal
// bundle decomposition of a target/query SV-candidate pair followed by
// bundle-vs-bundle alignment, reporting the traceback path in genomic
// coordinates. Ported from pgr-bin's pgr-generate-sv-analysis.rs, minus
// the SeqIndexDB/shimmer-index construction that produces the
// AssignedPoints — building the seed index is out of scope here, same
// boundary as package svaln.
package svanalysis

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zhengxinchang/pgr-go/bundle"
)

// Candidate is one SV-candidate window plus each side's already
// bundle-assigned seed points.
type Candidate struct {
	SvcType     string
	TargetName  string
	TS, TE      uint32
	QueryName   string
	QS, QE      uint32
	Orientation uint8
	AlnType     string

	TargetPoints []bundle.AssignedPoint
	QueryPoints  []bundle.AssignedPoint
}

// ReadCandidates parses the svanalysis input format:
//
//	## <svc_type>\t<target_name>\t<ts>\t<te>\t<query_name>\t<qs>\t<qe>\t<orientation>\t<aln_type>
//	TARGET\t<bgn>\t<end>\t<or>\t<bundle_id>\t<bundle_dir_ref>\t<bundle_pos>
//	QUERY\t<bgn>\t<end>\t<or>\t<bundle_id>\t<bundle_dir_ref>\t<bundle_pos>
//	...
//
// A point row's bundle_id/bundle_dir_ref/bundle_pos fields are blank when
// that seed point carries no bundle assignment. A blank line or the next
// "##" header ends the current candidate.
func ReadCandidates(r io.Reader) ([]Candidate, error) {
	var out []Candidate
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 64*1024*1024)

	var cur *Candidate
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
			continue
		}
		if strings.HasPrefix(text, "##") {
			flush()
			h := strings.Split(strings.TrimPrefix(text, "##"), "\t")
			h[0] = strings.TrimSpace(h[0])
			if len(h) != 9 {
				return nil, fmt.Errorf("svanalysis: line %d: expected 9 header fields, got %d", line, len(h))
			}
			ts, err := parseUint32(h[2])
			if err != nil {
				return nil, fmt.Errorf("svanalysis: line %d: ts: %w", line, err)
			}
			te, err := parseUint32(h[3])
			if err != nil {
				return nil, fmt.Errorf("svanalysis: line %d: te: %w", line, err)
			}
			qs, err := parseUint32(h[5])
			if err != nil {
				return nil, fmt.Errorf("svanalysis: line %d: qs: %w", line, err)
			}
			qe, err := parseUint32(h[6])
			if err != nil {
				return nil, fmt.Errorf("svanalysis: line %d: qe: %w", line, err)
			}
			orientation, err := strconv.ParseUint(h[7], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("svanalysis: line %d: orientation: %w", line, err)
			}
			cur = &Candidate{
				SvcType: h[0], TargetName: h[1], TS: ts, TE: te,
				QueryName: h[4], QS: qs, QE: qe,
				Orientation: uint8(orientation), AlnType: h[8],
			}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("svanalysis: line %d: point row before a \"##\" header", line)
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("svanalysis: line %d: expected 7 fields, got %d", line, len(fields))
		}
		pt, err := parsePoint(fields[1:])
		if err != nil {
			return nil, fmt.Errorf("svanalysis: line %d: %w", line, err)
		}
		switch fields[0] {
		case "TARGET":
			cur.TargetPoints = append(cur.TargetPoints, pt)
		case "QUERY":
			cur.QueryPoints = append(cur.QueryPoints, pt)
		default:
			return nil, fmt.Errorf("svanalysis: line %d: unknown point side %q", line, fields[0])
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("svanalysis: %w", err)
	}
	return out, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func parsePoint(fields []string) (bundle.AssignedPoint, error) {
	bgn, err := parseUint32(fields[0])
	if err != nil {
		return bundle.AssignedPoint{}, fmt.Errorf("bgn: %w", err)
	}
	end, err := parseUint32(fields[1])
	if err != nil {
		return bundle.AssignedPoint{}, fmt.Errorf("end: %w", err)
	}
	or, err := strconv.ParseUint(fields[2], 10, 8)
	if err != nil {
		return bundle.AssignedPoint{}, fmt.Errorf("orientation: %w", err)
	}
	pt := bundle.AssignedPoint{Point: bundle.SeedPoint{Bgn: bgn, End: end, Or: uint8(or)}}
	if fields[3] != "" {
		bundleID, err := strconv.Atoi(fields[3])
		if err != nil {
			return bundle.AssignedPoint{}, fmt.Errorf("bundle_id: %w", err)
		}
		dirRef, err := strconv.ParseUint(fields[4], 10, 8)
		if err != nil {
			return bundle.AssignedPoint{}, fmt.Errorf("bundle_dir_ref: %w", err)
		}
		pos, err := strconv.Atoi(fields[5])
		if err != nil {
			return bundle.AssignedPoint{}, fmt.Errorf("bundle_pos: %w", err)
		}
		pt.Assignment = &bundle.Assignment{BundleID: bundleID, Direction: uint8(dirRef), Pos: pos}
	}
	return pt, nil
}

// BundleLengthCutoff and BundleMergeDistance match the values
// pgr-generate-sv-analysis.rs hard-codes for SV-candidate-scale bundle
// decomposition (the thresholds only matter at whole-genome scale, where
// the original tool uses nonzero values; per-candidate windows are short
// enough that zero cutoffs keep every bundle run).
const (
	BundleLengthCutoff  = 0
	BundleMergeDistance = 0
)

// BuildSegments decomposes one side's AssignedPoints into bundle.Segments.
func BuildSegments(points []bundle.AssignedPoint) []bundle.Segment {
	return bundle.BuildSegments(bundle.Partition(points, BundleLengthCutoff, BundleMergeDistance))
}

// Row is one bundle-alignment traceback step, already translated into
// genomic coordinates the way pgr-generate-sv-analysis.rs's final println
// does (query coordinates are orientation-aware: a reverse-oriented
// candidate reports qs/qe measured back from rec.qe).
type Row struct {
	TargetName         string
	TS, TE             uint32
	QueryName          string
	QS, QE             uint32
	Orientation        uint8
	TBundleID          int
	TBundleDir         uint8
	QBundleID          int
	QBundleDir         uint8
	Type               bundle.AlnType
	TIsRepeat, QIsRepeat bool
}

// BuildRows runs bundle.AlignBundles(queryBundles, targetBundles) and maps
// its path into Rows with cand's genomic offsets applied.
func BuildRows(cand Candidate, targetBundles, queryBundles []bundle.Segment) []Row {
	if len(targetBundles) == 0 || len(queryBundles) == 0 {
		return nil
	}
	_, _, _, path := bundle.AlignBundles(queryBundles, targetBundles)
	rows := make([]Row, 0, len(path))
	for _, elm := range path {
		tSeg := targetBundles[elm.TIdx]
		qSeg := queryBundles[elm.QIdx]
		ts := tSeg.Bgn + cand.TS
		te := tSeg.End + cand.TS
		var qs, qe uint32
		if cand.Orientation == 0 {
			qs = qSeg.Bgn + cand.QS
			qe = qSeg.End + cand.QS
		} else {
			qs = cand.QE - qSeg.End
			qe = cand.QE - qSeg.Bgn
		}
		rows = append(rows, Row{
			TargetName: cand.TargetName, TS: ts, TE: te,
			QueryName: cand.QueryName, QS: qs, QE: qe,
			Orientation: cand.Orientation,
			TBundleID:   tSeg.BundleID, TBundleDir: tSeg.Direction,
			QBundleID: qSeg.BundleID, QBundleDir: qSeg.Direction,
			Type: elm.Type, TIsRepeat: tSeg.IsRepeat, QIsRepeat: qSeg.IsRepeat,
		})
	}
	return rows
}

var alnTypeName = map[bundle.AlnType]string{
	bundle.Match: "Match", bundle.Insertion: "Insertion", bundle.Deletion: "Deletion", bundle.Begin: "Begin",
}

// WriteHeader writes the "##\t<svc_type>\t..." comment line preceding a
// candidate's rows.
func WriteHeader(w io.Writer, cand Candidate) error {
	_, err := fmt.Fprintf(w, "##\t%s\t%s\t%d\t%d\t%s\t%d\t%d\t%d\t%s\n",
		cand.SvcType, cand.TargetName, cand.TS, cand.TE, cand.QueryName, cand.QS, cand.QE, cand.Orientation, cand.AlnType)
	return err
}

// WriteRow writes one BuildRows row.
func WriteRow(w io.Writer, r Row) error {
	_, err := fmt.Fprintf(w, "%s %d %d %s %d %d %d %d %d %d %d %s %t %t\n",
		r.TargetName, r.TS, r.TE, r.QueryName, r.QS, r.QE, r.Orientation,
		r.TBundleID, r.TBundleDir, r.QBundleID, r.QBundleDir,
		alnTypeName[r.Type], r.TIsRepeat, r.QIsRepeat)
	return err
}
