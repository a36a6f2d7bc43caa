// Package bundle implements principal-bundle decomposition and
// bundle-vs-bundle alignment.
//
// Partition is ported from pgr-bin's group_smps_by_principle_bundle_id, and
// AlignBundles (in align.go) from its align_bundles.
package bundle

import (
	"encoding/binary"

	"github.com/minio/highwayhash"
)

var bundleGroupKeySeed [highwayhash.Size]byte

// bundleGroupKey hashes a (bundleID, direction) pair into a fixed-size
// comparison key, the same composite-key-hashing idiom the fusion package
// uses to group candidates by a multi-field key.
func bundleGroupKey(bundleID int, direction uint8) [highwayhash.Size]byte {
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(bundleID))
	buf[8] = direction
	return highwayhash.Sum(buf[:], bundleGroupKeySeed[:])
}

// SeedPoint is one minimizer/seed match point along a sequence: its span and
// orientation.
type SeedPoint struct {
	Bgn, End uint32
	Or       uint8
}

// Assignment is the principal-bundle membership of a SeedPoint, or nil if
// the point carries no bundle assignment (e.g. it fell in a repeat region
// that upstream bundle construction excluded).
type Assignment struct {
	BundleID  int
	Direction uint8 // the bundle's own orientation at this vertex
	Pos       int   // the vertex's position within the bundle's path
}

// AssignedPoint pairs a SeedPoint with its (possibly absent) Assignment.
type AssignedPoint struct {
	Point      SeedPoint
	Assignment *Assignment
}

type partitionEntry struct {
	point     SeedPoint
	bundleID  int
	direction uint8 // 0 if point.Or == Assignment.Direction, 1 otherwise
	bpos      int
}

// partition groups consecutive AssignedPoints sharing the same (bundleID,
// direction) pair, dropping points with no Assignment, and drops any run
// whose span (measured end-to-end across the run) is not greater than
// lengthCutoff. Ported
// from the first half of group_smps_by_principle_bundle_id.
func partitionRuns(points []AssignedPoint, lengthCutoff int) [][]partitionEntry {
	var all [][]partitionEntry
	var cur []partitionEntry
	havePre := false
	var preBundleID int
	var preDirection uint8

	flushIfLongEnough := func() {
		if len(cur) == 0 {
			return
		}
		span := int(cur[len(cur)-1].point.End) - int(cur[0].point.Bgn)
		if span > lengthCutoff {
			all = append(all, cur)
		}
		cur = nil
	}

	for _, ap := range points {
		if ap.Assignment == nil {
			continue
		}
		d := uint8(0)
		if ap.Point.Or != ap.Assignment.Direction {
			d = 1
		}
		bid := ap.Assignment.BundleID
		bpos := ap.Assignment.Pos

		if !havePre {
			cur = []partitionEntry{{point: ap.Point, bundleID: bid, direction: d, bpos: bpos}}
			preBundleID, preDirection, havePre = bid, d, true
			continue
		}
		if bid != preBundleID || d != preDirection {
			flushIfLongEnough()
			preBundleID, preDirection = bid, d
		}
		cur = append(cur, partitionEntry{point: ap.Point, bundleID: bid, direction: d, bpos: bpos})
	}
	flushIfLongEnough()
	return all
}

// Partition groups SeedPoints into maximal (bundleID, direction) runs
// longer than lengthCutoff (Lmin), then merges adjacent runs that share the
// same (bundleID, direction) and are within mergeDistance (Dmerge) of each
// other.
func Partition(points []AssignedPoint, lengthCutoff, mergeDistance int) [][]partitionEntry {
	runs := partitionRuns(points, lengthCutoff)
	if len(runs) == 0 {
		return nil
	}

	var merged [][]partitionEntry
	cur := runs[0]
	for _, p := range runs[1:] {
		last := cur[len(cur)-1]
		next := p[0]
		gap := int(next.point.Bgn) - int(last.point.End)
		if gap < 0 {
			gap = -gap
		}
		sameGroup := bundleGroupKey(last.bundleID, last.direction) == bundleGroupKey(next.bundleID, next.direction)
		if sameGroup && gap < mergeDistance {
			cur = append(cur, p...)
		} else {
			merged = append(merged, cur)
			cur = p
		}
	}
	merged = append(merged, cur)
	return merged
}

// Segment is a maximal run of seed points belonging to one bundle in one
// direction: the span it covers, the bundle path range it walks, and
// whether that bundle_id recurs elsewhere on the same sequence (IsRepeat).
type Segment struct {
	Bgn, End    uint32
	BundleID    int
	VertexCount int
	Direction   uint8
	PathBgn     int
	PathEnd     int
	IsRepeat    bool
}

// BuildSegments turns Partition's output into Segments. occurrences is a
// bundle_id -> count-of-segments-on-this-sequence map (computed over every
// partition belonging to the same query/target sequence); a bundle_id
// occurring in more than one Segment marks every Segment with that id as a
// repeat.
func BuildSegments(partitions [][]partitionEntry) []Segment {
	counts := map[int]int{}
	for _, p := range partitions {
		if len(p) == 0 {
			continue
		}
		counts[p[0].bundleID]++
	}
	segs := make([]Segment, 0, len(partitions))
	for _, p := range partitions {
		if len(p) == 0 {
			continue
		}
		first, last := p[0], p[len(p)-1]
		segs = append(segs, Segment{
			Bgn:         first.point.Bgn,
			End:         last.point.End,
			BundleID:    first.bundleID,
			VertexCount: len(p),
			Direction:   first.direction,
			PathBgn:     first.bpos,
			PathEnd:     last.bpos,
			IsRepeat:    counts[first.bundleID] > 1,
		})
	}
	return segs
}
