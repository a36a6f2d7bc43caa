// Package ivl implements interval merge and intersect: collapsing a
// per-contig interval set into its disjoint form, then intersecting two
// disjoint sets contig-by-contig.
//
// Disjoint-set lookups are backed by github.com/biogo/store/interval's
// IntTree, the same interval index the kortschak-ins tools use for
// overlap queries, rather than a hand-rolled sorted-slice binary search.
package ivl

import (
	"sort"

	"github.com/biogo/store/interval"
)

// Range is a half-open [Start, End) interval on one contig.
type Range struct {
	Start, End int
}

// Set is a per-contig collection of (possibly overlapping) Ranges.
type Set map[string][]Range

// rangeNode adapts a Range into biogo/store/interval's Interface so a Set's
// ranges can be queried through an IntTree.
type rangeNode struct {
	id uintptr
	r  Range
}

func (n rangeNode) ID() uintptr           { return n.id }
func (n rangeNode) Range() interval.IntRange { return interval.IntRange{Start: n.r.Start, End: n.r.End} }
func (n rangeNode) Overlap(b interval.IntRange) bool {
	return n.r.Start < b.End && b.Start < n.r.End
}

// Merge collapses every contig's range list into its minimal disjoint form:
// ranges are sorted by start, then any two that touch or overlap
// (next.Start <= running.End) are coalesced. Ported in spirit from
// interval/bedunion.go's merge pass, generalized from BED-specific types to
// Set/Range.
func Merge(in Set) Set {
	out := make(Set, len(in))
	for contig, ranges := range in {
		out[contig] = mergeContig(ranges)
	}
	return out
}

func mergeContig(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Intersect computes, for every contig present in both a and b, the set of
// overlap intersections between a's ranges and b's ranges. a and b are
// assumed already disjoint per-contig (call Merge first if not). A contig
// present in only one of a or b contributes nothing to the result.
func Intersect(a, b Set) Set {
	out := make(Set)
	for contig, aRanges := range a {
		bRanges, ok := b[contig]
		if !ok || len(bRanges) == 0 {
			continue
		}
		var tree interval.IntTree
		for i, r := range bRanges {
			if err := tree.Insert(rangeNode{id: uintptr(i), r: r}, false); err != nil {
				panic("ivl: inserting into interval tree: " + err.Error())
			}
		}
		tree.AdjustRanges()

		var hits []Range
		for _, ar := range aRanges {
			overlaps := tree.Get(rangeNode{r: ar})
			for _, o := range overlaps {
				br := o.(rangeNode).r
				lo, hi := ar.Start, ar.End
				if br.Start > lo {
					lo = br.Start
				}
				if br.End < hi {
					hi = br.End
				}
				if lo < hi {
					hits = append(hits, Range{Start: lo, End: hi})
				}
			}
		}
		if len(hits) > 0 {
			sort.Slice(hits, func(i, j int) bool { return hits[i].Start < hits[j].Start })
			out[contig] = hits
		}
	}
	return out
}

// SortedContigs returns s's contig names in ascending order, for
// deterministic BED output.
func SortedContigs(s Set) []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
