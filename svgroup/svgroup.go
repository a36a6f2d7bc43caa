// Package svgroup groups labeled BED intervals from several input files
// into overlap clusters and summarizes each cluster's per-label interval
// count, ported from pgr-group-svcnd's multi-sample SV-candidate grouping.
package svgroup

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Entry is one BED record tagged with the label of the input file it came
// from.
type Entry struct {
	Chrom      string
	Start, End uint32
	Label      string
	Annotation string
}

// ReadLabeledBED reads a BED file (chrom, start, end, annotation columns;
// lines starting with '#' are skipped) and tags every record with label.
func ReadLabeledBED(r io.Reader, label string) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	var entries []Entry
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("svgroup: line %d: expected at least 4 tab-separated fields, got %d", line, len(fields))
		}
		start, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("svgroup: line %d: start: %w", line, err)
		}
		end, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("svgroup: line %d: end: %w", line, err)
		}
		entries = append(entries, Entry{
			Chrom: fields[0], Start: uint32(start), End: uint32(end),
			Label: label, Annotation: fields[3],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("svgroup: %w", err)
	}
	return entries, nil
}

// Group is one overlap cluster of Entries on a single chromosome: [Start,
// End) spans the union of its members, and LabelCounts tallies how many
// entries of each label fell into it.
type Group struct {
	Chrom       string
	Start, End  uint32
	LabelCounts map[string]int
	Members     []Entry
}

// GroupByOverlap partitions entries into per-chromosome overlap clusters:
// entries are sorted by (Chrom, Start, End), then any entry whose Start
// falls at or before the running cluster's rightmost End joins the
// cluster; its End extends the cluster's span if larger. Ported from
// pgr-group-svcnd's group_intervals closure, generalized from a single
// chromosome's interval list to the full multi-chromosome input.
func GroupByOverlap(entries []Entry) []Group {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})

	var groups []Group
	var cur []Entry
	var curChrom string
	var curEnd uint32
	haveCur := false

	flush := func() {
		if len(cur) == 0 {
			return
		}
		start := cur[0].Start
		end := cur[0].End
		counts := map[string]int{}
		for _, e := range cur {
			if e.End > end {
				end = e.End
			}
			counts[e.Label]++
		}
		groups = append(groups, Group{Chrom: curChrom, Start: start, End: end, LabelCounts: counts, Members: cur})
		cur = nil
	}

	for _, e := range sorted {
		if haveCur && e.Chrom == curChrom && e.Start <= curEnd {
			cur = append(cur, e)
			if e.End > curEnd {
				curEnd = e.End
			}
			continue
		}
		flush()
		cur = []Entry{e}
		curChrom, curEnd, haveCur = e.Chrom, e.End, true
	}
	flush()
	return groups
}

// WriteGroup writes g as a BED+ line (chrom, start, end, comma-joined
// "label:count" summary, score 0) followed by a '#'-prefixed comment line
// listing each member interval as "chrom\tstart\tend\tlabel:annotation",
// tab-joined. Matches pgr-group-svcnd's two-line-per-group output.
func WriteGroup(w io.Writer, g Group) error {
	labels := make([]string, 0, len(g.LabelCounts))
	for label := range g.LabelCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	summary := make([]string, len(labels))
	for i, label := range labels {
		summary[i] = fmt.Sprintf("%s:%d", label, g.LabelCounts[label])
	}

	members := make([]string, len(g.Members))
	for i, m := range g.Members {
		members[i] = fmt.Sprintf("%s\t%d\t%d\t%s:%s", g.Chrom, m.Start, m.End, m.Label, m.Annotation)
	}

	_, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\n# %s\n",
		g.Chrom, g.Start, g.End, strings.Join(summary, ","), 0, strings.Join(members, "\t"))
	return err
}

// SortedGroups returns groups ordered by chromosome then start, the
// deterministic output order the reference tool produces by sorting its
// chromosome key list before iterating.
func SortedGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chrom != out[j].Chrom {
			return out[i].Chrom < out[j].Chrom
		}
		return out[i].Start < out[j].Start
	})
	return out
}
