package svgroup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLabeledBEDSkipsCommentsAndBlankLines(t *testing.T) {
	in := "# comment\nchr1\t10\t20\tdelA\n\nchr1\t30\t40\tinsB\n"
	entries, err := ReadLabeledBED(strings.NewReader(in), "sampleA")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Chrom: "chr1", Start: 10, End: 20, Label: "sampleA", Annotation: "delA"}, entries[0])
}

func TestReadLabeledBEDRejectsTooFewFields(t *testing.T) {
	_, err := ReadLabeledBED(strings.NewReader("chr1\t10\t20\n"), "sampleA")
	assert.Error(t, err)
}

func TestGroupByOverlapMergesTouchingIntervalsAcrossLabels(t *testing.T) {
	entries := []Entry{
		{Chrom: "chr1", Start: 10, End: 20, Label: "a", Annotation: "x"},
		{Chrom: "chr1", Start: 15, End: 25, Label: "b", Annotation: "y"},
		{Chrom: "chr1", Start: 100, End: 110, Label: "a", Annotation: "z"},
	}
	groups := GroupByOverlap(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, uint32(10), groups[0].Start)
	assert.Equal(t, uint32(25), groups[0].End)
	assert.Equal(t, 1, groups[0].LabelCounts["a"])
	assert.Equal(t, 1, groups[0].LabelCounts["b"])
	assert.Equal(t, uint32(100), groups[1].Start)
	assert.Equal(t, uint32(110), groups[1].End)
}

func TestGroupByOverlapKeepsChromosomesSeparate(t *testing.T) {
	entries := []Entry{
		{Chrom: "chr1", Start: 10, End: 20, Label: "a"},
		{Chrom: "chr2", Start: 10, End: 20, Label: "a"},
	}
	groups := GroupByOverlap(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, "chr1", groups[0].Chrom)
	assert.Equal(t, "chr2", groups[1].Chrom)
}

func TestWriteGroupFormatsSummaryAndMembers(t *testing.T) {
	g := Group{
		Chrom: "chr1", Start: 10, End: 25,
		LabelCounts: map[string]int{"a": 1, "b": 1},
		Members: []Entry{
			{Chrom: "chr1", Start: 10, End: 20, Label: "a", Annotation: "delA"},
			{Chrom: "chr1", Start: 15, End: 25, Label: "b", Annotation: "insB"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteGroup(&buf, g))
	out := buf.String()
	assert.Contains(t, out, "chr1\t10\t25\ta:1,b:1\t0\n")
	assert.Contains(t, out, "# chr1\t10\t20\ta:delA\tchr1\t15\t25\tb:insB\n")
}

func TestSortedGroupsOrdersByChromThenStart(t *testing.T) {
	groups := []Group{
		{Chrom: "chr2", Start: 5},
		{Chrom: "chr1", Start: 20},
		{Chrom: "chr1", Start: 5},
	}
	sorted := SortedGroups(groups)
	assert.Equal(t, "chr1", sorted[0].Chrom)
	assert.Equal(t, uint32(5), sorted[0].Start)
	assert.Equal(t, uint32(20), sorted[1].Start)
	assert.Equal(t, "chr2", sorted[2].Chrom)
}
