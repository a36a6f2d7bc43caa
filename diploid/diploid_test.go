package diploid

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengxinchang/pgr-go/alnmap"
	"github.com/zhengxinchang/pgr-go/ctglen"
)

// Two haplotypes each contribute the same single-base SNV at chr1:100 over
// overlapping alignment blocks: the realized record should merge into one
// VCF line "chr1 101 . A T 40 PASS . GT 1|1".
func TestRealizeGroupSharedSNVBothHaplotypesHomozygousAlt(t *testing.T) {
	group := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 1},
		{RefName: "chr1", TS: 100, TL: 1, HapType: 1, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 7},
	}
	hap0Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}
	hap1Blocks := []BlockSpan{{RefName: "chr1", Start: 50, End: 250}}

	rec, err := RealizeGroup(group, hap0Blocks, hap1Blocks)
	require.NoError(t, err)
	assert.Equal(t, "chr1", rec.Contig)
	assert.Equal(t, uint32(101), rec.Pos)
	assert.Equal(t, "A", rec.Ref)
	assert.Equal(t, []string{"T"}, rec.Alt)
	assert.Equal(t, 40, rec.Qual)
	assert.Equal(t, "PASS", rec.Filter)
	assert.Equal(t, "1|1", rec.GT)

	var buf bytes.Buffer
	require.NoError(t, WriteVCFRecord(&buf, rec))
	assert.Equal(t, "chr1\t101\t.\tA\tT\t40\tPASS\t.\tGT\t1|1\n", buf.String())
}

// A haplotype whose own alignment blocks never reach the variant's
// reference span reports a missing genotype, not an implicit reference
// call.
func TestRealizeGroupMissingHaplotypeCoverageIsDot(t *testing.T) {
	group := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 1},
	}
	hap0Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}
	var hap1Blocks []BlockSpan

	rec, err := RealizeGroup(group, hap0Blocks, hap1Blocks)
	require.NoError(t, err)
	assert.Equal(t, "1|.", rec.GT)
	assert.Equal(t, "NC", rec.Filter)
	assert.Equal(t, 30, rec.Qual)
}

// Two distinct alt alleles at the same group dedup into two ALT entries and
// each haplotype's genotype points at its own allele's 1-based index.
func TestRealizeGroupDistinctAllelesGetDistinctIndices(t *testing.T) {
	group := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 1},
		{RefName: "chr1", TS: 100, TL: 1, HapType: 1, RefSeg: "A", AltSeg: "C", RecType: alnmap.TypeVariant, AlnBlockID: 2},
	}
	hap0Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}
	hap1Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}

	rec, err := RealizeGroup(group, hap0Blocks, hap1Blocks)
	require.NoError(t, err)
	require.Len(t, rec.Alt, 2)
	assert.NotEqual(t, rec.GT[0], rec.GT[2]) // "i|j", i != j
	assert.Contains(t, []string{"1|2", "2|1"}, rec.GT)
}

// A haplotype contributing two records to the same group (two alignment
// blocks touching the same reference span) keys each by its own block id,
// so its genotype reflects that haplotype's own allele, not an artifact of
// map insertion order across haplotypes (the behavior the reference tool's
// (ref_start, ref_seg, alt_seg)-keyed + last() path could get wrong).
func TestRealizeGroupPerHaplotypeBlockKeyingIsStable(t *testing.T) {
	group := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 1},
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 2},
		{RefName: "chr1", TS: 100, TL: 1, HapType: 1, RefSeg: "A", AltSeg: "C", RecType: alnmap.TypeVariant, AlnBlockID: 3},
	}
	hap0Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}
	hap1Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}

	rec, err := RealizeGroup(group, hap0Blocks, hap1Blocks)
	require.NoError(t, err)
	// hap0's two blocks both produced the same ALT string (T), so it dedups
	// to one index; hap0's side of the GT must reference that shared index.
	require.Len(t, rec.Alt, 2)
	tIdx := indexOf(rec.Alt, "T")
	require.GreaterOrEqual(t, tIdx, 0)
	assert.Equal(t, rune('1'+tIdx), rune(rec.GT[0]))
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

// A single alignment block contributing two variant records to the same
// group (two SNVs a few bases apart, both inside one overlap span) must
// have both alts folded into that key's one allele string, not just the
// first record encountered.
func TestRealizeGroupMultipleRecordsPerKeyBuildOneAllele(t *testing.T) {
	group := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 1},
		{RefName: "chr1", TS: 103, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "G", RecType: alnmap.TypeVariant, AlnBlockID: 1},
		{RefName: "chr1", TS: 100, TL: 5, HapType: 1, RefSeg: "AAAAA", AltSeg: "AAAAA", RecType: alnmap.TypeVariant, AlnBlockID: 2},
	}
	hap0Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}
	hap1Blocks := []BlockSpan{{RefName: "chr1", Start: 0, End: 200}}

	rec, err := RealizeGroup(group, hap0Blocks, hap1Blocks)
	require.NoError(t, err)
	require.Len(t, rec.Alt, 1)
	// ref is "AAAAA" (chr1:100-104); hap0's block substitutes pos 100 (A->T)
	// and pos 103 (A->G), so its allele is "TAAGA", not just "TAAAA" from the
	// first record alone.
	assert.Equal(t, "TAAGA", rec.Alt[0])
	assert.Equal(t, "1|0", rec.GT)
}

// Ref bases disagreeing within a group is a structural invariant violation:
// RealizeGroup must fail rather than silently pick one.
func TestRealizeGroupRefBaseDisagreementErrors(t *testing.T) {
	group := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariant, AlnBlockID: 1},
		{RefName: "chr1", TS: 100, TL: 1, HapType: 1, RefSeg: "G", AltSeg: "C", RecType: alnmap.TypeVariant, AlnBlockID: 2},
	}
	_, err := RealizeGroup(group, nil, nil)
	assert.Error(t, err)
}

// A V_D record in the group marks the call DUP/qual 30; a V_O marks it
// OVLP/qual 30; plain V records leave it PASS/qual 40.
func TestRealizeGroupFilterDerivation(t *testing.T) {
	dup := []VariantRecord{
		{RefName: "chr1", TS: 10, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariantDel, AlnBlockID: 1},
	}
	rec, err := RealizeGroup(dup, []BlockSpan{{"chr1", 0, 20}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "DUP", rec.Filter)
	assert.Equal(t, 30, rec.Qual)

	ovlp := []VariantRecord{
		{RefName: "chr1", TS: 10, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T", RecType: alnmap.TypeVariantOri, AlnBlockID: 1},
	}
	rec, err = RealizeGroup(ovlp, []BlockSpan{{"chr1", 0, 20}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "OVLP", rec.Filter)
	assert.Equal(t, 30, rec.Qual)
}

func TestGroupOverlappingSplitsNonAdjacentRecords(t *testing.T) {
	records := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 1, HapType: 0, RefSeg: "A", AltSeg: "T"},
		{RefName: "chr1", TS: 100, TL: 1, HapType: 1, RefSeg: "A", AltSeg: "T"},
		{RefName: "chr1", TS: 500, TL: 1, HapType: 0, RefSeg: "G", AltSeg: "C"},
	}
	groups := GroupOverlapping(records)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
}

func TestGroupOverlappingMergesOverlappingSpans(t *testing.T) {
	records := []VariantRecord{
		{RefName: "chr1", TS: 100, TL: 5, HapType: 0, RefSeg: "AAAAA", AltSeg: "A"},
		{RefName: "chr1", TS: 102, TL: 2, HapType: 1, RefSeg: "AA", AltSeg: "C"},
	}
	groups := GroupOverlapping(records)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 2)
}

func TestBuildConfidentRegionsIntersectsHaplotypes(t *testing.T) {
	hap0 := []BlockSpan{{RefName: "chr1", Start: 0, End: 100}}
	hap1 := []BlockSpan{{RefName: "chr1", Start: 50, End: 150}}
	regions := BuildConfidentRegions(hap0, hap1)
	require.Contains(t, regions, "chr1")
	require.Len(t, regions["chr1"], 1)
	assert.Equal(t, 50, regions["chr1"][0].Start)
	assert.Equal(t, 100, regions["chr1"][0].End)
}

func TestWriteVCFHeaderIncludesContigsAndSample(t *testing.T) {
	var buf bytes.Buffer
	contigs := []ctglen.Entry{{SortKey: 0, Name: "chr1", Length: 1000}}
	require.NoError(t, WriteVCFHeader(&buf, contigs, "sampleA"))
	out := buf.String()
	assert.Contains(t, out, "##contig=<ID=chr1,length=1000>")
	assert.Contains(t, out, "sampleA")
	assert.Contains(t, out, "##FILTER=<ID=DUP")
	assert.Contains(t, out, "##FILTER=<ID=OVLP")
}

func TestWriteBEDOrdersContigsAndRanges(t *testing.T) {
	var buf bytes.Buffer
	set := BuildConfidentRegions(
		[]BlockSpan{{RefName: "chr2", Start: 0, End: 10}, {RefName: "chr1", Start: 0, End: 10}},
		[]BlockSpan{{RefName: "chr2", Start: 0, End: 10}, {RefName: "chr1", Start: 0, End: 10}},
	)
	require.NoError(t, WriteBED(&buf, set))
	assert.Equal(t, "chr1\t0\t10\nchr2\t0\t10\n", buf.String())
}
