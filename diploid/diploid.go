// Package diploid implements diploid variant merging and confidently-diploid
// region intersection, reading its input from two haplotypes' alnmap
// streams (package alnmap) and writing a VCFv4.2 file plus a BED file.
//
// Grouping, ref-base realization, and the DUP/OVLP/PASS filter derivation
// are ported from pgr-bin's pgr-generate-diploid-vcf. Allele-index
// assignment deliberately departs from that source: the reference tool
// keys its allele map by (ref_start, ref_seg, alt_seg) and resolves a
// haplotype's genotype by taking the last-pushed record's index, which
// silently picks an arbitrary allele when a haplotype contributes more than
// one record to a group. This package keys allele identity by
// (hap_type, aln_block_id) instead, so a haplotype's genotype is always
// the allele produced by its own alignment block, never an artifact of
// record push order.
package diploid

import (
	"fmt"
	"sort"
	"strings"

	"blainsmith.com/go/seahash"

	"github.com/zhengxinchang/pgr-go/alnmap"
	"github.com/zhengxinchang/pgr-go/ivl"
)

// VariantRecord is one haplotype's contribution to a reference position: a
// parsed alnmap V/V_D/V_O row plus the alignment block it came from.
type VariantRecord struct {
	RefName    string
	TS         uint32 // reference start (alnmap field 11, tc)
	TL         uint32 // len(RefSeg)
	HapType    uint8
	RefSeg     string
	AltSeg     string
	RecType    alnmap.Type
	AlnBlockID int
}

// BlockSpan is one alignment block's span on the reference, used for the
// per-haplotype "is this reference region covered at all" overlap test and
// for the BED confidently-diploid-region computation.
type BlockSpan struct {
	RefName  string
	Start, End uint32
}

// ExtractRecords splits a haplotype's parsed alnmap records into its
// VariantRecords, every alignment block's reference span (AlnBlocks, one
// entry per M/M_D/M_O/V/V_D/V_O row), and the spans of only its
// unambiguous (plain M or V) blocks (UniqueAlnBlocks) — the same three-way
// split as the reference tool's get_variant_recs closure.
func ExtractRecords(records []alnmap.Record, hapType uint8) (variants []VariantRecord, alnBlocks, uniqueAlnBlocks []BlockSpan) {
	for _, rec := range records {
		isV := rec.Type == alnmap.TypeVariant || rec.Type == alnmap.TypeVariantDel || rec.Type == alnmap.TypeVariantOri
		isM := rec.Type == alnmap.TypeMatch || rec.Type == alnmap.TypeMatchDel || rec.Type == alnmap.TypeMatchOrien

		if isV {
			variants = append(variants, VariantRecord{
				RefName: rec.TargetName, TS: rec.VariantRefCoord, TL: uint32(len(rec.RefSegment)),
				HapType: hapType, RefSeg: rec.RefSegment, AltSeg: rec.AltSegment,
				RecType: rec.Type, AlnBlockID: rec.AlnBlockID,
			})
		}
		if isM || isV {
			span := BlockSpan{RefName: rec.TargetName, Start: rec.TS, End: rec.TE}
			alnBlocks = append(alnBlocks, span)
			if rec.Type == alnmap.TypeMatch || rec.Type == alnmap.TypeVariant {
				uniqueAlnBlocks = append(uniqueAlnBlocks, span)
			}
		}
	}
	return variants, alnBlocks, uniqueAlnBlocks
}

// GroupOverlapping sorts records by (RefName, TS, TL, ...) and partitions
// them into groups of mutually-overlapping records — any record whose TS
// falls before the running group's rightmost TS+TL is folded into the
// current group. Ported from the reference tool's main-loop grouping pass.
func GroupOverlapping(records []VariantRecord) [][]VariantRecord {
	sorted := make([]VariantRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.RefName != b.RefName {
			return a.RefName < b.RefName
		}
		if a.TS != b.TS {
			return a.TS < b.TS
		}
		if a.TL != b.TL {
			return a.TL < b.TL
		}
		return a.HapType < b.HapType
	})

	var groups [][]VariantRecord
	var cur []VariantRecord
	var curEndName string
	var curEnd uint32
	haveEnd := false

	for _, rec := range sorted {
		if haveEnd && rec.RefName == curEndName && rec.TS < curEnd {
			cur = append(cur, rec)
		} else {
			if len(cur) > 0 {
				groups = append(groups, cur)
			}
			cur = []VariantRecord{rec}
		}
		end := rec.TS + rec.TL
		if !haveEnd || rec.RefName != curEndName || end > curEnd {
			curEndName, curEnd, haveEnd = rec.RefName, end, true
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// VCFRecord is one realized, dedup'd diploid variant call.
type VCFRecord struct {
	Contig string
	Pos    uint32 // 1-based (TS0+1)
	Ref    string
	Alt    []string // deduped, ref excluded, length-sorted
	Qual   int      // 30 or 40
	Filter string   // PASS, DUP, OVLP, or NC
	GT     string   // "h0|h1", each side a deduped allele index or "."
}

// RealizeGroup turns one GroupOverlapping group into a VCFRecord: it
// verifies every record's claimed ref bases agree at shared positions
// (a structural assertion failure if they don't), builds the group's
// reference string and deduped alt allele list, and
// derives each haplotype's genotype from whether its own alignment blocks
// cover the group's reference span and, if so, which allele its own
// (hap_type, aln_block_id) key points to.
func RealizeGroup(group []VariantRecord, hap0Blocks, hap1Blocks []BlockSpan) (VCFRecord, error) {
	if len(group) == 0 {
		return VCFRecord{}, fmt.Errorf("diploid: RealizeGroup called with an empty group")
	}
	refName := group[0].RefName

	refBase := map[uint32]byte{}
	for _, rec := range group {
		for i := 0; i < len(rec.RefSeg); i++ {
			pos := rec.TS + uint32(i)
			b := rec.RefSeg[i]
			if prev, ok := refBase[pos]; ok && prev != b {
				return VCFRecord{}, fmt.Errorf(
					"diploid: ref base disagreement at %s:%d (%q vs %q)", refName, pos, string(prev), string(b))
			}
			refBase[pos] = b
		}
	}
	positions := make([]uint32, 0, len(refBase))
	for pos := range refBase {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	refStr := make([]byte, len(positions))
	for i, pos := range positions {
		refStr[i] = refBase[pos]
	}
	ts0 := positions[0]
	tl0 := uint32(len(refStr))

	type alleleKey struct {
		hap   uint8
		block int
	}
	recordsByKey := map[alleleKey][]VariantRecord{}
	var keyOrder []alleleKey
	var groupRecType alnmap.Type

	for _, rec := range group {
		if groupRecType == "" && (rec.RecType == alnmap.TypeVariantDel || rec.RecType == alnmap.TypeVariantOri) {
			groupRecType = rec.RecType
		}
		key := alleleKey{hap: rec.HapType, block: rec.AlnBlockID}
		if _, seen := recordsByKey[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		recordsByKey[key] = append(recordsByKey[key], rec)
	}

	alIdxOf := map[alleleKey]int{}
	alleleStr := map[int]string{}
	var alleleOrder []int
	nextIdx := 1

	h0Idx := map[int]bool{}
	h1Idx := map[int]bool{}

	for _, key := range keyOrder {
		recs := recordsByKey[key]
		sort.Slice(recs, func(i, j int) bool { return recs[i].TS < recs[j].TS })

		idx := nextIdx
		nextIdx++
		alIdxOf[key] = idx
		alleleOrder = append(alleleOrder, idx)

		// Walk this key's records in ref_start order: emit the reference gap
		// since the last consumed position, then the record's alt segment;
		// the final reference suffix is emitted once all records are consumed.
		var b strings.Builder
		consumed := ts0
		for _, rec := range recs {
			b.WriteString(string(refStr[consumed-ts0 : rec.TS-ts0]))
			b.WriteString(rec.AltSeg)
			consumed = rec.TS + uint32(len(rec.RefSeg))
		}
		b.WriteString(string(refStr[consumed-ts0:]))
		alleleStr[idx] = b.String()

		if key.hap == 0 {
			h0Idx[idx] = true
		} else {
			h1Idx[idx] = true
		}
	}

	sort.Slice(alleleOrder, func(i, j int) bool {
		si, sj := alleleStr[alleleOrder[i]], alleleStr[alleleOrder[j]]
		if len(si) != len(sj) {
			return len(si) < len(sj)
		}
		return si < sj
	})
	// dedup buckets candidate alt strings by seahash, then confirms an exact
	// string match within the bucket before treating two alleles as the same
	// ALT — the hash picks the bucket, equality decides identity, so a hash
	// collision can never merge two genuinely different alleles. The
	// reference string is entered first as index 0, so an allele that
	// reproduces the reference maps to 0 and is not listed as an ALT.
	type dedupEntry struct {
		str string
		idx int
	}
	dedup := map[uint64][]dedupEntry{}
	refHash := seahash.Sum64(refStr)
	dedup[refHash] = append(dedup[refHash], dedupEntry{str: string(refStr), idx: 0})
	var alts []string
	finalIdx := map[int]int{} // original alIdx -> final dedup index
	for _, idx := range alleleOrder {
		s := alleleStr[idx]
		h := seahash.Sum64([]byte(s))
		found := -1
		for _, e := range dedup[h] {
			if e.str == s {
				found = e.idx
				break
			}
		}
		if found >= 0 {
			finalIdx[idx] = found
			continue
		}
		alts = append(alts, s)
		d := len(alts)
		dedup[h] = append(dedup[h], dedupEntry{str: s, idx: d})
		finalIdx[idx] = d
	}

	// gtSide derives one haplotype's genotype call: missing coverage is
	// ".", no variant contribution is "0", a single collapsed allele index
	// is that index, and disagreeing alleles within one haplotype (which
	// the (hap_type, aln_block_id) keying can still produce if the same
	// haplotype's two blocks disagree on the alt) report "." rather than
	// arbitrarily picking one.
	gtSide := func(idxSet map[int]bool, blocks []BlockSpan) string {
		if !hasOverlap(blocks, refName, ts0, ts0+tl0) {
			return "."
		}
		if len(idxSet) == 0 {
			return "0"
		}
		distinct := map[int]bool{}
		for idx := range idxSet {
			distinct[finalIdx[idx]] = true
		}
		if len(distinct) != 1 {
			return "."
		}
		for d := range distinct {
			return fmt.Sprintf("%d", d)
		}
		return "."
	}

	gt := gtSide(h0Idx, hap0Blocks) + "|" + gtSide(h1Idx, hap1Blocks)

	filter := "PASS"
	switch groupRecType {
	case alnmap.TypeVariantDel:
		filter = "DUP"
	case alnmap.TypeVariantOri:
		filter = "OVLP"
	}
	if filter == "PASS" && strings.Contains(gt, ".") {
		filter = "NC"
	}
	qual := 40
	if filter != "PASS" {
		qual = 30
	}

	return VCFRecord{
		Contig: refName,
		Pos:    ts0 + 1,
		Ref:    string(refStr),
		Alt:    alts,
		Qual:   qual,
		Filter: filter,
		GT:     gt,
	}, nil
}

func hasOverlap(blocks []BlockSpan, refName string, start, end uint32) bool {
	for _, b := range blocks {
		if b.RefName == refName && b.Start < end && start < b.End {
			return true
		}
	}
	return false
}

// BuildConfidentRegions turns each haplotype's unique-alignment-block spans
// into the confidently-diploid BED set: each haplotype's blocks are merged
// into disjoint per-contig ranges, then the two haplotypes' disjoint sets
// are intersected.
func BuildConfidentRegions(hap0Unique, hap1Unique []BlockSpan) ivl.Set {
	toSet := func(spans []BlockSpan) ivl.Set {
		s := make(ivl.Set)
		for _, b := range spans {
			s[b.RefName] = append(s[b.RefName], ivl.Range{Start: int(b.Start), End: int(b.End)})
		}
		return s
	}
	return ivl.Intersect(ivl.Merge(toSet(hap0Unique)), ivl.Merge(toSet(hap1Unique)))
}
