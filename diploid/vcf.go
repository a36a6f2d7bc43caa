package diploid

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/zhengxinchang/pgr-go/ctglen"
	"github.com/zhengxinchang/pgr-go/ivl"
)

// WriteVCFHeader writes the VCFv4.2 header lines: the fileformat line,
// one ##contig line per entry (in entries' own order,
// which ctglen.Load already sorted by sort_key), the DUP/OVLP FILTER
// definitions, the GT FORMAT definition, and the #CHROM column header.
func WriteVCFHeader(w io.Writer, contigs []ctglen.Entry, sampleName string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "##fileformat=VCFv4.2")
	for _, c := range contigs {
		fmt.Fprintf(bw, "##contig=<ID=%s,length=%d>\n", c.Name, c.Length)
	}
	fmt.Fprintln(bw, `##FILTER=<ID=DUP,Description="Variant falls in a region one haplotype's aligner marked as a likely duplication">`)
	fmt.Fprintln(bw, `##FILTER=<ID=OVLP,Description="Variant falls in a region one haplotype's aligner marked as overlapping alignment blocks">`)
	fmt.Fprintln(bw, `##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
	fmt.Fprintf(bw, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t%s\n", sampleName)
	return bw.Flush()
}

// WriteVCFRecord writes one realized VCFRecord as a VCFv4.2 data line.
func WriteVCFRecord(w io.Writer, rec VCFRecord) error {
	alt := strings.Join(rec.Alt, ",")
	if alt == "" {
		alt = "."
	}
	_, err := fmt.Fprintf(w, "%s\t%d\t.\t%s\t%s\t%d\t%s\t.\tGT\t%s\n",
		rec.Contig, rec.Pos, rec.Ref, alt, rec.Qual, rec.Filter, rec.GT)
	return err
}

// WriteBED writes a confidently-diploid-region Set (BuildConfidentRegions'
// output) as a 3-column tab-separated BED file, contigs in ascending
// sorted order and each contig's ranges in ascending start order.
func WriteBED(w io.Writer, regions ivl.Set) error {
	bw := bufio.NewWriter(w)
	contigs := make([]string, 0, len(regions))
	for c := range regions {
		contigs = append(contigs, c)
	}
	sort.Strings(contigs)
	for _, c := range contigs {
		ranges := regions[c]
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
		for _, r := range ranges {
			if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\n", c, r.Start, r.End); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
