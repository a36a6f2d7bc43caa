package main

/*
pgr-generate-diploid-vcf merges two haplotypes' alnmap files into a single
diploid VCF file and a confidently-diploid BED track.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/zhengxinchang/pgr-go/alnmap"
	"github.com/zhengxinchang/pgr-go/ctglen"
	"github.com/zhengxinchang/pgr-go/diploid"
)

var (
	sampleName = flag.String("sample-name", "Sample", "Sample name for the VCF sample column")
	threads    = flag.Int("number-of-thread", 0, "Number of worker threads; 0 = all CPUs available")
)

func generateDiploidVCFUsage() {
	fmt.Printf("Usage: %s [OPTIONS] hap0-alnmap-path hap1-alnmap-path contig-length-json output-prefix\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func loadHap(path string, hapType uint8) (variants []diploid.VariantRecord, alnBlocks, uniqueBlocks []diploid.BlockSpan) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("opening %q: %v", path, err)
	}
	defer f.Close()
	reader, err := alnmap.NewReader(f)
	if err != nil {
		log.Fatalf("opening alnmap reader for %q: %v", path, err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("reading %q: %v", path, err)
	}
	return diploid.ExtractRecords(records, hapType)
}

func main() {
	flag.Usage = generateDiploidVCFUsage
	shutdown := grail.Init()
	defer shutdown()
	_ = *threads // number-of-thread is accepted for CLI-surface parity; this tool's work is not sharded.

	args := flag.Args()
	if len(args) != 4 {
		log.Fatalf("expected 4 positional arguments (hap0-alnmap-path, hap1-alnmap-path, contig-length-json, output-prefix), got %d: '%s'", len(args), strings.Join(args, " "))
	}
	hap0Path, hap1Path, contigLenPath, outPrefix := args[0], args[1], args[2], args[3]

	hap0Variants, hap0Blocks, hap0Unique := loadHap(hap0Path, 0)
	hap1Variants, hap1Blocks, hap1Unique := loadHap(hap1Path, 1)

	clFile, err := os.Open(contigLenPath)
	if err != nil {
		log.Fatalf("opening contig-length JSON %q: %v", contigLenPath, err)
	}
	contigs, err := ctglen.Load(clFile)
	clFile.Close()
	if err != nil {
		log.Fatalf("parsing contig-length JSON %q: %v", contigLenPath, err)
	}

	allVariants := append(append([]diploid.VariantRecord{}, hap0Variants...), hap1Variants...)
	groups := diploid.GroupOverlapping(allVariants)

	vcfFile, err := os.Create(outPrefix + ".vcf")
	if err != nil {
		log.Fatalf("creating VCF output: %v", err)
	}
	defer vcfFile.Close()
	vcfW := bufio.NewWriter(vcfFile)
	if err := diploid.WriteVCFHeader(vcfW, contigs, *sampleName); err != nil {
		log.Fatalf("writing VCF header: %v", err)
	}
	for _, group := range groups {
		rec, err := diploid.RealizeGroup(group, hap0Blocks, hap1Blocks)
		if err != nil {
			log.Fatalf("realizing variant group: %v", err)
		}
		if err := diploid.WriteVCFRecord(vcfW, rec); err != nil {
			log.Fatalf("writing VCF record: %v", err)
		}
	}
	if err := vcfW.Flush(); err != nil {
		log.Fatalf("flushing VCF output: %v", err)
	}

	bedFile, err := os.Create(outPrefix + ".bed")
	if err != nil {
		log.Fatalf("creating BED output: %v", err)
	}
	defer bedFile.Close()
	regions := diploid.BuildConfidentRegions(hap0Unique, hap1Unique)
	if err := diploid.WriteBED(bedFile, regions); err != nil {
		log.Fatalf("writing BED output: %v", err)
	}
}
