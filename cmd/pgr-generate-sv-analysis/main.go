package main

/*
pgr-generate-sv-analysis decomposes each SV candidate's target/query
bundle-assigned seed points into principal bundle segments and aligns the
two segment lists against each other, reporting the traceback path in
genomic coordinates.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/zhengxinchang/pgr-go/svanalysis"
)

var (
	sampleName = flag.String("sample-name", "Sample", "Sample name (CLI-surface parity with the other pgr-* tools)")
	threads    = flag.Int("number-of-thread", 0, "Number of worker threads; 0 = all CPUs available")
)

func generateSVAnalysisUsage() {
	fmt.Printf("Usage: %s [OPTIONS] sv-candidate-points-path output-prefix\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = generateSVAnalysisUsage
	shutdown := grail.Init()
	defer shutdown()
	_ = *threads     // number-of-thread is accepted for CLI-surface parity; candidates are processed one at a time.
	_ = *sampleName // sample-name is accepted for CLI-surface parity; this tool has no sample column.

	args := flag.Args()
	if len(args) != 2 {
		log.Fatalf("expected 2 positional arguments (sv-candidate-points-path, output-prefix), got %d: '%s'", len(args), strings.Join(args, " "))
	}
	inPath, outPrefix := args[0], args[1]

	in, err := os.Open(inPath)
	if err != nil {
		log.Fatalf("opening %q: %v", inPath, err)
	}
	candidates, err := svanalysis.ReadCandidates(in)
	in.Close()
	if err != nil {
		log.Fatalf("reading %q: %v", inPath, err)
	}

	out, err := os.Create(outPrefix + ".svaln")
	if err != nil {
		log.Fatalf("creating output: %v", err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	for _, cand := range candidates {
		if err := svanalysis.WriteHeader(bw, cand); err != nil {
			log.Fatalf("writing header for candidate %q: %v", cand.SvcType, err)
		}
		targetBundles := svanalysis.BuildSegments(cand.TargetPoints)
		queryBundles := svanalysis.BuildSegments(cand.QueryPoints)
		for _, row := range svanalysis.BuildRows(cand, targetBundles, queryBundles) {
			if err := svanalysis.WriteRow(bw, row); err != nil {
				log.Fatalf("writing row for candidate %q: %v", cand.SvcType, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("flushing output: %v", err)
	}
}
