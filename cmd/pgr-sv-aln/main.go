package main

/*
pgr-sv-aln chains each SV candidate's pre-computed seed hits and WFA-aligns
the gaps between chained hits into alnmap rows, applied to a single
target/query window.
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
	"github.com/zhengxinchang/pgr-go/seed"
	"github.com/zhengxinchang/pgr-go/svaln"
)

var (
	threads    = flag.Int("number-of-thread", 0, "Number of worker threads; 0 = all CPUs available")
	maxSpan    = flag.Int("max-span", 8, "Chainer's W: distinct query-start predecessors examined per node")
	gapPenalty = flag.Float64("gap-penalty", 0.5, "Chainer's lambda gap-cost scale")
)

func svAlnUsage() {
	fmt.Printf("Usage: %s [OPTIONS] candidate-seq-hits-path output-alnmap-path\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = svAlnUsage
	shutdown := grail.Init()
	defer shutdown()
	_ = *threads // number-of-thread is accepted for CLI-surface parity; candidates align one at a time.

	args := flag.Args()
	if len(args) != 2 {
		log.Fatalf("expected 2 positional arguments (candidate-seq-hits-path, output-alnmap-path), got %d: '%s'", len(args), strings.Join(args, " "))
	}
	inPath, outPath := args[0], args[1]

	in, err := os.Open(inPath)
	if err != nil {
		log.Fatalf("opening %q: %v", inPath, err)
	}
	candidates, err := svaln.ReadCandidates(in)
	in.Close()
	if err != nil {
		log.Fatalf("reading %q: %v", inPath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("creating %q: %v", outPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	chainOpts := seed.Opts{MaxSpan: *maxSpan, GapPenalty: *gapPenalty}
	for _, cand := range candidates {
		if err := svaln.WriteHeader(bw, cand); err != nil {
			log.Fatalf("writing header for candidate %q: %v", cand.AlnID, err)
		}
		for _, rec := range svaln.AlignCandidate(cand, chainOpts, svaln.DefaultWFAParams) {
			if err := alnmap.Write(bw, rec); err != nil {
				log.Fatalf("writing alnmap row for candidate %q: %v", cand.AlnID, err)
			}
			if _, err := bw.WriteString("\n"); err != nil {
				log.Fatalf("writing alnmap row for candidate %q: %v", cand.AlnID, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("flushing output: %v", err)
	}
}
