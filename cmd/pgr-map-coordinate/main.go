package main

/*
pgr-map-coordinate maps a list of query-sequence coordinates onto their
corresponding target-sequence coordinates through an alnmap file.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/zhengxinchang/pgr-go/alnmap"
	"github.com/zhengxinchang/pgr-go/coordmap"
	"github.com/zhengxinchang/pgr-go/fasta"
)

var threads = flag.Int("number-of-thread", 0, "Number of worker threads; 0 = all CPUs available")

func mapCoordinateUsage() {
	fmt.Printf("Usage: %s [OPTIONS] alnmap-path target-fasta-path query-fasta-path coordinate-file-path output-path\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func openFasta(path string) fasta.Fasta {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("opening %q: %v", path, err)
	}
	defer f.Close()
	fa, err := fasta.New(f)
	if err != nil {
		log.Fatalf("parsing FASTA %q: %v", path, err)
	}
	return fa
}

func main() {
	flag.Usage = mapCoordinateUsage
	shutdown := grail.Init()
	defer shutdown()
	_ = *threads // number-of-thread is accepted for CLI-surface parity; lookups run single-threaded.

	args := flag.Args()
	if len(args) != 5 {
		log.Fatalf("expected 5 positional arguments (alnmap-path, target-fasta-path, query-fasta-path, coordinate-file-path, output-path), got %d: '%s'", len(args), strings.Join(args, " "))
	}
	alnmapPath, targetPath, queryPath, coordPath, outPath := args[0], args[1], args[2], args[3], args[4]

	am, err := os.Open(alnmapPath)
	if err != nil {
		log.Fatalf("opening alnmap %q: %v", alnmapPath, err)
	}
	reader, err := alnmap.NewReader(am)
	if err != nil {
		log.Fatalf("opening alnmap reader for %q: %v", alnmapPath, err)
	}
	records, err := reader.ReadAll()
	am.Close()
	if err != nil {
		log.Fatalf("reading alnmap %q: %v", alnmapPath, err)
	}
	idx := coordmap.BuildIndex(records)

	targetFasta := openFasta(targetPath)
	queryFasta := openFasta(queryPath)
	cache := coordmap.NewVariantPosCache(targetFasta, queryFasta)

	coordFile, err := os.Open(coordPath)
	if err != nil {
		log.Fatalf("opening coordinate file %q: %v", coordPath, err)
	}
	defer coordFile.Close()

	byQuery := map[string][]uint32{}
	order := []string{}
	sc := bufio.NewScanner(coordFile)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			log.Fatalf("coordinate file: expected \"query_name<TAB>coordinate\", got %q", line)
		}
		qName := fields[0]
		qPos, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			log.Fatalf("coordinate file: parsing coordinate %q: %v", fields[1], err)
		}
		if _, seen := byQuery[qName]; !seen {
			order = append(order, qName)
		}
		byQuery[qName] = append(byQuery[qName], uint32(qPos))
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("reading coordinate file: %v", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("creating output file %q: %v", outPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	for _, qName := range order {
		for _, qPos := range coordmap.SortedUint32(byQuery[qName]) {
			blocks := idx.Overlapping(qName, qPos)
			if len(blocks) == 0 {
				fmt.Fprintf(bw, "%s\t%d\t*\t*\t*\t*\t0\n", qName, qPos)
				continue
			}
			mappings := coordmap.MapCoordinate(blocks, qName, qPos, cache)
			hitCount := 0
			seenTargets := map[string]bool{}
			for _, m := range mappings {
				if m.HasTarget {
					key := m.TargetName + ":" + strconv.FormatUint(uint64(m.TargetPos), 10)
					if !seenTargets[key] {
						seenTargets[key] = true
						hitCount++
					}
				}
			}
			for _, m := range mappings {
				tName, tPos := "*", "*"
				if m.HasTarget {
					tName = m.TargetName
					tPos = strconv.FormatUint(uint64(m.TargetPos), 10)
				}
				fmt.Fprintf(bw, "%s\t%d\t%s\t%s\t%d\t%s\t%d\n", qName, qPos, tName, tPos, m.Orientation, m.Type, hitCount)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("flushing output: %v", err)
	}
}
