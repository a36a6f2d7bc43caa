package main

/*
pgr-group-svcnd groups labeled BED intervals from several input files into
overlap clusters and writes a summary BED file, one cluster per record.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/zhengxinchang/pgr-go/svgroup"
)

func groupSVCndUsage() {
	fmt.Printf("Usage: %s [OPTIONS] input-files-list output-path\n", os.Args[0])
	fmt.Printf("input-files-list: a file where each line is \"label<TAB>bed-path\"\n")
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = groupSVCndUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		args := flag.Args()
		if len(args) < 2 {
			log.Fatalf("missing positional arguments (input-files-list and output-path required); got: '%s'", strings.Join(args, " "))
		} else {
			log.Fatalf("too many positional arguments; got: '%s'", strings.Join(args, " "))
		}
	}
	inputList, outputPath := flag.Arg(0), flag.Arg(1)

	listFile, err := os.Open(inputList)
	if err != nil {
		log.Fatalf("opening input file list %q: %v", inputList, err)
	}
	defer listFile.Close()

	var entries []svgroup.Entry
	sc := bufio.NewScanner(listFile)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			log.Fatalf("input file list: expected \"label<TAB>path\", got %q", line)
		}
		label, path := fields[0], fields[1]
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("opening %q for label %q: %v", path, label, err)
		}
		labeled, err := svgroup.ReadLabeledBED(f, label)
		f.Close()
		if err != nil {
			log.Fatalf("reading %q: %v", path, err)
		}
		entries = append(entries, labeled...)
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("reading input file list: %v", err)
	}

	groups := svgroup.SortedGroups(svgroup.GroupByOverlap(entries))

	out, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("creating output file %q: %v", outputPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)
	for _, g := range groups {
		if err := svgroup.WriteGroup(bw, g); err != nil {
			log.Fatalf("writing output: %v", err)
		}
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("flushing output: %v", err)
	}
}
