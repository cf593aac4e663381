package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/HerwigLab/IsoTools2/internal/bamin"
	"github.com/HerwigLab/IsoTools2/internal/output"
	"github.com/HerwigLab/IsoTools2/internal/stats"
)

func runQC(args []string) int {
	fs := flag.NewFlagSet("qc", flag.ExitOnError)

	var (
		outputFile string
		maxReads   int
	)

	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.IntVar(&maxReads, "max-reads", 0, "Stop after this many reads (0 = all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Summarize base qualities of long-read alignments.

Accumulates per-read error rates over the mapped primary alignments of
a BAM or SAM file and reports totals plus an error-rate histogram.

Usage:
  isotools qc [options] <alignments.bam>

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  isotools qc aligned.bam
  isotools qc --max-reads 100000 -o qc.tsv aligned.bam
  samtools view -h aligned.bam chr12 | isotools qc -
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected one alignment file argument\n")
		fs.Usage()
		return ExitUsage
	}

	logger := newLogger()
	defer logger.Sync()

	var (
		reader bamin.Reader
		err    error
	)
	if fs.Arg(0) == "-" {
		reader, err = bamin.NewSAMReader(os.Stdin)
	} else {
		reader, err = bamin.Open(fs.Arg(0))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening alignments: %v\n", err)
		return ExitError
	}
	defer reader.Close()

	qs := stats.NewQualityStats(nil)
	seen := 0
	for maxReads == 0 || seen < maxReads {
		a, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading alignments: %v\n", err)
			return ExitError
		}
		qs.Add(a.Quals)
		seen++
	}

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}
	if err := output.WriteQualityReport(out, qs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return ExitError
	}

	logger.Info("quality summary done",
		zap.Int("alignments", seen),
		zap.Int64("reads_with_quals", qs.Reads()),
		zap.Int64("bases", qs.Bases()))
	return ExitSuccess
}
