package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/HerwigLab/IsoTools2/internal/duckdb"
	"github.com/HerwigLab/IsoTools2/internal/output"
	"github.com/HerwigLab/IsoTools2/internal/stats"
)

func runTest(args []string) int {
	fs := flag.NewFlagSet("test", flag.ExitOnError)

	var (
		eventsFile   string
		coverageFile string
		testKind     string
		minTotal     float64
		minAltFrac   float64
		outputFile   string
		dbPath       string
	)

	fs.StringVar(&eventsFile, "events", "", "Alternative-splicing events TSV (required)")
	fs.StringVar(&coverageFile, "coverage", "", "Per-transcript coverage file (required)")
	fs.StringVar(&testKind, "test", string(stats.TestFisher), "Independence test: fisher or chi2")
	fs.Float64Var(&minTotal, "min-total", stats.DefaultMinTotal, "Minimum total coverage per event")
	fs.Float64Var(&minAltFrac, "min-alt-fraction", stats.DefaultMinAltFraction, "Minimum fraction of the rarer form")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&dbPath, "db", "", "Also store results in a DuckDB database at this path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Test pairs of alternative-splicing events for coordination.

Every pair of sufficiently covered events of a gene is tested for
independence on its 2x2 coverage table. Events come from a TSV with
columns gene_id, chrom, type, start, end, primary ids, alt ids; ids
index into the coverage file, one value per line.

Usage:
  isotools test --events <events.tsv> --coverage <coverage.txt> [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  isotools test --events events.tsv --coverage cov.txt
  isotools test --events events.tsv --coverage cov.txt --test chi2 -o coordination.tsv
  isotools test --events events.tsv --coverage cov.txt --db results.duckdb
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if eventsFile == "" || coverageFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --events and --coverage are required\n")
		fs.Usage()
		return ExitUsage
	}
	kind := stats.TestKind(testKind)
	if kind != stats.TestFisher && kind != stats.TestChi2 {
		fmt.Fprintf(os.Stderr, "Error: unknown test %q (want fisher or chi2)\n", testKind)
		return ExitUsage
	}

	logger := newLogger()
	defer logger.Sync()

	events, cov, err := loadEventInputs(eventsFile, coverageFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	logger.Info("loaded events",
		zap.Int("events", len(events)),
		zap.Int("transcripts", len(cov)))

	records, err := coordinationTests(events, cov, kind, minTotal, minAltFrac)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
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
	writer := output.NewEventTestWriter(out)
	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return ExitError
	}
	for _, rec := range records {
		if err := writer.Write(rec); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			return ExitError
		}
	}
	if err := writer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		return ExitError
	}

	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			return ExitError
		}
		defer store.Close()
		if err := store.WriteEventTests(records); err != nil {
			fmt.Fprintf(os.Stderr, "Error storing results: %v\n", err)
			return ExitError
		}
		logger.Info("stored event tests", zap.String("path", dbPath), zap.Int("records", len(records)))
	}

	logger.Info("coordination tests done", zap.Int("pairs", len(records)))
	return ExitSuccess
}

func loadEventInputs(eventsFile, coverageFile string) ([]stats.Event, stats.Coverage, error) {
	ef, err := os.Open(eventsFile)
	if err != nil {
		return nil, nil, err
	}
	defer ef.Close()
	events, err := stats.ReadEvents(ef)
	if err != nil {
		return nil, nil, fmt.Errorf("read events: %w", err)
	}

	cf, err := os.Open(coverageFile)
	if err != nil {
		return nil, nil, err
	}
	defer cf.Close()
	cov, err := stats.ReadCoverage(cf)
	if err != nil {
		return nil, nil, fmt.Errorf("read coverage: %w", err)
	}

	for _, e := range events {
		for _, id := range append(append([]int(nil), e.Primary...), e.Alt...) {
			if id < 0 || id >= len(cov) {
				return nil, nil, fmt.Errorf("event %s:%d-%d references transcript %d, coverage has %d entries",
					e.GeneID, e.Start, e.End, id, len(cov))
			}
		}
	}
	return events, cov, nil
}

// coordinationTests tests every same-gene pair of events that passes
// the coverage filter.
func coordinationTests(events []stats.Event, cov stats.Coverage, kind stats.TestKind, minTotal, minAltFrac float64) ([]*stats.EventTestRecord, error) {
	var records []*stats.EventTestRecord
	for i := range events {
		if !events[i].PassesFilter(cov, minTotal, minAltFrac) {
			continue
		}
		for j := i + 1; j < len(events); j++ {
			if events[j].GeneID != events[i].GeneID {
				continue
			}
			if !events[j].PassesFilter(cov, minTotal, minAltFrac) {
				continue
			}
			tab, _ := stats.ContingencyTable(events[i], events[j], cov)
			res, err := stats.PairwiseEventTest(tab, kind, stats.DefaultPseudocount)
			if err != nil {
				return nil, fmt.Errorf("test %s pair %d/%d: %w", events[i].GeneID, i, j, err)
			}
			records = append(records, &stats.EventTestRecord{
				GeneID: events[i].GeneID,
				Chrom:  events[i].Chrom,
				EventA: events[i],
				EventB: events[j],
				Result: res,
			})
		}
	}
	return records, nil
}
