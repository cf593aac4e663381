package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/HerwigLab/IsoTools2/internal/bamin"
	"github.com/HerwigLab/IsoTools2/internal/classify"
	"github.com/HerwigLab/IsoTools2/internal/duckdb"
	"github.com/HerwigLab/IsoTools2/internal/filter"
	"github.com/HerwigLab/IsoTools2/internal/output"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

func runClassify(args []string) int {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)

	var (
		gtfPath    string
		outputFile string
		dbPath     string
		cacheDir   string
		minMapQ    uint
		strictness int64
		spjIoU     float64
		regIoU     float64
		filterTag  string
		defines    []string
	)

	fs.StringVar(&gtfPath, "gtf", "", "Reference annotation GTF (default: config key annotation.gtf)")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&dbPath, "db", "", "Also store classifications in this DuckDB database")
	fs.StringVar(&cacheDir, "cache", "", "Gene model cache directory (default: config key cache.dir)")
	fs.UintVar(&minMapQ, "min-mapq", 0, "Skip alignments below this mapping quality")
	fs.Int64Var(&strictness, "strictness", -1, "Transcript end tolerance in bases for splice_match (-1: compare junction chains only)")
	fs.Float64Var(&spjIoU, "spj-iou", splice.DefaultSpliceIoU, "Minimum splice-junction IoU for gene assignment")
	fs.Float64Var(&regIoU, "reg-iou", splice.DefaultRegionIoU, "Minimum exonic-region IoU for gene assignment")
	fs.StringVar(&filterTag, "filter", "", "Only write reads matching this filter tag")
	fs.Func("define", "Define a filter tag as NAME=EXPR (repeatable)", func(s string) error {
		defines = append(defines, s)
		return nil
	})

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Classify aligned long reads against a reference annotation.

Usage:
  isotools classify [options] <alignment-file>

Arguments:
  <alignment-file>  Input BAM or SAM file (use '-' for SAM on stdin)

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Filter tags:
  %s

Examples:
  isotools classify --gtf gencode.gtf.gz aligned.bam
  isotools classify --gtf gencode.gtf.gz --min-mapq 20 -o reads.tsv aligned.bam
  isotools classify --gtf gencode.gtf.gz --filter NOVEL aligned.bam
  isotools classify --gtf gencode.gtf.gz --define 'LONG=length > 1000' --filter LONG aligned.bam
  isotools classify --gtf gencode.gtf.gz --db results.duckdb aligned.bam
`, strings.Join(defaultTagNames(), ", "))
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: alignment file argument required\n\n")
		fs.Usage()
		return ExitUsage
	}
	inputPath := fs.Arg(0)

	if gtfPath == "" {
		gtfPath = configString("annotation.gtf")
	}
	if gtfPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --gtf is required (or set annotation.gtf with: isotools config set annotation.gtf <path>)\n")
		return ExitUsage
	}
	if cacheDir == "" {
		cacheDir = configString("cache.dir")
	}
	if minMapQ > 255 {
		fmt.Fprintf(os.Stderr, "Error: --min-mapq must be at most 255\n")
		return ExitUsage
	}

	logger := newLogger()
	defer logger.Sync()

	registry, err := filter.DefaultRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	for _, d := range defines {
		name, expr, ok := strings.Cut(d, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: --define wants NAME=EXPR, got %q\n", d)
			return ExitUsage
		}
		if err := registry.Define(strings.TrimSpace(name), expr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
	}
	if filterTag != "" {
		if _, ok := registry.Expression(filterTag); !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown filter tag %q (known tags: %s)\n",
				filterTag, strings.Join(registry.Tags(), ", "))
			return ExitError
		}
	}

	model, err := loadModel(gtfPath, cacheDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotation: %v\n", err)
		return ExitError
	}
	logger.Info("loaded gene model",
		zap.Int("genes", model.GeneCount()),
		zap.Int("transcripts", model.TranscriptCount()))

	var reader bamin.Reader
	if inputPath == "-" {
		reader, err = bamin.NewSAMReader(os.Stdin)
	} else {
		reader, err = bamin.Open(inputPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer reader.Close()

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	classifier := classify.NewClassifier(model)
	classifier.SetLogger(logger)
	classifier.SetThresholds(spjIoU, regIoU)
	classifier.SetWorkers(threads)
	if strictness >= 0 {
		classifier.SetStrictness(strictness)
	}
	if minMapQ > 0 {
		classifier.SetMinMapQ(uint8(minMapQ))
	}

	var writer classify.ResultWriter = output.NewClassificationWriter(out)
	var collector *resultCollector
	if dbPath != "" {
		collector = &resultCollector{inner: writer}
		writer = collector
	}
	if filterTag != "" {
		writer = &filteredWriter{inner: writer, registry: registry, tag: filterTag}
	}

	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}
	if err := classifier.ClassifyAll(reader, writer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			return ExitError
		}
		defer store.Close()

		if err := store.WriteClassifications(collector.results); err != nil {
			fmt.Fprintf(os.Stderr, "Error storing classifications: %v\n", err)
			return ExitError
		}
		counts, err := store.CategoryCounts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error summarizing database: %v\n", err)
			return ExitError
		}
		logger.Info("stored classifications",
			zap.String("path", dbPath),
			zap.Any("categories", counts))
	}

	return ExitSuccess
}

func defaultTagNames() []string {
	registry, err := filter.DefaultRegistry()
	if err != nil {
		return nil
	}
	return registry.Tags()
}

// filteredWriter drops classifications that do not match a filter tag.
type filteredWriter struct {
	inner    classify.ResultWriter
	registry *filter.Registry
	tag      string
}

func (w *filteredWriter) WriteHeader() error { return w.inner.WriteHeader() }

func (w *filteredWriter) Write(r *classify.Result) error {
	keep, err := w.registry.Evaluate(w.tag, r.Attributes())
	if err != nil {
		return err
	}
	if !keep {
		return nil
	}
	return w.inner.Write(r)
}

func (w *filteredWriter) Flush() error { return w.inner.Flush() }

// resultCollector retains written classifications for batch storage.
type resultCollector struct {
	inner   classify.ResultWriter
	results []*classify.Result
}

func (w *resultCollector) WriteHeader() error { return w.inner.WriteHeader() }

func (w *resultCollector) Write(r *classify.Result) error {
	w.results = append(w.results, r)
	return w.inner.Write(r)
}

func (w *resultCollector) Flush() error { return w.inner.Flush() }
