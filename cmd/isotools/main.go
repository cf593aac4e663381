// Package main provides the isotools command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/HerwigLab/IsoTools2/internal/duckdb"
	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/gtf"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	verbose bool
	threads int
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.IntVar(&threads, "threads", 0, "Number of worker threads (default: one per CPU)")

	// Parse global flags first
	flag.Parse()

	if showVersion {
		printVersion()
		return ExitSuccess
	}

	// Check for subcommand
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "classify":
		return runClassify(args[1:])
	case "orfs":
		return runORFs(args[1:])
	case "qc":
		return runQC(args[1:])
	case "test":
		return runTest(args[1:])
	case "serve":
		return runServe(args[1:])
	case "config":
		return runConfig(args[1:])
	case "version":
		printVersion()
		return ExitSuccess
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printVersion() {
	fmt.Printf("isotools version %s (%s) built %s\n", version, commit, date)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `isotools - Long-read transcriptome analysis

Usage:
  isotools [options] <command> [arguments]

Commands:
  classify    Classify aligned reads against a reference annotation
  orfs        Find open reading frames in annotated transcripts
  qc          Summarize read quality from a BAM file
  test        Run coordination tests on alternative-splicing events
  serve       Serve the gene model over a REST API
  config      Manage isotools configuration
  version     Show version information
  help        Show this help message

Global Options:
  --version   Show version information
  --verbose   Enable debug logging
  --threads   Number of worker threads (default: one per CPU)

Examples:
  # Classify reads against a GENCODE annotation
  isotools classify --gtf gencode.gtf.gz aligned.bam

  # Predict ORFs for every annotated transcript
  isotools orfs --gtf gencode.gtf.gz --fasta genome.fa

  # Base-quality report for a BAM file
  isotools qc aligned.bam

  # Start the REST API
  isotools serve --gtf gencode.gtf.gz --addr localhost:8080

For more information on a command, use:
  isotools <command> --help
`)
}

// newLogger builds the process logger: human-readable debug output
// with --verbose, structured production logging otherwise.
func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadModel parses the annotation into an indexed gene model, going
// through the gob cache in cacheDir when one is configured.
func loadModel(gtfPath, cacheDir string, logger *zap.Logger) (*gene.Model, error) {
	if cacheDir == "" {
		m := gene.NewModel()
		if err := gtf.NewLoader(gtfPath).Load(m); err != nil {
			return nil, err
		}
		return m, nil
	}

	fp, err := duckdb.StatFile(gtfPath)
	if err != nil {
		return nil, fmt.Errorf("stat annotation: %w", err)
	}

	mc := duckdb.NewModelCache(cacheDir)
	if mc.Valid(fp) {
		m, err := mc.Load()
		if err == nil {
			logger.Debug("loaded gene model from cache", zap.String("dir", cacheDir))
			return m, nil
		}
		logger.Warn("stale model cache, re-parsing annotation", zap.Error(err))
		mc.Clear()
	}

	m := gene.NewModel()
	if err := gtf.NewLoader(gtfPath).Load(m); err != nil {
		return nil, err
	}
	if err := mc.Write(m, fp); err != nil {
		logger.Warn("could not write model cache", zap.Error(err))
	}
	return m, nil
}
