package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/HerwigLab/IsoTools2/internal/api"
	"github.com/HerwigLab/IsoTools2/internal/classify"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var (
		gtfPath  string
		addr     string
		cacheDir string
	)

	fs.StringVar(&gtfPath, "gtf", "", "Reference annotation GTF (default: config key annotation.gtf)")
	fs.StringVar(&addr, "addr", "localhost:8080", "Listen address")
	fs.StringVar(&cacheDir, "cache", "", "Gene model cache directory (default: config key cache.dir)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Serve the gene model over a JSON REST interface.

Endpoints:
  GET  /healthz                     liveness and model size
  GET  /genes/{id}                  gene by ID
  GET  /genes/{id}/transcripts      transcripts of a gene
  POST /orfs                        open reading frames of a sequence
  POST /classify                    classify an exon structure

Usage:
  isotools serve --gtf <annotation.gtf> [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  isotools serve --gtf gencode.gtf.gz
  isotools serve --gtf gencode.gtf.gz --addr :9000 --cache ~/.isotools-cache
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if gtfPath == "" {
		gtfPath = configString("annotation.gtf")
	}
	if gtfPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --gtf is required\n")
		fs.Usage()
		return ExitUsage
	}
	if cacheDir == "" {
		cacheDir = configString("cache.dir")
	}

	logger := newLogger()
	defer logger.Sync()

	model, err := loadModel(gtfPath, cacheDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotation: %v\n", err)
		return ExitError
	}

	classifier := classify.NewClassifier(model)
	classifier.SetLogger(logger)

	srv := api.NewServer(model, classifier, logger)
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
