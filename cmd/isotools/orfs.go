package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/HerwigLab/IsoTools2/internal/fasta"
	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/orf"
	"github.com/HerwigLab/IsoTools2/internal/output"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

func runORFs(args []string) int {
	fs := flag.NewFlagSet("orfs", flag.ExitOnError)

	var (
		gtfPath    string
		fastaPath  string
		outputFile string
		cacheDir   string
		geneID     string
		rawSeq     string
	)

	fs.StringVar(&gtfPath, "gtf", "", "Reference annotation GTF (default: config key annotation.gtf)")
	fs.StringVar(&fastaPath, "fasta", "", "Genome FASTA (default: config key genome.fasta)")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&cacheDir, "cache", "", "Gene model cache directory (default: config key cache.dir)")
	fs.StringVar(&geneID, "gene", "", "Restrict to one gene ID")
	fs.StringVar(&rawSeq, "seq", "", "Find ORFs in a raw sequence instead of annotated transcripts")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Find open reading frames with Kozak context scores.

With --gtf and --fasta every annotated transcript is scanned, reference
CDS starts of the gene's other isoforms included. With --seq a single
raw sequence is scanned instead.

Usage:
  isotools orfs [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  isotools orfs --gtf gencode.gtf.gz --fasta genome.fa
  isotools orfs --gtf gencode.gtf.gz --fasta genome.fa --gene ENSG00000133703
  isotools orfs --seq ATGAAATAG
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	out := os.Stdout
	if outputFile != "" {
		var err error
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	writer := output.NewORFWriter(out)
	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}
	pwm := orf.NewKozakPWM()

	if rawSeq != "" {
		seq := strings.ToUpper(rawSeq)
		for _, o := range orf.FindORFs(seq, orf.DefaultStartCodons, orf.DefaultStopCodons, nil) {
			rec := &output.ORFRecord{
				TranscriptID: "seq",
				Frame:        o.Frame,
				Start:        o.Start,
				Stop:         o.Stop,
				GenomicStart: -1,
				GenomicEnd:   -1,
				StartCodon:   o.StartCodon,
				StopCodon:    o.StopCodon,
				UpstreamORFs: o.UpstreamORFs,
				KozakScore:   pwm.Score(seq, o.Start),
				Protein:      strings.TrimSuffix(orf.TranslateSequence(seq[o.Start:o.Stop]), "*"),
			}
			if err := writer.Write(rec); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
				return ExitError
			}
		}
		if err := writer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
			return ExitError
		}
		return ExitSuccess
	}

	if gtfPath == "" {
		gtfPath = configString("annotation.gtf")
	}
	if fastaPath == "" {
		fastaPath = configString("genome.fasta")
	}
	if gtfPath == "" || fastaPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --gtf and --fasta are required (or --seq for a raw sequence)\n")
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

	genome, err := fasta.LoadGenome(fastaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading genome: %v\n", err)
		return ExitError
	}
	logger.Info("loaded references",
		zap.Int("genes", model.GeneCount()),
		zap.Int("chromosomes", len(genome.Chromosomes())))

	found := false
	transcripts, orfCount, skipped := 0, 0, 0
	for _, chrom := range model.Chromosomes() {
		for _, g := range model.GenesOnChrom(chrom) {
			if geneID != "" && g.ID != geneID {
				continue
			}
			found = true
			for _, t := range g.Transcripts {
				records, err := transcriptORFs(pwm, genome, g, t)
				if err != nil {
					logger.Warn("skipping transcript",
						zap.String("transcript", t.ID),
						zap.Error(err))
					skipped++
					continue
				}
				transcripts++
				orfCount += len(records)
				for _, rec := range records {
					if err := writer.Write(rec); err != nil {
						fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
						return ExitError
					}
				}
			}
		}
	}

	if geneID != "" && !found {
		fmt.Fprintf(os.Stderr, "Error: gene %q not found in annotation\n", geneID)
		return ExitError
	}
	if err := writer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		return ExitError
	}

	logger.Info("ORF search done",
		zap.Int("transcripts", transcripts),
		zap.Int("orfs", orfCount),
		zap.Int("skipped", skipped))
	return ExitSuccess
}

// transcriptORFs finds the reading frames of one annotated transcript
// and resolves them to genomic coordinates.
func transcriptORFs(pwm *orf.PWM, genome *fasta.Genome, g *gene.Gene, t *gene.Transcript) ([]*output.ORFRecord, error) {
	seq, err := orf.TranscriptSequence(genome, g.Chrom, t.Exons, t.IsReverseStrand())
	if err != nil {
		return nil, err
	}

	orfs := orf.FindORFs(seq, orf.DefaultStartCodons, orf.DefaultStopCodons, g.CDSStartsOn(t))
	records := make([]*output.ORFRecord, 0, len(orfs))
	for _, o := range orfs {
		rec := &output.ORFRecord{
			TranscriptID: t.ID,
			GeneID:       g.ID,
			Chrom:        g.Chrom,
			Strand:       t.Strand,
			Frame:        o.Frame,
			Start:        o.Start,
			Stop:         o.Stop,
			GenomicStart: -1,
			GenomicEnd:   -1,
			StartCodon:   o.StartCodon,
			StopCodon:    o.StopCodon,
			UpstreamORFs: o.UpstreamORFs,
			KozakScore:   pwm.Score(seq, o.Start),
			Protein:      strings.TrimSuffix(orf.TranslateSequence(seq[o.Start:o.Stop]), "*"),
		}
		if o.Stop > o.Start {
			// Mapping both bounds gives the half-open genomic interval
			// on either strand: the reverse mapping reflects first, so
			// the stop bound lands on the lower coordinate.
			gp, err := splice.GenomicPositions([]int64{o.Start, o.Stop}, t.Exons, t.IsReverseStrand())
			if err != nil {
				return nil, fmt.Errorf("map %s ORF at %d: %w", t.ID, o.Start, err)
			}
			rec.GenomicStart = min(gp[o.Start], gp[o.Stop])
			rec.GenomicEnd = max(gp[o.Start], gp[o.Stop])
		}
		records = append(records, rec)
	}
	return records, nil
}
