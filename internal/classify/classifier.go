// Package classify assigns aligned long reads to annotated genes and
// categorizes their splice structure against the known isoforms.
package classify

import (
	"fmt"
	"io"
	"runtime"

	"go.uber.org/zap"

	"github.com/HerwigLab/IsoTools2/internal/bamin"
	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

// Classification categories, from closest to weakest annotation match.
const (
	CategorySpliceMatch  = "splice_match"
	CategoryNovelIsoform = "novel_isoform"
	CategoryIntergenic   = "intergenic"
)

// GeneLookup defines the interface for finding genes in a genomic window.
type GeneLookup interface {
	Overlapping(chrom string, start, end int64) []*gene.Gene
}

// Result is the classification of a single read structure.
type Result struct {
	ReadName     string
	Chrom        string
	Strand       int8
	Exons        splice.Structure
	Category     string
	GeneID       string
	GeneName     string
	TranscriptID string // set for splice_match
	NovelSites   int    // splice sites absent from the assigned gene
}

// Attributes returns the result as a flat attribute map, the
// environment filter expressions are evaluated against.
func (r *Result) Attributes() map[string]any {
	return map[string]any{
		"read_name":     r.ReadName,
		"chrom":         r.Chrom,
		"strand":        int(r.Strand),
		"category":      r.Category,
		"gene_id":       r.GeneID,
		"gene_name":     r.GeneName,
		"transcript_id": r.TranscriptID,
		"novel_sites":   r.NovelSites,
		"exon_count":    len(r.Exons),
		"length":        r.Exons.ExonicLength(),
	}
}

// Classifier matches read structures against a gene model.
type Classifier struct {
	genes      GeneLookup
	spjIoU     float64
	regIoU     float64
	strictness int64
	minMapQ    uint8
	workers    int
	logger     *zap.Logger
}

// NewClassifier creates a classifier backed by the given gene lookup.
func NewClassifier(genes GeneLookup) *Classifier {
	return &Classifier{
		genes:      genes,
		spjIoU:     splice.DefaultSpliceIoU,
		regIoU:     splice.DefaultRegionIoU,
		strictness: splice.Unbounded,
		logger:     zap.NewNop(),
	}
}

// SetThresholds configures the gene assignment thresholds: the minimum
// splice-site IoU and the minimum exonic-region IoU a read must share
// with at least one isoform of a gene.
func (c *Classifier) SetThresholds(spjIoU, regIoU float64) {
	c.spjIoU = spjIoU
	c.regIoU = regIoU
}

// SetStrictness configures the transcript start/end tolerance for the
// splice_match category. Pass splice.Unbounded to compare junction
// chains only.
func (c *Classifier) SetStrictness(strictness int64) {
	c.strictness = strictness
}

// SetMinMapQ configures the minimum mapping quality for ClassifyAll.
// Alignments below the threshold are skipped.
func (c *Classifier) SetMinMapQ(minMapQ uint8) {
	c.minMapQ = minMapQ
}

// SetWorkers configures the number of classification workers for
// ClassifyAll. Zero or negative means one per CPU.
func (c *Classifier) SetWorkers(workers int) {
	c.workers = workers
}

// SetLogger sets the logger for warning and info messages.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// ClassifyStructure classifies an exon structure on a chromosome.
//
// Candidate genes overlap the structure's span and share at least one
// isoform with it under the IoU thresholds. Among the candidates the
// gene with the largest exonic overlap wins. A read matching the
// splice pattern of one of the gene's isoforms is a splice_match,
// otherwise it is a novel_isoform of that gene. Reads with no
// candidate gene are intergenic.
func (c *Classifier) ClassifyStructure(chrom string, exons splice.Structure) *Result {
	result := &Result{
		Chrom:    gene.NormalizeChrom(chrom),
		Exons:    exons,
		Category: CategoryIntergenic,
	}
	if len(exons) == 0 {
		return result
	}

	span := exons.Span()
	var best *gene.Gene
	var bestOverlap int64

	for _, g := range c.genes.Overlapping(result.Chrom, span.Start, span.End) {
		if !c.sameGene(exons, g) {
			continue
		}
		overlap := splice.ExonicOverlap(exons, g.Structures())
		if best == nil || overlap > bestOverlap {
			best = g
			bestOverlap = overlap
		}
	}
	if best == nil {
		return result
	}

	result.GeneID = best.ID
	result.GeneName = best.Name

	for _, t := range best.Transcripts {
		if splice.SpliceIdentical(exons, t.Exons, c.strictness) {
			result.Category = CategorySpliceMatch
			result.TranscriptID = t.ID
			return result
		}
	}

	result.Category = CategoryNovelIsoform
	if junctions := exons.Junctions(); len(junctions) > 0 {
		for _, known := range splice.SpliceSiteMembership(junctions, best.Structures()) {
			if !known {
				result.NovelSites++
			}
		}
	}
	return result
}

func (c *Classifier) sameGene(exons splice.Structure, g *gene.Gene) bool {
	for _, t := range g.Transcripts {
		if splice.SameGene(exons, t.Exons, c.spjIoU, c.regIoU) {
			return true
		}
	}
	return false
}

// ClassifyAlignment classifies a single aligned read.
func (c *Classifier) ClassifyAlignment(a *bamin.Alignment) *Result {
	result := c.ClassifyStructure(a.Chrom, a.Structure())
	result.ReadName = a.Name
	result.Strand = a.Strand
	return result
}

// ClassifyAll classifies every alignment from a reader and writes the
// results in input order.
func (c *Classifier) ClassifyAll(reader bamin.Reader, writer ResultWriter) error {
	items := make(chan WorkItem, 2*runtime.NumCPU())
	var readErr error
	readCount := 0
	skipped := 0

	go func() {
		defer close(items)
		seq := 0
		for {
			aln, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				readErr = fmt.Errorf("read alignment: %w", err)
				return
			}
			if aln.MapQ < c.minMapQ {
				skipped++
				continue
			}
			readCount++
			items <- WorkItem{Seq: seq, Aln: aln}
			seq++
		}
	}()

	results := c.ParallelClassify(items, c.workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if err := writer.Write(r.Result); err != nil {
			return fmt.Errorf("write classification: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if readErr != nil {
		return readErr
	}

	if skipped > 0 {
		c.logger.Info("skipped alignments below mapping quality",
			zap.Int("count", skipped),
			zap.Uint8("min_mapq", c.minMapQ))
	}
	if readCount == 0 {
		c.logger.Info("0 alignments processed")
	}

	return writer.Flush()
}

// ResultWriter defines the interface for writing classifications.
type ResultWriter interface {
	WriteHeader() error
	Write(r *Result) error
	Flush() error
}
