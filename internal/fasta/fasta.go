// Package fasta loads reference genome sequences.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/HerwigLab/IsoTools2/internal/gene"
)

// Genome holds chromosome sequences indexed by normalized name.
// Sequences are uppercased on load so codon lookups need no case
// handling downstream.
type Genome struct {
	sequences map[string]string
}

// LoadGenome reads a genome FASTA file, plain or gzipped.
func LoadGenome(path string) (*Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	g := &Genome{sequences: make(map[string]string)}
	if err := g.parseFASTA(reader); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Genome) parseFASTA(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long sequence lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var currentChrom string
	var currentSeq strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, ">") {
			if currentChrom != "" && currentSeq.Len() > 0 {
				g.sequences[currentChrom] = currentSeq.String()
			}
			currentChrom = parseHeader(line)
			currentSeq.Reset()
		} else {
			currentSeq.WriteString(strings.ToUpper(strings.TrimSpace(line)))
		}
	}

	if currentChrom != "" && currentSeq.Len() > 0 {
		g.sequences[currentChrom] = currentSeq.String()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}

	return nil
}

// parseHeader extracts the chromosome name from a FASTA header.
// Handles ">chr1", ">1 dna:chromosome ..." and similar forms.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		header = header[:idx]
	}
	return gene.NormalizeChrom(header)
}

// Sequence returns the bases of the half-open range [start, end) on a
// chromosome.
func (g *Genome) Sequence(chrom string, start, end int64) (string, error) {
	seq, ok := g.sequences[gene.NormalizeChrom(chrom)]
	if !ok {
		return "", fmt.Errorf("unknown chromosome %q", chrom)
	}
	if start < 0 || start > end || end > int64(len(seq)) {
		return "", fmt.Errorf("range %d-%d outside chromosome %s of length %d", start, end, chrom, len(seq))
	}
	return seq[start:end], nil
}

// Has checks whether a chromosome was loaded.
func (g *Genome) Has(chrom string) bool {
	_, ok := g.sequences[gene.NormalizeChrom(chrom)]
	return ok
}

// Chromosomes returns the loaded chromosome names, sorted.
func (g *Genome) Chromosomes() []string {
	chroms := make([]string, 0, len(g.sequences))
	for chrom := range g.sequences {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}
