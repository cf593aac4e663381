// Package gtf loads reference gene annotation from GENCODE GTF files.
package gtf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

// Loader reads gene, transcript, exon and CDS features from a GTF
// file, plain or gzipped, and assembles them into a gene model.
// GTF coordinates are 1-based inclusive and are converted to 0-based
// half-open on parse.
type Loader struct {
	path string
}

// NewLoader creates a new GTF loader.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load loads all genes from the GTF file into the model and indexes it.
func (l *Loader) Load(m *gene.Model) error {
	return l.loadGTF(m, "")
}

// LoadChromosome loads genes for a specific chromosome.
func (l *Loader) LoadChromosome(m *gene.Model, chrom string) error {
	return l.loadGTF(m, chrom)
}

func (l *Loader) loadGTF(m *gene.Model, filterChrom string) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	genes, err := l.parseGTF(reader, filterChrom)
	if err != nil {
		return err
	}

	for _, g := range genes {
		m.AddGene(g)
	}
	m.Index()

	return nil
}

// gtfFeature represents a parsed GTF line, coordinates already 0-based.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// parseGTF parses GTF content and returns assembled genes in file
// order. Transcripts without exon features are dropped, as are genes
// without any surviving transcript.
func (l *Loader) parseGTF(reader io.Reader, filterChrom string) ([]*gene.Gene, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long attribute lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	genes := make(map[string]*gene.Gene)
	var geneOrder []string
	geneNames := make(map[string]string)
	transcripts := make(map[string]*gene.Transcript)
	var trOrder []string
	exons := make(map[string]splice.Structure)
	cdsMin := make(map[string]int64)
	cdsMax := make(map[string]int64)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}

		if filterChrom != "" && feat.chrom != gene.NormalizeChrom(filterChrom) {
			continue
		}

		if feat.featureType == "gene" {
			geneID := stripVersion(feat.attributes["gene_id"])
			if geneID == "" {
				continue
			}
			if _, ok := genes[geneID]; !ok {
				genes[geneID] = &gene.Gene{
					ID:     geneID,
					Name:   feat.attributes["gene_name"],
					Chrom:  feat.chrom,
					Strand: parseStrand(feat.strand),
				}
				geneOrder = append(geneOrder, geneID)
			}
			continue
		}

		transcriptID := stripVersion(feat.attributes["transcript_id"])
		if transcriptID == "" {
			continue
		}

		switch feat.featureType {
		case "transcript":
			geneID := stripVersion(feat.attributes["gene_id"])
			transcripts[transcriptID] = &gene.Transcript{
				ID:      transcriptID,
				Name:    feat.attributes["transcript_name"],
				GeneID:  geneID,
				Chrom:   feat.chrom,
				Strand:  parseStrand(feat.strand),
				Biotype: feat.attributes["transcript_type"],
			}
			trOrder = append(trOrder, transcriptID)
			if name := feat.attributes["gene_name"]; name != "" {
				geneNames[geneID] = name
			}

		case "exon":
			exons[transcriptID] = append(exons[transcriptID], splice.Exon{Start: feat.start, End: feat.end})

		case "CDS", "start_codon", "stop_codon":
			// The CDS span includes the start and stop codons, so the
			// boundary is the min/max over all three feature types.
			if cur, ok := cdsMin[transcriptID]; !ok || feat.start < cur {
				cdsMin[transcriptID] = feat.start
			}
			if cur, ok := cdsMax[transcriptID]; !ok || feat.end > cur {
				cdsMax[transcriptID] = feat.end
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	for _, transcriptID := range trOrder {
		t := transcripts[transcriptID]
		ex := exons[transcriptID]
		if len(ex) == 0 {
			continue
		}
		sort.Slice(ex, func(i, j int) bool { return ex[i].Start < ex[j].Start })
		t.Exons = ex

		if start, ok := cdsMin[transcriptID]; ok {
			t.CDSStart = start
			t.CDSEnd = cdsMax[transcriptID]
		}

		g, ok := genes[t.GeneID]
		if !ok {
			g = &gene.Gene{
				ID:     t.GeneID,
				Name:   geneNames[t.GeneID],
				Chrom:  t.Chrom,
				Strand: t.Strand,
			}
			genes[t.GeneID] = g
			geneOrder = append(geneOrder, t.GeneID)
		}
		g.AddTranscript(t)
	}

	result := make([]*gene.Gene, 0, len(geneOrder))
	for _, id := range geneOrder {
		if len(genes[id].Transcripts) > 0 {
			result = append(result, genes[id])
		}
	}
	return result, nil
}

// parseLine parses a single GTF line, converting the 1-based inclusive
// start to 0-based.
func parseLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfFeature{
		chrom:       gene.NormalizeChrom(fields[0]),
		featureType: fields[2],
		start:       start - 1,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.TrimSpace(part[idx+1:])
		value = strings.Trim(value, "\"")

		attrs[key] = value
	}

	return attrs
}

// parseStrand converts a strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g. "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
