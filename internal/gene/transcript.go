// Package gene holds the reference gene annotation: genes, their
// transcript isoforms, and a chromosome-indexed model for overlap
// queries. All coordinates are 0-based half-open.
package gene

import "github.com/HerwigLab/IsoTools2/internal/splice"

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID       string           // Transcript ID (e.g. ENST00000311936)
	Name     string           // Transcript symbol
	GeneID   string           // Parent gene ID
	Chrom    string           // Chromosome
	Strand   int8             // +1 or -1
	Exons    splice.Structure // Ordered ascending exons
	Biotype  string           // Transcript biotype
	CDSStart int64            // CDS start (genomic), equal to CDSEnd if non-coding
	CDSEnd   int64            // CDS end (genomic, exclusive)
}

// Start returns the genomic start of the first exon.
func (t *Transcript) Start() int64 {
	return t.Exons[0].Start
}

// End returns the genomic end of the last exon.
func (t *Transcript) End() int64 {
	return t.Exons[len(t.Exons)-1].End
}

// Length returns the summed exonic length, i.e. the mRNA length.
func (t *Transcript) Length() int64 {
	return t.Exons.ExonicLength()
}

// IsCoding returns true if the transcript has an annotated CDS.
func (t *Transcript) IsCoding() bool {
	return t.CDSStart < t.CDSEnd
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == -1
}

// Junctions returns the transcript's splice junctions.
func (t *Transcript) Junctions() []splice.Junction {
	return t.Exons.Junctions()
}

// posFromLeft returns the number of exonic bases strictly left of the
// genomic position g, which must itself be exonic.
func (t *Transcript) posFromLeft(g int64) (int64, bool) {
	var cum int64
	for _, e := range t.Exons {
		if g >= e.Start && g < e.End {
			return cum + g - e.Start, true
		}
		cum += e.End - e.Start
	}
	return 0, false
}

// Position maps an exonic genomic position to the transcript-relative
// coordinate, counting from the 5' end of the mRNA. The second return
// is false when g does not fall on an exon.
func (t *Transcript) Position(g int64) (int64, bool) {
	left, ok := t.posFromLeft(g)
	if !ok {
		return 0, false
	}
	if t.IsReverseStrand() {
		return t.Length() - 1 - left, true
	}
	return left, true
}

// CDSInit returns the transcript-relative position where translation
// starts. On the reverse strand this is the genomic base just before
// CDSEnd. The second return is false for non-coding transcripts and
// for CDS boundaries that do not fall on an exon.
func (t *Transcript) CDSInit() (int64, bool) {
	if !t.IsCoding() {
		return 0, false
	}
	if t.IsReverseStrand() {
		return t.Position(t.CDSEnd - 1)
	}
	return t.Position(t.CDSStart)
}
