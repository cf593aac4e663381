package output

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// ORFRecord is one open reading frame of a transcript, resolved to
// genomic coordinates and translated. Negative genomic coordinates
// and a NaN Kozak score mark values that could not be computed.
type ORFRecord struct {
	TranscriptID string
	GeneID       string
	Chrom        string
	Strand       int8
	Frame        int
	Start        int64 // transcript coordinates
	Stop         int64
	GenomicStart int64
	GenomicEnd   int64
	StartCodon   string
	StopCodon    string // empty for open-ended frames
	UpstreamORFs int
	KozakScore   float64
	Protein      string
}

// ORFWriter writes ORF records in tab-delimited format.
type ORFWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewORFWriter creates a new tab-delimited writer.
func NewORFWriter(w io.Writer) *ORFWriter {
	return &ORFWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#transcript_id",
			"gene_id",
			"chrom",
			"strand",
			"frame",
			"start",
			"stop",
			"genomic_start",
			"genomic_end",
			"start_codon",
			"stop_codon",
			"upstream_orfs",
			"kozak_score",
			"protein",
		},
	}
}

// WriteHeader writes the header line.
func (ow *ORFWriter) WriteHeader() error {
	_, err := ow.w.WriteString(strings.Join(ow.columns, "\t") + "\n")
	return err
}

// Write writes a single ORF record.
func (ow *ORFWriter) Write(rec *ORFRecord) error {
	genomicStart, genomicEnd := "-", "-"
	if rec.GenomicStart >= 0 && rec.GenomicEnd >= 0 {
		genomicStart = strconv.FormatInt(rec.GenomicStart, 10)
		genomicEnd = strconv.FormatInt(rec.GenomicEnd, 10)
	}

	kozak := "-"
	if !math.IsNaN(rec.KozakScore) {
		kozak = strconv.FormatFloat(rec.KozakScore, 'f', 4, 64)
	}

	values := []string{
		rec.TranscriptID,
		orDash(rec.GeneID),
		rec.Chrom,
		FormatStrand(rec.Strand),
		strconv.Itoa(rec.Frame),
		strconv.FormatInt(rec.Start, 10),
		strconv.FormatInt(rec.Stop, 10),
		genomicStart,
		genomicEnd,
		orDash(rec.StartCodon),
		orDash(rec.StopCodon),
		strconv.Itoa(rec.UpstreamORFs),
		kozak,
		orDash(rec.Protein),
	}
	_, err := ow.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (ow *ORFWriter) Flush() error {
	return ow.w.Flush()
}
