// Package output renders classification, ORF and QC results in
// tab-delimited form.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/HerwigLab/IsoTools2/internal/classify"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

// ClassificationWriter writes read classifications in tab-delimited
// format.
type ClassificationWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewClassificationWriter creates a new tab-delimited writer.
func NewClassificationWriter(w io.Writer) *ClassificationWriter {
	return &ClassificationWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#read_name",
			"chrom",
			"strand",
			"exons",
			"category",
			"gene_id",
			"gene_name",
			"transcript_id",
			"novel_splice_sites",
		},
	}
}

// WriteHeader writes the header line.
func (cw *ClassificationWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(cw.columns, "\t") + "\n")
	return err
}

// Write writes a single classification.
func (cw *ClassificationWriter) Write(r *classify.Result) error {
	values := []string{
		orDash(r.ReadName),
		r.Chrom,
		FormatStrand(r.Strand),
		FormatExons(r.Exons),
		r.Category,
		orDash(r.GeneID),
		orDash(r.GeneName),
		orDash(r.TranscriptID),
		fmt.Sprintf("%d", r.NovelSites),
	}
	_, err := cw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (cw *ClassificationWriter) Flush() error {
	return cw.w.Flush()
}

// FormatStrand renders a strand as "+", "-" or "." when unknown.
func FormatStrand(strand int8) string {
	switch {
	case strand > 0:
		return "+"
	case strand < 0:
		return "-"
	}
	return "."
}

// FormatExons renders a structure as comma-separated start-end pairs.
func FormatExons(exons splice.Structure) string {
	if len(exons) == 0 {
		return "-"
	}
	parts := make([]string, len(exons))
	for i, e := range exons {
		parts[i] = fmt.Sprintf("%d-%d", e.Start, e.End)
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
