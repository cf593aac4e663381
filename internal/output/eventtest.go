package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/HerwigLab/IsoTools2/internal/stats"
)

// EventTestWriter writes event coordination tests in tab-delimited
// format.
type EventTestWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewEventTestWriter creates a new tab-delimited writer.
func NewEventTestWriter(w io.Writer) *EventTestWriter {
	return &EventTestWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#gene_id",
			"chrom",
			"type_a",
			"start_a",
			"end_a",
			"type_b",
			"start_b",
			"end_b",
			"p_value",
			"statistic",
			"log2_odds_ratio",
			"dcpsi_ab",
			"dcpsi_ba",
		},
	}
}

// WriteHeader writes the header line.
func (ew *EventTestWriter) WriteHeader() error {
	_, err := ew.w.WriteString(strings.Join(ew.columns, "\t") + "\n")
	return err
}

// Write writes a single test record.
func (ew *EventTestWriter) Write(rec *stats.EventTestRecord) error {
	values := []string{
		orDash(rec.GeneID),
		orDash(rec.Chrom),
		string(rec.EventA.Type),
		strconv.FormatInt(rec.EventA.Start, 10),
		strconv.FormatInt(rec.EventA.End, 10),
		string(rec.EventB.Type),
		strconv.FormatInt(rec.EventB.Start, 10),
		strconv.FormatInt(rec.EventB.End, 10),
		formatFloat(rec.Result.PValue),
		formatFloat(rec.Result.Statistic),
		formatFloat(rec.Result.Log2OR),
		formatFloat(rec.Result.DeltaPSIAB),
		formatFloat(rec.Result.DeltaPSIBA),
	}
	_, err := ew.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (ew *EventTestWriter) Flush() error {
	return ew.w.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
