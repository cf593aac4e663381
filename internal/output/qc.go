package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/HerwigLab/IsoTools2/internal/stats"
)

// WriteQualityReport writes the accumulated read quality statistics:
// summary lines followed by the per-bin error-rate histogram.
func WriteQualityReport(w io.Writer, s *stats.QualityStats) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# reads\t%d\n", s.Reads())
	fmt.Fprintf(bw, "# bases\t%d\n", s.Bases())
	fmt.Fprintf(bw, "# mean_error_rate\t%.4f%%\n", s.MeanErrorRate())

	fmt.Fprintf(bw, "error_rate_bin\treads\n")
	labels := s.Labels()
	_, counts := s.Histogram()
	for i, label := range labels {
		fmt.Fprintf(bw, "%s\t%d\n", label, counts[i])
	}

	return bw.Flush()
}
