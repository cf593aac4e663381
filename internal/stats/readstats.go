package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultQualBins returns the log-spaced error-rate thresholds (in
// percent) for the base-quality histogram: 10^linspace(-7, 0, 30).
func DefaultQualBins() []float64 {
	bins := floats.Span(make([]float64, 30), -7, 0)
	for i, v := range bins {
		bins[i] = math.Pow(10, v)
	}
	return bins
}

// ErrorRate is the mean base error probability of a read as a
// percentage, derived from phred quality values.
func ErrorRate(quals []byte) float64 {
	if len(quals) == 0 {
		return 0
	}
	var sum float64
	for _, q := range quals {
		sum += math.Pow(10, -float64(q)/10)
	}
	return sum / float64(len(quals)) * 100
}

// QualityStats accumulates base-quality statistics over reads.
type QualityStats struct {
	bins   []float64
	counts []int64
	reads  int64
	bases  int64
	errSum float64
}

// NewQualityStats creates an accumulator binning per-read error rates
// at the given ascending thresholds; an empty slice selects
// DefaultQualBins.
func NewQualityStats(bins []float64) *QualityStats {
	if len(bins) == 0 {
		bins = DefaultQualBins()
	}
	return &QualityStats{
		bins:   bins,
		counts: make([]int64, len(bins)+1),
	}
}

// Add accumulates one read's quality values. Reads without quality
// values (empty, or the BAM 0xff placeholder) are ignored.
func (s *QualityStats) Add(quals []byte) {
	if len(quals) == 0 || quals[0] == 0xff {
		return
	}
	var sum float64
	for _, q := range quals {
		sum += math.Pow(10, -float64(q)/10)
	}
	s.reads++
	s.bases += int64(len(quals))
	s.errSum += sum

	rate := sum / float64(len(quals)) * 100
	idx := len(s.bins)
	for i, th := range s.bins {
		if rate < th {
			idx = i
			break
		}
	}
	s.counts[idx]++
}

// Reads returns the number of reads accumulated.
func (s *QualityStats) Reads() int64 { return s.reads }

// Bases returns the number of bases accumulated.
func (s *QualityStats) Bases() int64 { return s.bases }

// MeanErrorRate is the mean base error probability over all
// accumulated reads, as a percentage.
func (s *QualityStats) MeanErrorRate() float64 {
	if s.bases == 0 {
		return 0
	}
	return s.errSum / float64(s.bases) * 100
}

// Histogram returns the bin thresholds and the read counts per bin.
// The final count collects reads at or above the last threshold.
func (s *QualityStats) Histogram() (bins []float64, counts []int64) {
	bins = make([]float64, len(s.bins))
	copy(bins, s.bins)
	counts = make([]int64, len(s.counts))
	copy(counts, s.counts)
	return bins, counts
}

// Labels renders the histogram bin labels in percent.
func (s *QualityStats) Labels() []string {
	labels := make([]string, len(s.bins)+1)
	for i, th := range s.bins {
		labels[i] = fmt.Sprintf("<%.2E %%", th)
	}
	labels[len(s.bins)] = fmt.Sprintf(">=%.2E %%", s.bins[len(s.bins)-1])
	return labels
}
