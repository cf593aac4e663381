package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/dsp/window"
)

// DefaultSmoothWindow is the hanning window width for coverage
// profile smoothing.
const DefaultSmoothWindow = 31

// WeightedPos is a genomic position with its read support, e.g. one
// observed transcription start site.
type WeightedPos struct {
	Pos int64
	Cov int64
}

// Quantiles returns coverage-weighted position quantiles for the
// requested percentiles, which must be ascending and in (0,1].
func Quantiles(pos []WeightedPos, percentiles []float64) ([]int64, error) {
	if len(percentiles) == 0 {
		return nil, nil
	}
	for i, pct := range percentiles {
		if pct <= 0 || pct > 1 {
			return nil, fmt.Errorf("percentile %g outside (0,1]", pct)
		}
		if i > 0 && pct < percentiles[i-1] {
			return nil, fmt.Errorf("percentiles must be ascending")
		}
	}

	sorted := make([]WeightedPos, len(pos))
	copy(sorted, pos)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })

	var total int64
	for _, p := range sorted {
		total += p.Cov
	}

	result := make([]int64, 0, len(percentiles))
	var n int64
	for _, p := range sorted {
		n += p.Cov
		for float64(n) >= float64(total)*percentiles[len(result)] {
			result = append(result, p.Pos)
			if len(result) == len(percentiles) {
				return result, nil
			}
		}
	}
	return nil, fmt.Errorf("cannot find %g percentile", percentiles[len(result)])
}

// Smooth applies a normalized hanning-window moving average. The
// input is mirror-padded so the output keeps the input length. A
// window below 3 returns the input unchanged.
func Smooth(x []float64, windowLen int) ([]float64, error) {
	if windowLen < 3 {
		out := make([]float64, len(x))
		copy(out, x)
		return out, nil
	}
	if len(x) < windowLen {
		return nil, fmt.Errorf("need at least %d values to smooth with window %d, got %d", windowLen, windowLen, len(x))
	}

	w := make([]float64, windowLen)
	for i := range w {
		w[i] = 1
	}
	w = window.Hann(w)
	var wsum float64
	for _, v := range w {
		wsum += v
	}

	padded := make([]float64, 0, len(x)+2*(windowLen-1))
	for i := windowLen - 1; i >= 1; i-- {
		padded = append(padded, x[i])
	}
	padded = append(padded, x...)
	for i := len(x) - 2; i >= len(x)-windowLen; i-- {
		padded = append(padded, x[i])
	}

	out := make([]float64, len(x))
	start := windowLen/2 - (windowLen+1)%2
	for i := range out {
		var acc float64
		for j, wj := range w {
			acc += wj * padded[start+i+j]
		}
		out[i] = acc / wsum
	}
	return out, nil
}
