package orf

import "math"

// Start context base counts from Kozak, NAR 1987: per cent occurrence
// of A, C, G, T at offsets -12..-1 and +3 relative to the start codon,
// over 699 vertebrate mRNAs. Each row sums to 100.
var kozakCounts = [13][4]float64{
	{23, 35, 23, 19},
	{26, 35, 21, 18},
	{25, 35, 22, 18},
	{23, 26, 33, 18},
	{19, 39, 23, 19},
	{23, 37, 20, 20},
	{17, 19, 44, 20},
	{18, 39, 23, 20},
	{25, 53, 15, 7},
	{61, 2, 36, 1},
	{27, 49, 13, 11},
	{15, 55, 21, 9},
	{23, 16, 46, 15},
}

var kozakOffsets = [13]int64{-12, -11, -10, -9, -8, -7, -6, -5, -4, -3, -2, -1, 3}

// PWM scores the sequence context around a candidate start codon with
// per offset log odds weights. The fifth weight column covers unknown
// bases and contributes zero. Construct once and share; the matrix is
// immutable after construction.
type PWM struct {
	weights [13][5]float64
	offsets [13]int64
}

// NewKozakPWM builds the position weight matrix from the Kozak
// consensus counts. Weights are log2 of the observed base frequency
// over the background frequency of that base across all offsets.
func NewKozakPWM() *PWM {
	var colSum [4]float64
	var total float64
	for _, row := range kozakCounts {
		for b, count := range row {
			colSum[b] += count
			total += count
		}
	}

	p := &PWM{offsets: kozakOffsets}
	for i, row := range kozakCounts {
		for b, count := range row {
			bg := colSum[b] / total
			p.weights[i][b] = math.Log2(count / 100 / bg)
		}
	}
	return p
}

// Score sums the weights of the bases around the start codon at pos.
// Offsets falling outside the sequence contribute nothing.
func (p *PWM) Score(seq string, pos int64) float64 {
	var score float64
	n := int64(len(seq))
	for i, off := range p.offsets {
		at := pos + off
		if at < 0 || at >= n {
			continue
		}
		score += p.weights[i][baseIndex(seq[at])]
	}
	return score
}

func baseIndex(base byte) int {
	switch base {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	default:
		return 4
	}
}
