package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultPseudocount is added to each cell before the independence
// test to avoid zero expected frequencies.
const DefaultPseudocount = 0.01

// TestKind selects the independence test for PairwiseEventTest.
type TestKind string

const (
	TestFisher TestKind = "fisher"
	TestChi2   TestKind = "chi2"
)

// TestResult holds the outcome of a pairwise coordination test. The
// statistic is the odds ratio for the Fisher test and X^2 for the
// chi-squared test.
type TestResult struct {
	PValue     float64
	Statistic  float64
	Log2OR     float64
	DeltaPSIAB float64
	DeltaPSIBA float64
}

// EventTestRecord pairs two alternative-splicing events with their
// coordination test result.
type EventTestRecord struct {
	GeneID string
	Chrom  string
	EventA Event
	EventB Event
	Result TestResult
}

// ContingencyTable builds the 2x2 coverage table for a pair of
// events. tab[i][j] sums the coverage of transcripts supporting form
// i of eventA and form j of eventB (0 primary, 1 alternative);
// ids[i][j] lists those transcripts, highest coverage first.
func ContingencyTable(eventA, eventB Event, cov Coverage) (tab [2][2]float64, ids [2][2][]int) {
	formsA := [2][]int{eventA.Primary, eventA.Alt}
	formsB := [2][]int{eventB.Primary, eventB.Alt}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			shared := intersect(formsA[i], formsB[j])
			sort.Slice(shared, func(a, b int) bool {
				if cov[shared[a]] != cov[shared[b]] {
					return cov[shared[a]] > cov[shared[b]]
				}
				return shared[a] < shared[b]
			})
			ids[i][j] = shared
			tab[i][j] = cov.Sum(shared)
		}
	}
	return tab, ids
}

func intersect(a, b []int) []int {
	inB := make(map[int]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	seen := make(map[int]struct{}, len(a))
	var shared []int
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		shared = append(shared, id)
	}
	return shared
}

// PairwiseEventTest tests a pair of events for coordination. The
// pseudocount is added to every cell before the independence test,
// while the effect sizes are computed on the raw table.
func PairwiseEventTest(tab [2][2]float64, kind TestKind, pseudocount float64) (TestResult, error) {
	padded := tab
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			padded[i][j] += pseudocount
		}
	}

	var res TestResult
	switch kind {
	case TestFisher:
		res.Statistic, res.PValue = FisherExact(padded)
	case TestChi2:
		stat, p, err := ChiSquaredYates(padded)
		if err != nil {
			return TestResult{}, err
		}
		res.Statistic, res.PValue = stat, p
	default:
		return TestResult{}, fmt.Errorf("unknown test kind %q (want %q or %q)", kind, TestFisher, TestChi2)
	}

	res.Log2OR = CorrectedLog2OR(tab)
	res.DeltaPSIAB, res.DeltaPSIBA = DeltaPSI(tab)
	return res, nil
}

// FisherExact computes the two-sided Fisher exact test on a 2x2 table
// of non-negative counts; cells are rounded to integers. The p-value
// sums the hypergeometric probabilities of all tables with the same
// margins that are no more likely than the observed one. Returns the
// odds ratio and the p-value.
func FisherExact(tab [2][2]float64) (oddsRatio, p float64) {
	a := int64(math.Round(tab[0][0]))
	b := int64(math.Round(tab[0][1]))
	c := int64(math.Round(tab[1][0]))
	d := int64(math.Round(tab[1][1]))

	num := float64(a) * float64(d)
	den := float64(b) * float64(c)
	switch {
	case den != 0:
		oddsRatio = num / den
	case num != 0:
		oddsRatio = math.Inf(1)
	default:
		oddsRatio = math.NaN()
	}

	n := a + b + c + d
	r1 := a + b
	c1 := a + c
	lo := max(int64(0), c1-(n-r1))
	hi := min(c1, r1)

	logObs := hypergeomLogPMF(a, n, c1, r1)
	cutoff := logObs + math.Log1p(1e-7)
	for k := lo; k <= hi; k++ {
		if lp := hypergeomLogPMF(k, n, c1, r1); lp <= cutoff {
			p += math.Exp(lp)
		}
	}
	return oddsRatio, math.Min(p, 1)
}

// hypergeomLogPMF is the log probability of drawing k successes in r
// draws without replacement from n items of which succ are successes.
func hypergeomLogPMF(k, n, succ, r int64) float64 {
	return combin.LogGeneralizedBinomial(float64(succ), float64(k)) +
		combin.LogGeneralizedBinomial(float64(n-succ), float64(r-k)) -
		combin.LogGeneralizedBinomial(float64(n), float64(r))
}

// ChiSquaredYates computes the chi-squared independence test with
// Yates continuity correction on a 2x2 table, one degree of freedom.
func ChiSquaredYates(tab [2][2]float64) (stat, p float64, err error) {
	rowSum := [2]float64{tab[0][0] + tab[0][1], tab[1][0] + tab[1][1]}
	colSum := [2]float64{tab[0][0] + tab[1][0], tab[0][1] + tab[1][1]}
	total := rowSum[0] + rowSum[1]
	if total == 0 {
		return 0, 0, fmt.Errorf("chi-squared test: empty table")
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := rowSum[i] * colSum[j] / total
			if expected == 0 {
				return 0, 0, fmt.Errorf("chi-squared test: zero expected frequency in cell (%d,%d)", i, j)
			}
			diff := expected - tab[i][j]
			adjusted := tab[i][j] + math.Copysign(min(0.5, math.Abs(diff)), diff)
			stat += (adjusted - expected) * (adjusted - expected) / expected
		}
	}
	return stat, distuv.ChiSquared{K: 1}.Survival(stat), nil
}

// CorrectedLog2OR is the log2 odds ratio with zero cells replaced by
// 1e-9 so the effect size stays finite.
func CorrectedLog2OR(tab [2][2]float64) float64 {
	cell := func(v float64) float64 {
		if v == 0 {
			return 1e-9
		}
		return v
	}
	return math.Log2(cell(tab[0][0])*cell(tab[1][1])) - math.Log2(cell(tab[0][1])*cell(tab[1][0]))
}

// DeltaPSI computes the delta conditional percent-spliced-in of a
// coordinated event pair: PSI(B|altA)-PSI(B) and PSI(A|altB)-PSI(A).
func DeltaPSI(tab [2][2]float64) (ab, ba float64) {
	total := tab[0][0] + tab[0][1] + tab[1][0] + tab[1][1]
	ab = tab[1][1]/(tab[1][0]+tab[1][1]) - (tab[0][1]+tab[1][1])/total
	ba = tab[1][1]/(tab[0][1]+tab[1][1]) - (tab[1][0]+tab[1][1])/total
	return ab, ba
}
