package splice

import "math"

// Unbounded disables the start/end tolerance check in SpliceIdentical.
const Unbounded int64 = math.MaxInt64

// Default thresholds for SameGene: one shared splice site, or more
// than half the exonic region in common.
const (
	DefaultSpliceIoU = 0.0
	DefaultRegionIoU = 0.5
)

// Intersect computes the number of shared splice sites and the number
// of shared exonic bases of two structures.
//
// Both structures are walked with a synchronized two-pointer merge,
// advancing whichever current exon ends first. A splice-site hit is
// counted when overlapping exons share a start (unless it is the first
// exon of either structure) and, separately, when they share an end
// (unless it is the last exon of either structure).
func Intersect(s1, s2 Structure) (spliceSites int, bases int64) {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		e1, e2 := s1[i], s2[j]
		if Overlaps(e1, e2) {
			if e1.Start == e2.Start && i > 0 && j > 0 {
				spliceSites++
			}
			if e1.End == e2.End && i < len(s1)-1 && j < len(s2)-1 {
				spliceSites++
			}
			bases += OverlapLength(e1, e2)
		}
		if e1.End <= e2.End {
			i++
		} else {
			j++
		}
	}
	return spliceSites, bases
}

// SameGene decides whether two structures belong to the same gene.
// Either of two independent tests passing is sufficient: the
// intersection-over-union of shared splice sites above spjIoUTh, or
// the intersection-over-union of shared exonic bases above regIoUTh.
// A single-exon structure contributes no splice-site slots; the splice
// IoU is defined as 0 when there are none.
func SameGene(s1, s2 Structure, spjIoUTh, regIoUTh float64) bool {
	spj, bases := Intersect(s1, s2)
	totalSpj := (len(s1) + len(s2) - 2) * 2
	spjIoU := 0.0
	if totalSpj > 0 {
		spjIoU = float64(spj) / float64(totalSpj-spj)
	}
	if spjIoU > spjIoUTh {
		return true
	}
	totalLen := s1.ExonicLength() + s2.ExonicLength()
	regIoU := float64(bases) / float64(totalLen-bases)
	return regIoU > regIoUTh
}

// SpliceIdentical reports whether two structures represent the same
// splicing pattern. Exon counts must match. Single-exon structures are
// identical iff they overlap. For multi-exon structures the transcript
// start and end may differ by up to strictness bases, while the inner
// boundary of the first and last exon and all internal exons must
// match exactly. Pass Unbounded to disable the start/end tolerance.
func SpliceIdentical(s1, s2 Structure, strictness int64) bool {
	if len(s1) != len(s2) {
		return false
	}
	if len(s1) == 0 {
		return true
	}
	if len(s1) == 1 {
		return Overlaps(s1[0], s2[0])
	}
	if abs64(s1[0].Start-s2[0].Start) > strictness || abs64(s1[len(s1)-1].End-s2[len(s2)-1].End) > strictness {
		return false
	}
	if s1[0].End != s2[0].End || s1[len(s1)-1].Start != s2[len(s2)-1].Start {
		return false
	}
	for i := 1; i < len(s1)-1; i++ {
		if s1[i] != s2[i] {
			return false
		}
	}
	return true
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
