// Package splice implements exon-interval structures and the merge-join
// algorithms used to compare transcript splicing patterns.
//
// All coordinates are 0-based, half-open genomic positions. A Structure
// is the ordered exon layout of one transcript: ascending and
// non-overlapping, with introns as the gaps between consecutive exons.
package splice

// Exon is a half-open genomic interval [Start, End).
type Exon struct {
	Start int64
	End   int64
}

// Structure is an ascending, non-overlapping sequence of exons
// representing one transcript.
type Structure []Exon

// Junction is the donor/acceptor coordinate pair of one intron:
// the end of an exon and the start of the next.
type Junction struct {
	Donor    int64
	Acceptor int64
}

// Overlaps reports whether two exons share at least one base.
// Touching exons (a.End == b.Start) do not overlap.
func Overlaps(a, b Exon) bool {
	return a.End > b.Start && b.End > a.Start
}

// OverlapLength returns the number of bases shared by two exons,
// or 0 if they are disjoint.
func OverlapLength(a, b Exon) int64 {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Distance returns the gap between two exons. A negative or zero
// result means they overlap or are adjacent.
func Distance(a, b Exon) int64 {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	return start - end
}

// CmpDist compares two positions with a tolerance: it returns 1 if a
// exceeds b by at least minDist, -1 if b exceeds a by at least minDist,
// and 0 if they are within minDist of each other.
func CmpDist(a, b, minDist int64) int {
	if a >= b+minDist {
		return 1
	}
	if b >= a+minDist {
		return -1
	}
	return 0
}

// Span returns the interval from the first exon start to the last exon
// end. The structure must be non-empty.
func (s Structure) Span() Exon {
	return Exon{Start: s[0].Start, End: s[len(s)-1].End}
}

// ExonicLength returns the summed length of all exons.
func (s Structure) ExonicLength() int64 {
	var n int64
	for _, e := range s {
		n += e.End - e.Start
	}
	return n
}

// Junctions returns the donor/acceptor pairs of all introns,
// in ascending order. Single-exon structures have none.
func (s Structure) Junctions() []Junction {
	if len(s) < 2 {
		return nil
	}
	junctions := make([]Junction, 0, len(s)-1)
	for i := 0; i+1 < len(s); i++ {
		junctions = append(junctions, Junction{Donor: s[i].End, Acceptor: s[i+1].Start})
	}
	return junctions
}

// Clone returns a copy of the structure.
func (s Structure) Clone() Structure {
	if s == nil {
		return nil
	}
	out := make(Structure, len(s))
	copy(out, s)
	return out
}
