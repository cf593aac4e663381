package splice

import "github.com/HerwigLab/IsoTools2/internal/cigar"

// FromCigar decodes CIGAR operations into the exon structure of an
// aligned read starting at the given genomic offset.
//
// Reference-consuming operations (M, D, =, X) extend the current exon.
// A reference skip (N) closes the current exon and opens a new one past
// the intron. A zero-length exon at a skip boundary is dropped; this
// happens when an insertion sits between two skips (e.g. 10M100N10I100N10M).
// A trailing zero-length exon is dropped as well, so an empty operation
// list yields an empty structure.
func FromCigar(ops []cigar.Op, offset int64) Structure {
	exons := Structure{{Start: offset, End: offset}}
	for _, op := range ops {
		switch op.Type {
		case cigar.Skip:
			pos := exons[len(exons)-1].End + op.Len
			if last := exons[len(exons)-1]; last.Start == last.End {
				exons = exons[:len(exons)-1]
			}
			exons = append(exons, Exon{Start: pos, End: pos})
		case cigar.Match, cigar.Deletion, cigar.Equal, cigar.Diff:
			exons[len(exons)-1].End += op.Len
		}
	}
	if last := exons[len(exons)-1]; last.Start == last.End {
		exons = exons[:len(exons)-1]
	}
	return exons
}
