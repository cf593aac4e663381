package splice

import "sort"

// MergedExonicRegion merges the exons of a set of structures into the
// exonic footprint of the collection.
//
// All exon starts and all exon ends are sorted independently and the
// k-th start is paired with the k-th end: a start inside the current
// region extends it to the paired end, a start past it opens a new
// region. Exons that touch without overlapping merge into one region.
// Returns nil for an empty collection.
func MergedExonicRegion(structures []Structure) Structure {
	var n int
	for _, s := range structures {
		n += len(s)
	}
	if n == 0 {
		return nil
	}

	starts := make([]int64, 0, n)
	ends := make([]int64, 0, n)
	for _, s := range structures {
		for _, e := range s {
			starts = append(starts, e.Start)
			ends = append(ends, e.End)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	sort.Slice(ends, func(i, j int) bool { return ends[i] < ends[j] })

	region := Structure{{Start: starts[0], End: ends[0]}}
	k := 1
	for _, start := range starts[1:] {
		if start <= region[len(region)-1].End {
			region[len(region)-1].End = ends[k]
		} else {
			region = append(region, Exon{Start: start, End: ends[k]})
		}
		k++
	}
	return region
}

// ExonicOverlap returns the number of bases the given exons share with
// the merged exonic region of the structures. Returns 0 when the
// collection is empty.
func ExonicOverlap(exons Structure, structures []Structure) int64 {
	if len(structures) == 0 {
		return 0
	}
	region := MergedExonicRegion(structures)
	if len(region) == 0 {
		return 0
	}

	var overlap int64
	i := 0
	for _, exon := range exons {
		for region[i].End < exon.Start {
			i++
			if i == len(region) {
				return overlap
			}
		}
		for region[i].Start < exon.End {
			overlap += OverlapLength(exon, region[i])
			if region[i].End > exon.End {
				break
			}
			i++
			if i == len(region) {
				return overlap
			}
		}
	}
	return overlap
}
