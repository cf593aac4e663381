package splice

import (
	"fmt"
	"sort"
)

// GenomicPositions maps transcript-relative positions to genomic
// coordinates given the transcript's exon layout.
//
// On the reverse strand a position p is first reflected to length-p
// before walking the exons. The returned map is keyed by the original
// requested positions. Any position beyond the transcript length is a
// range error, reported before any mapping is done.
func GenomicPositions(trPos []int64, exons Structure, reverseStrand bool) (map[int64]int64, error) {
	if len(exons) == 0 {
		return nil, fmt.Errorf("transcript has no exons")
	}
	trLen := exons.ExonicLength()
	for _, p := range trPos {
		if p > trLen {
			return nil, fmt.Errorf("position %d out of range for transcript of length %d", p, trLen)
		}
	}

	pos := make([]int64, len(trPos))
	copy(pos, trPos)
	if reverseStrand {
		for i, p := range pos {
			pos[i] = trLen - p
		}
	}
	sort.Slice(pos, func(i, j int) bool { return pos[i] < pos[j] })
	pos = dedupSorted(pos)

	offset := exons[0].Start
	var intronLen int64
	mapped := make([]int64, 0, len(pos))
	i := 0
	done := false
	for k := 0; k+1 < len(exons) && !done; k++ {
		e1, e2 := exons[k], exons[k+1]
		for i < len(pos) && offset+intronLen+pos[i] < e1.End {
			mapped = append(mapped, offset+intronLen+pos[i])
			i++
		}
		if i == len(pos) {
			done = true
		} else {
			intronLen += e2.Start - e1.End
		}
	}
	if !done {
		// Remaining positions fall in the last exon; a position equal
		// to the transcript length maps to the exon end.
		for ; i < len(pos); i++ {
			mapped = append(mapped, offset+intronLen+pos[i])
		}
	}

	result := make(map[int64]int64, len(pos))
	for k, p := range pos {
		if reverseStrand {
			p = trLen - p
		}
		result[p] = mapped[k]
	}
	return result, nil
}

func dedupSorted(v []int64) []int64 {
	if len(v) < 2 {
		return v
	}
	out := v[:1]
	for _, x := range v[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
