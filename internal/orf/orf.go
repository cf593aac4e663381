// Package orf finds open reading frames in transcript sequences and
// scores translation initiation context.
package orf

import "sort"

// Default codon sets for the standard genetic code.
var (
	DefaultStartCodons = []string{"ATG"}
	DefaultStopCodons  = []string{"TAA", "TAG", "TGA"}
)

// ORF is one open reading frame candidate on the forward strand of a
// transcript sequence. Start and Stop are 0-based nucleotide offsets;
// Stop points just past the stop codon, or equals Start when no
// in-frame stop codon exists downstream (StopCodon is then empty).
// UpstreamORFs is the 0-based rank of the candidate by start position
// among all candidates found for the sequence. RefIDs holds the ids of
// reference transcripts whose annotated CDS begins at Start, nil for
// starts found by codon match alone.
type ORF struct {
	Start        int64
	Stop         int64
	Frame        int
	StartCodon   string
	StopCodon    string
	UpstreamORFs int
	RefIDs       []string
}

type startSite struct {
	pos    int64
	codon  string
	refIDs []string
}

type stopSite struct {
	end   int64
	codon string
}

// FindORFs scans the sequence for open reading frames in all three
// reading frames. Starts come from codon matches plus the positions in
// refCDS, which maps annotated CDS start offsets to reference
// transcript ids. Within a frame a start inside the previous ORF is
// subsumed and skipped, unless it is a refCDS position, which is
// always reported. The stop of each ORF is the end of the first
// in-frame stop codon past the start. Results are sorted by start,
// then frame, then stop.
func FindORFs(seq string, startCodons, stopCodons []string, refCDS map[int64][]string) []ORF {
	isStart := codonSet(startCodons)
	isStop := codonSet(stopCodons)
	n := int64(len(seq))

	var starts [3][]startSite
	var stops [3][]stopSite

	for init, refIDs := range refCDS {
		lo, hi := init, init+3
		if lo > n {
			lo = n
		}
		if hi > n {
			hi = n
		}
		ids := make([]string, len(refIDs))
		copy(ids, refIDs)
		starts[init%3] = append(starts[init%3], startSite{pos: init, codon: seq[lo:hi], refIDs: ids})
	}
	for i := 0; i+3 <= len(seq); i++ {
		codon := seq[i : i+3]
		pos := int64(i)
		if isStart[codon] {
			if _, annotated := refCDS[pos]; !annotated {
				starts[pos%3] = append(starts[pos%3], startSite{pos: pos, codon: codon})
			}
		}
		if isStop[codon] {
			stops[pos%3] = append(stops[pos%3], stopSite{end: pos + 3, codon: codon})
		}
	}

	var orfs []ORF
	for frame := 0; frame < 3; frame++ {
		fs := starts[frame]
		sort.Slice(fs, func(i, j int) bool { return fs[i].pos < fs[j].pos })
		var stop int64
		for _, s := range fs {
			if s.pos < stop && s.refIDs == nil {
				continue
			}
			stop = s.pos
			stopCodon := ""
			for _, t := range stops[frame] {
				if t.end > s.pos {
					stop, stopCodon = t.end, t.codon
					break
				}
			}
			orfs = append(orfs, ORF{
				Start:      s.pos,
				Stop:       stop,
				Frame:      frame,
				StartCodon: s.codon,
				StopCodon:  stopCodon,
				RefIDs:     s.refIDs,
			})
		}
	}

	sort.Slice(orfs, func(i, j int) bool {
		if orfs[i].Start != orfs[j].Start {
			return orfs[i].Start < orfs[j].Start
		}
		if orfs[i].Frame != orfs[j].Frame {
			return orfs[i].Frame < orfs[j].Frame
		}
		return orfs[i].Stop < orfs[j].Stop
	})
	for i := range orfs {
		orfs[i].UpstreamORFs = i
	}
	return orfs
}

func codonSet(codons []string) map[string]bool {
	set := make(map[string]bool, len(codons))
	for _, c := range codons {
		set[c] = true
	}
	return set
}
