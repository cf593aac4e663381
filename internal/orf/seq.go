package orf

import (
	"fmt"
	"strings"

	"github.com/HerwigLab/IsoTools2/internal/splice"
)

// SequenceSource hands out reference bases for a half-open genomic range.
type SequenceSource interface {
	Sequence(chrom string, start, end int64) (string, error)
}

// TranscriptSequence extracts the spliced transcript sequence from a
// genome source. Exon slices are concatenated in genomic order; for
// reverse strand transcripts the result is reverse complemented so it
// reads in transcription direction.
func TranscriptSequence(src SequenceSource, chrom string, exons splice.Structure, reverseStrand bool) (string, error) {
	var sb strings.Builder
	sb.Grow(int(exons.ExonicLength()))
	for _, e := range exons {
		s, err := src.Sequence(chrom, e.Start, e.End)
		if err != nil {
			return "", fmt.Errorf("exon %s:%d-%d: %w", chrom, e.Start, e.End, err)
		}
		sb.WriteString(s)
	}
	seq := sb.String()
	if reverseStrand {
		seq = ReverseComplement(seq)
	}
	return seq, nil
}
